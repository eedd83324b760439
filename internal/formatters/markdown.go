package formatters

import (
	"fmt"
	"strings"

	"hireforge/internal/types"
)

// MarkdownFormatter renders the artifacts as a markdown document.
type MarkdownFormatter struct {
	dataType string
	lang     string
	h        headings
}

func (mf *MarkdownFormatter) Format(data any) (string, error) {
	var out strings.Builder

	switch v := data.(type) {
	case types.JobDescription:
		mf.writeJobDescription(&out, v)
	case types.JobAssets:
		mf.writeJobDescription(&out, v.JobDescription)
		mf.writeQuestions(&out, v.InterviewQuestions)
	case []types.CandidateProfile:
		mf.writeProfiles(&out, v)
	case types.AdvancedAssets:
		mf.writeAdvanced(&out, v)
	case types.SessionAssets:
		if v.JobDescription != nil {
			mf.writeJobDescription(&out, *v.JobDescription)
		}
		if len(v.InterviewQuestions) > 0 {
			mf.writeQuestions(&out, v.InterviewQuestions)
		}
		if len(v.CandidateProfiles) > 0 {
			mf.writeProfiles(&out, v.CandidateProfiles)
		}
		if v.AdvancedAssets != nil {
			mf.writeAdvanced(&out, *v.AdvancedAssets)
		}
	default:
		return "", fmt.Errorf("expected %s, got %T", mf.dataType, data)
	}

	return out.String(), nil
}

func (mf *MarkdownFormatter) SupportedType() string {
	return mf.dataType
}

func mdBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func (mf *MarkdownFormatter) writeJobDescription(b *strings.Builder, jd types.JobDescription) {
	h := mf.h
	fmt.Fprintf(b, "# %s\n\n", jd.Title)
	fmt.Fprintf(b, "## %s\n\n%s\n\n", h.AboutUs, jd.AboutUs)
	fmt.Fprintf(b, "## %s\n\n", h.WhyJoin)
	mdBullets(b, jd.SellingPoints)
	fmt.Fprintf(b, "## %s\n\n%s\n\n", h.Summary, jd.Summary)
	fmt.Fprintf(b, "## %s\n\n", h.Responsibilities)
	mdBullets(b, jd.Responsibilities)

	fmt.Fprintf(b, "## %s\n\n", h.HardSkills)
	for _, skill := range jd.HardSkills {
		if types.IsPlaceholder(skill) {
			fmt.Fprintf(b, "- **%s**\n", skill)
			continue
		}
		fmt.Fprintf(b, "- %s\n", skill)
	}
	b.WriteString("\n")

	fmt.Fprintf(b, "## %s\n\n", h.NiceToHaves)
	mdBullets(b, jd.NiceToHaves)
	fmt.Fprintf(b, "## %s\n\n", h.SoftSkills)
	mdBullets(b, jd.SoftSkills)
	fmt.Fprintf(b, "## %s\n\n", h.Offerings)
	mdBullets(b, jd.Offerings)

	if jd.Salary != nil {
		fmt.Fprintf(b, "## %s\n\n%s\n\n", h.Salary, formatSalary(jd.Salary))
	}
}

func (mf *MarkdownFormatter) writeQuestions(b *strings.Builder, questions []types.InterviewQuestion) {
	fmt.Fprintf(b, "## %s\n\n_%d %s_\n\n", mf.h.InterviewGuide, len(questions), mf.h.Questions)
	n := 0
	for _, category := range types.QuestionCategories {
		first := true
		for _, q := range questions {
			if q.Category != category {
				continue
			}
			if first {
				fmt.Fprintf(b, "### %s\n\n", category.Label(mf.lang).Title)
				first = false
			}
			n++
			fmt.Fprintf(b, "%d. %s  \n   _%s: %s_\n", n, q.Question, mf.h.Target, q.TargetSkill)
		}
		if !first {
			b.WriteString("\n")
		}
	}
}

func (mf *MarkdownFormatter) writeProfiles(b *strings.Builder, profiles []types.CandidateProfile) {
	fmt.Fprintf(b, "## %s\n\n", mf.h.Profiles)
	for _, p := range profiles {
		fmt.Fprintf(b, "### %s\n\n%s\n\n", p.Type.Label(mf.lang).Title, p.Description)
		fmt.Fprintf(b, "- **%s:** %s\n", mf.h.KeySellingPoint, p.KeySellingPoint)
		fmt.Fprintf(b, "- **%s:** %s\n\n", mf.h.RedFlag, p.RedFlag)
	}
}

func (mf *MarkdownFormatter) writeAdvanced(b *strings.Builder, a types.AdvancedAssets) {
	h := mf.h

	fmt.Fprintf(b, "## %s\n\n**%s:** %s\n\n", h.Outreach, h.Subject, a.OutreachMessage.Headline)
	fmt.Fprintf(b, "```\n%s\n```\n\n", a.OutreachMessage.Content)

	fmt.Fprintf(b, "## %s\n\n**%s:** %s\n\n**%s:** %s\n\n", h.Challenge,
		h.Objective, a.HiringChallenge.Objective, h.Duration, a.HiringChallenge.Duration)
	fmt.Fprintf(b, "**%s**\n\n", h.Deliverables)
	mdBullets(b, a.HiringChallenge.Deliverables)
	fmt.Fprintf(b, "**%s**\n\n", h.Criteria)
	mdBullets(b, a.HiringChallenge.EvaluationCriteria)

	fmt.Fprintf(b, "## %s\n\n", h.Screening)
	for i, q := range a.ScreeningQuestions {
		fmt.Fprintf(b, "%d. **%s** %s\n", i+1, q.Category, q.Question)
	}
	b.WriteString("\n")

	fmt.Fprintf(b, "## %s\n\n| | |\n|---|---|\n", h.KPIs)
	for _, k := range a.KPIs {
		fmt.Fprintf(b, "| %s | %s |\n", k.Timeframe, k.Goal)
	}
	b.WriteString("\n")

	fmt.Fprintf(b, "## %s\n\n**%s**\n\n", h.Onboarding, h.Week1)
	mdBullets(b, a.OnboardingPlan.Week1)
	fmt.Fprintf(b, "**%s:** %s\n\n", h.Day30, a.OnboardingPlan.Day30Milestone)

	fmt.Fprintf(b, "## %s\n\n**%s**\n\n", h.Comp, h.Advantages)
	mdBullets(b, a.CompAnalysis.CompetitiveAdvantages)
	fmt.Fprintf(b, "**%s:** %s\n\n", h.Negotiation, a.CompAnalysis.NegotiationTactic)

	fmt.Fprintf(b, "## %s\n\n", h.Stakeholders)
	for _, s := range a.Stakeholders {
		fmt.Fprintf(b, "- **%s:** %s\n", s.Role, s.CollaborationGoal)
	}
	b.WriteString("\n")

	fmt.Fprintf(b, "## %s\n\n", h.Bias)
	for _, item := range a.BiasAnalysis {
		fmt.Fprintf(b, "- ~~%s~~ (%s: %s)  \n  **%s:** %s\n", item.OriginalText, h.BiasDetected, item.BiasType, h.Suggestion, item.Suggestion)
	}
}
