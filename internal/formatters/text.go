package formatters

import (
	"fmt"
	"strings"

	"hireforge/internal/types"
)

// TextFormatter renders plain text meant to be pasted into job boards and
// messages.
type TextFormatter struct {
	dataType string
	lang     string
	h        headings
}

func (tf *TextFormatter) Format(data any) (string, error) {
	var out strings.Builder

	switch v := data.(type) {
	case types.JobDescription:
		out.WriteString(JobDescriptionCopyText(v, tf.lang))
		out.WriteString("\n")
	case types.JobAssets:
		out.WriteString(JobDescriptionCopyText(v.JobDescription, tf.lang))
		out.WriteString("\n\n")
		tf.writeQuestions(&out, v.InterviewQuestions)
	case []types.CandidateProfile:
		tf.writeProfiles(&out, v)
	case types.AdvancedAssets:
		tf.writeAdvanced(&out, v)
	case types.SessionAssets:
		tf.writeSession(&out, v)
	default:
		return "", fmt.Errorf("expected %s, got %T", tf.dataType, data)
	}

	return out.String(), nil
}

func (tf *TextFormatter) SupportedType() string {
	return tf.dataType
}

// JobDescriptionCopyText renders the posting as copy-ready text: the title,
// then each section under its localized heading with "- " bullets.
func JobDescriptionCopyText(jd types.JobDescription, lang string) string {
	h := headingsFor(lang)
	var b strings.Builder

	b.WriteString(jd.Title)
	writeTextSection(&b, h.AboutUs, jd.AboutUs)
	writeTextBullets(&b, h.WhyJoin, jd.SellingPoints)
	writeTextSection(&b, h.Summary, jd.Summary)
	writeTextBullets(&b, h.Responsibilities, jd.Responsibilities)
	writeTextBullets(&b, h.HardSkills, jd.HardSkills)
	writeTextBullets(&b, h.NiceToHaves, jd.NiceToHaves)
	writeTextBullets(&b, h.SoftSkills, jd.SoftSkills)
	writeTextBullets(&b, h.Offerings, jd.Offerings)

	return strings.TrimSpace(b.String())
}

// heading adds a colon unless the title already ends in a question mark.
func heading(title string) string {
	if strings.HasSuffix(title, "?") {
		return title
	}
	return title + ":"
}

func writeTextSection(b *strings.Builder, title, body string) {
	fmt.Fprintf(b, "\n\n%s\n%s", heading(title), body)
}

func writeTextBullets(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "\n\n%s", heading(title))
	for _, item := range items {
		fmt.Fprintf(b, "\n- %s", item)
	}
}

func formatSalary(s *types.SalaryRange) string {
	return fmt.Sprintf("%.0f - %.0f %s", s.Min, s.Max, s.Currency)
}

func (tf *TextFormatter) writeQuestions(b *strings.Builder, questions []types.InterviewQuestion) {
	fmt.Fprintf(b, "=== %s (%d %s) ===\n", tf.h.InterviewGuide, len(questions), tf.h.Questions)
	n := 0
	for _, category := range types.QuestionCategories {
		first := true
		for _, q := range questions {
			if q.Category != category {
				continue
			}
			if first {
				fmt.Fprintf(b, "\n[%s]\n", category.Label(tf.lang).Title)
				first = false
			}
			n++
			fmt.Fprintf(b, "%d. %s\n   %s: %s\n", n, q.Question, tf.h.Target, q.TargetSkill)
		}
	}
}

func (tf *TextFormatter) writeProfiles(b *strings.Builder, profiles []types.CandidateProfile) {
	fmt.Fprintf(b, "=== %s ===\n", tf.h.Profiles)
	for _, p := range profiles {
		fmt.Fprintf(b, "\n[%s]\n%s\n", p.Type.Label(tf.lang).Title, p.Description)
		fmt.Fprintf(b, "%s %s\n", heading(tf.h.KeySellingPoint), p.KeySellingPoint)
		fmt.Fprintf(b, "%s %s\n", heading(tf.h.RedFlag), p.RedFlag)
	}
}

func (tf *TextFormatter) writeAdvanced(b *strings.Builder, a types.AdvancedAssets) {
	h := tf.h

	fmt.Fprintf(b, "=== %s ===\n%s %s\n\n%s\n", h.Outreach, heading(h.Subject), a.OutreachMessage.Headline, a.OutreachMessage.Content)

	fmt.Fprintf(b, "\n=== %s ===\n%s %s\n", h.Challenge, heading(h.Objective), a.HiringChallenge.Objective)
	fmt.Fprintf(b, "%s %s\n", heading(h.Duration), a.HiringChallenge.Duration)
	writeList(b, heading(h.Deliverables), a.HiringChallenge.Deliverables)
	writeList(b, heading(h.Criteria), a.HiringChallenge.EvaluationCriteria)

	fmt.Fprintf(b, "\n=== %s ===\n", h.Screening)
	for i, q := range a.ScreeningQuestions {
		fmt.Fprintf(b, "%d. [%s] %s\n", i+1, q.Category, q.Question)
	}

	fmt.Fprintf(b, "\n=== %s ===\n", h.KPIs)
	for _, k := range a.KPIs {
		fmt.Fprintf(b, "- %s: %s\n", k.Timeframe, k.Goal)
	}

	fmt.Fprintf(b, "\n=== %s ===\n", h.Onboarding)
	writeList(b, heading(h.Week1), a.OnboardingPlan.Week1)
	fmt.Fprintf(b, "%s %s\n", heading(h.Day30), a.OnboardingPlan.Day30Milestone)

	fmt.Fprintf(b, "\n=== %s ===\n", h.Comp)
	writeList(b, heading(h.Advantages), a.CompAnalysis.CompetitiveAdvantages)
	fmt.Fprintf(b, "%s %s\n", heading(h.Negotiation), a.CompAnalysis.NegotiationTactic)

	fmt.Fprintf(b, "\n=== %s ===\n", h.Stakeholders)
	for _, s := range a.Stakeholders {
		fmt.Fprintf(b, "- %s: %s\n", s.Role, s.CollaborationGoal)
	}

	fmt.Fprintf(b, "\n=== %s ===\n", h.Bias)
	for _, item := range a.BiasAnalysis {
		fmt.Fprintf(b, "- \"%s\" (%s: %s)\n  %s %s\n", item.OriginalText, h.BiasDetected, item.BiasType, heading(h.Suggestion), item.Suggestion)
	}
}

func writeList(b *strings.Builder, title string, items []string) {
	b.WriteString(title)
	b.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func (tf *TextFormatter) writeSession(b *strings.Builder, s types.SessionAssets) {
	if s.JobDescription != nil {
		b.WriteString(JobDescriptionCopyText(*s.JobDescription, tf.lang))
		if s.JobDescription.Salary != nil {
			fmt.Fprintf(b, "\n\n%s %s", heading(tf.h.Salary), formatSalary(s.JobDescription.Salary))
		}
		b.WriteString("\n\n")
	}
	if len(s.InterviewQuestions) > 0 {
		tf.writeQuestions(b, s.InterviewQuestions)
		b.WriteString("\n")
	}
	if len(s.CandidateProfiles) > 0 {
		tf.writeProfiles(b, s.CandidateProfiles)
		b.WriteString("\n")
	}
	if s.AdvancedAssets != nil {
		tf.writeAdvanced(b, *s.AdvancedAssets)
	}
}
