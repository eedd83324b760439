package ai

import "hireforge/internal/types"

// SystemPrompts contains all system-level instructions for generator interactions
type SystemPrompts struct {
	JobAssets         string
	CandidateProfiles string
	AdvancedAssets    string
	Chat              string
}

// UserPrompts contains user-level templates rendered with text/template
type UserPrompts struct {
	JobAssets         string
	CandidateProfiles string
	AdvancedAssets    string
}

// ImageNote precedes the instruction when an image is attached.
const ImageNote = "Please also analyze this image which contains additional notes or context for the role. Use it as supplementary context."

// NoChatContext is embedded in the chat instruction before anything is generated.
const NoChatContext = "No context yet."

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	JobAssets: `You are an expert Recruitment Consultant writing in {{.Language}}.
You turn raw hiring notes into polished, compelling recruitment material.
Every string you produce is written in {{.Language}}. Return JSON only.`,

	CandidateProfiles: `You are an expert Recruitment Consultant writing in {{.Language}}.
You describe ideal candidate personas for a role so that a recruiter can recognise them quickly.
Return JSON only.`,

	AdvancedAssets: `You are a senior Talent Acquisition strategist writing in {{.Language}}.
You build practical recruiting toolkits that a hiring team can use the same day.
Return strictly in JSON.`,

	Chat: `You are a helpful recruitment assistant AI speaking {{.Language}}.
You are helping a user refine recruitment documents.
Use the following context about the current role if available: {{.Context}}

Be concise, helpful, and professional. Reply in {{.Language}}.`,
}

// DefaultUserPrompts provides the default user templates
var DefaultUserPrompts = UserPrompts{
	JobAssets: `Based on the following raw notes{{if .HasImage}} (and the attached image){{end}}, generate a comprehensive Job Description and an Extended Interview Guide in {{.Language}}.

Raw Notes:
{{.Notes}}

Output 1: Polished Job Description ({{.Language}})
- TONE: Professional, energetic, and compelling.
- ACTIVE VOICE CHECK: STRICTLY use Active Voice{{if eq .LanguageCode "he"}} (לשון פעילה){{end}} with strong action verbs. Avoid passive phrases like "will be responsible for". Use "Lead", "Drive", "Create", "Manage"{{if eq .LanguageCode "he"}} (in Hebrew equivalents like "הובל", "נהל", "פתח"){{end}}.

Structure:
1. Title
2. About Us: Brief, engaging company vision/culture intro.
3. Key Selling Points: 3 top reasons to join.
4. Role Summary.
5. Responsibilities: Achievement-oriented bullets using strong active verbs.
6. Hard Skills: Technical must-haves. IMPORTANT: Include exactly one placeholder like "{{.Placeholder}}" as one of the items.
7. Nice-to-Have Skills: Advantages.
8. Soft Skills: Behavioral attributes.
9. What We Offer: Benefits, growth, work-life balance.
10. Salary: Extract the salary range if available into numerical min/max values with min not greater than max. Omit it when the notes give no range.

Output 2: Extended Interview Guide ({{.TotalQuestions}} Questions) ({{.Language}})
- {{.TotalQuestions}} Behavioral Questions (STAR method).
- Map each question to a specific skill.
- Distribution:
   - {{.General}} General Competency (label as "Hard Skill" or "Soft Skill")
   - {{.Conflict}} Conflict Resolution & Interpersonal (label as "Conflict Resolution")
   - {{.ProblemSolving}} Complex Problem Solving (label as "Problem Solving")
   - {{.DEI}} DEI (Diversity, Equity, and Inclusion) (label as "DEI"). Questions assessing awareness of bias, inclusive collaboration, and fostering a diverse environment.
- Keep the "type" field exactly as one of the English labels above. Do not translate it.

Return JSON only. All other strings in {{.Language}}.`,

	CandidateProfiles: `Based on the Job Description provided, generate three distinct Ideal Candidate Profiles in {{.Language}}.

Job Title: {{.Title}}
Summary: {{.Summary}}
Hard Skills: {{join .HardSkills ", "}}

Profiles to generate (one each):
{{range $i, $p := .ProfileTypes}}{{inc $i}}. The {{$p}}
{{end}}
For each, include:
- Description (in {{.Language}})
- Key Selling Point (Hook) (in {{.Language}})
- Potential Red Flag (Weakness to probe) (in {{.Language}})

IMPORTANT: Keep the 'type' field exactly as the English label listed above. It is consumed programmatically and must never be translated.`,

	AdvancedAssets: `Based on the Job Description below, generate a comprehensive "Pro Recruitment Toolkit" with 8 distinct assets in {{.Language}}.

Job Context:
Title: {{.Title}}
Summary: {{.Summary}}
Responsibilities: {{join .Responsibilities ", "}}
Hard Skills: {{join .HardSkills ", "}}

--- ASSETS TO GENERATE ---

1. Recruiter Outreach Message:
   - Catchy headline, key challenge, one hard skill, call to action. Max 5 lines.

2. Success Metrics (KPIs), exactly {{.KPIs}}:
   - 90 Days (Learning), 6 Months (Delivery), 12 Months (Impact).

3. Bias Analysis:
   - 3 phrases to neutralize.

4. Hiring Challenge (Home Assignment):
   - Objective, 2 Deliverables, Duration (3-4h), Evaluation Criteria.

5. Screening Questions ({{.ScreeningQuestions}} Total):
   - Covers: Compensation, Availability, Motivation, Hard Skill check.

6. Onboarding Plan (30 Days):
   - Week 1 checklist.
   - Day 30 Milestone project.

7. Compensation Analysis:
   - 2 non-monetary competitive advantages.
   - 1 negotiation tactic for a +15% salary ask.

8. Stakeholder Map:
   - {{.Stakeholders}} Key Stakeholders (Role + Collaboration Goal).

Return strictly in JSON.`,
}

// defaultSystemPrompt returns the built-in system template for task.
func defaultSystemPrompt(task types.Task) string {
	switch task {
	case types.TaskJobAssets:
		return DefaultSystemPrompts.JobAssets
	case types.TaskCandidateProfiles:
		return DefaultSystemPrompts.CandidateProfiles
	case types.TaskAdvancedAssets:
		return DefaultSystemPrompts.AdvancedAssets
	case types.TaskChat:
		return DefaultSystemPrompts.Chat
	}
	return ""
}

// defaultUserPrompt returns the built-in user template for task.
func defaultUserPrompt(task types.Task) string {
	switch task {
	case types.TaskJobAssets:
		return DefaultUserPrompts.JobAssets
	case types.TaskCandidateProfiles:
		return DefaultUserPrompts.CandidateProfiles
	case types.TaskAdvancedAssets:
		return DefaultUserPrompts.AdvancedAssets
	}
	return ""
}
