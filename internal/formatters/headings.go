package formatters

import "strings"

// headings holds the section titles of the rendered documents.
type headings struct {
	AboutUs          string
	WhyJoin          string
	Summary          string
	Responsibilities string
	HardSkills       string
	NiceToHaves      string
	SoftSkills       string
	Offerings        string
	Salary           string

	InterviewGuide string
	Questions      string
	Target         string

	Profiles        string
	KeySellingPoint string
	RedFlag         string

	Outreach     string
	Subject      string
	Challenge    string
	Objective    string
	Deliverables string
	Duration     string
	Criteria     string
	Screening    string
	KPIs         string
	Onboarding   string
	Week1        string
	Day30        string
	Comp         string
	Advantages   string
	Negotiation  string
	Stakeholders string
	Bias         string
	BiasDetected string
	Suggestion   string
}

var headingTable = map[string]headings{
	"he": {
		AboutUs:          "על החברה",
		WhyJoin:          "למה להצטרף אלינו?",
		Summary:          "תקציר המשרה",
		Responsibilities: "תחומי אחריות",
		HardSkills:       "דרישות חובה",
		NiceToHaves:      "יתרון משמעותי",
		SoftSkills:       "כישורים רכים",
		Offerings:        "מה אנחנו מציעים",
		Salary:           "טווח שכר (חודשי)",

		InterviewGuide: "מדריך ראיונות התנהגותי מורחב",
		Questions:      "שאלות",
		Target:         "מטרה",

		Profiles:        "פרופילי מועמדים אידיאליים",
		KeySellingPoint: "נקודת מכירה",
		RedFlag:         "נורה אדומה פוטנציאלית",

		Outreach:     "1. הודעת פנייה (Outreach)",
		Subject:      "נושא / כותרת",
		Challenge:    "2. אתגר גיוס (בית)",
		Objective:    "מטרה",
		Deliverables: "תוצרים נדרשים",
		Duration:     "משך",
		Criteria:     "קריטריונים להערכה",
		Screening:    "3. שאלות סינון (Screening)",
		KPIs:         "4. מדדי הצלחה (KPIs)",
		Onboarding:   "5. תכנית קליטה (30 יום)",
		Week1:        "שבוע 1: היכרות",
		Day30:        "אבן דרך (יום 30)",
		Comp:         "6. ניתוח שכר ומו\"מ",
		Advantages:   "יתרונות תחרותיים (לא כספיים)",
		Negotiation:  "טקטיקה לדרישת +15%",
		Stakeholders: "7. מפת גורמי מפתח",
		Bias:         "8. ניתוח הטיות (DEI)",
		BiasDetected: "זוהתה הטיה",
		Suggestion:   "הצעה",
	},
	"en": {
		AboutUs:          "About us",
		WhyJoin:          "Why join us?",
		Summary:          "Role summary",
		Responsibilities: "Responsibilities",
		HardSkills:       "Requirements",
		NiceToHaves:      "Nice to have",
		SoftSkills:       "Soft skills",
		Offerings:        "What we offer",
		Salary:           "Salary range (monthly)",

		InterviewGuide: "Behavioral interview guide",
		Questions:      "questions",
		Target:         "Target",

		Profiles:        "Ideal candidate profiles",
		KeySellingPoint: "Selling point",
		RedFlag:         "Potential red flag",

		Outreach:     "1. Outreach message",
		Subject:      "Subject",
		Challenge:    "2. Take-home challenge",
		Objective:    "Objective",
		Deliverables: "Deliverables",
		Duration:     "Duration",
		Criteria:     "Evaluation criteria",
		Screening:    "3. Screening questions",
		KPIs:         "4. Success metrics (KPIs)",
		Onboarding:   "5. Onboarding plan (30 days)",
		Week1:        "Week 1: getting to know",
		Day30:        "Milestone (day 30)",
		Comp:         "6. Compensation and negotiation",
		Advantages:   "Competitive advantages (non-monetary)",
		Negotiation:  "Tactic for a +15% ask",
		Stakeholders: "7. Stakeholder map",
		Bias:         "8. Bias analysis (DEI)",
		BiasDetected: "Bias detected",
		Suggestion:   "Suggestion",
	},
}

func headingsFor(lang string) headings {
	if h, ok := headingTable[strings.ToLower(lang)]; ok {
		return h
	}
	return headingTable["en"]
}
