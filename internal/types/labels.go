package types

import "strings"

// Label is the human-readable rendering of a machine token.
type Label struct {
	Title string `json:"title"`
	Icon  string `json:"icon,omitempty"`
}

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "he"

var languageNames = map[string]string{
	"he": "Hebrew",
	"en": "English",
}

// LanguageName returns the English name of a language code, used inside prompts.
// Unknown codes are returned as-is so a full name like "French" also works.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	if code == "" {
		return languageNames[DefaultLanguage]
	}
	return code
}

var questionCategoryLabels = map[string]map[QuestionCategory]Label{
	"he": {
		CategoryHardSkill:          {Title: "מיומנות טכנית", Icon: "code"},
		CategorySoftSkill:          {Title: "מיומנות רכה", Icon: "users"},
		CategoryProblemSolving:     {Title: "פתרון בעיות", Icon: "puzzle"},
		CategoryConflictResolution: {Title: "ניהול קונפליקטים", Icon: "scale"},
		CategoryDEI:                {Title: "גיוון והכלה (DEI)", Icon: "heart"},
	},
	"en": {
		CategoryHardSkill:          {Title: "Hard Skill", Icon: "code"},
		CategorySoftSkill:          {Title: "Soft Skill", Icon: "users"},
		CategoryProblemSolving:     {Title: "Problem Solving", Icon: "puzzle"},
		CategoryConflictResolution: {Title: "Conflict Resolution", Icon: "scale"},
		CategoryDEI:                {Title: "Diversity, Equity & Inclusion", Icon: "heart"},
	},
}

var profileTypeLabels = map[string]map[ProfileType]Label{
	"he": {
		ProfileHighPotentialJunior: {Title: "ג'וניור עם פוטנציאל גבוה", Icon: "sprout"},
		ProfileCoreMidLevel:        {Title: "הליבה (Mid-Level)", Icon: "briefcase"},
		ProfileVeteranSpecialist:   {Title: "המומחה הוותיק", Icon: "award"},
	},
	"en": {
		ProfileHighPotentialJunior: {Title: "High-Potential Junior", Icon: "sprout"},
		ProfileCoreMidLevel:        {Title: "Core Mid-Level", Icon: "briefcase"},
		ProfileVeteranSpecialist:   {Title: "Veteran Specialist", Icon: "award"},
	},
}

// Label returns the localized label for c, falling back to English and then
// to the raw token.
func (c QuestionCategory) Label(lang string) Label {
	return lookupLabel(questionCategoryLabels, lang, c, string(c))
}

// Label returns the localized label for p, falling back to English and then
// to the raw token.
func (p ProfileType) Label(lang string) Label {
	return lookupLabel(profileTypeLabels, lang, p, string(p))
}

func lookupLabel[K comparable](table map[string]map[K]Label, lang string, key K, raw string) Label {
	for _, l := range []string{strings.ToLower(lang), "en"} {
		if label, ok := table[l][key]; ok {
			return label
		}
	}
	return Label{Title: raw}
}

// Notice identifies a fixed user-facing message.
type Notice string

const (
	NoticeChatWelcome       Notice = "chat_welcome"
	NoticeChatFailed        Notice = "chat_failed"
	NoticeJobAssetsFailed   Notice = "job_assets_failed"
	NoticeProfilesFailed    Notice = "candidate_profiles_failed"
	NoticeAdvancedFailed    Notice = "advanced_assets_failed"
	NoticeMissingJobDesc    Notice = "missing_job_description"
	NoticeGenerationTimeout Notice = "generation_timeout"
)

var notices = map[string]map[Notice]string{
	"he": {
		NoticeChatWelcome:       "היי! אני יכול לעזור לך לחדד את מסמכי הגיוס או לענות על שאלות. שאל אותי כל דבר!",
		NoticeChatFailed:        "אני מצטער, נתקלתי בשגיאה בזמן החשיבה. אנא נסה שנית.",
		NoticeJobAssetsFailed:   "יצירת הנכסים נכשלה. אנא נסה שנית.",
		NoticeProfilesFailed:    "יצירת הפרופילים נכשלה.",
		NoticeAdvancedFailed:    "יצירת הכלים המתקדמים נכשלה.",
		NoticeMissingJobDesc:    "יש ליצור תיאור משרה לפני שלב זה.",
		NoticeGenerationTimeout: "היצירה ארכה זמן רב מדי. אנא נסה שנית.",
	},
	"en": {
		NoticeChatWelcome:       "Hi! I can help you refine the recruitment documents or answer questions. Ask me anything!",
		NoticeChatFailed:        "Sorry, I ran into an error while thinking. Please try again.",
		NoticeJobAssetsFailed:   "Generating the assets failed. Please try again.",
		NoticeProfilesFailed:    "Generating the candidate profiles failed.",
		NoticeAdvancedFailed:    "Generating the advanced toolkit failed.",
		NoticeMissingJobDesc:    "Generate a job description first.",
		NoticeGenerationTimeout: "Generation took too long. Please try again.",
	},
}

// Text returns the localized notice, falling back to English.
func (n Notice) Text(lang string) string {
	for _, l := range []string{strings.ToLower(lang), "en"} {
		if text, ok := notices[l][n]; ok {
			return text
		}
	}
	return string(n)
}

// FailureNotice returns the notice shown when task fails.
func FailureNotice(task Task) Notice {
	switch task {
	case TaskJobAssets:
		return NoticeJobAssetsFailed
	case TaskCandidateProfiles:
		return NoticeProfilesFailed
	case TaskAdvancedAssets:
		return NoticeAdvancedFailed
	}
	return NoticeChatFailed
}
