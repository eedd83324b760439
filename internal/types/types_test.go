package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		skill string
		want  bool
	}{
		{"[Placeholder: Short coding challenge related to Node.js]", true},
		{"[placeholder: אתגר קוד קצר]", true},
		{"[ Placeholder ]", true},
		{"Node.js", false},
		{"Placeholder without brackets", false},
	}

	for _, tt := range tests {
		t.Run(tt.skill, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPlaceholder(tt.skill))
		})
	}
}

func TestPlaceholderSkills(t *testing.T) {
	jd := &JobDescription{HardSkills: []string{"Go", "[Placeholder: Short coding challenge related to Go]", "SQL"}}
	assert.Equal(t, []string{"[Placeholder: Short coding challenge related to Go]"}, jd.PlaceholderSkills())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "פתרון בעיות", CategoryProblemSolving.Label("he").Title)
	assert.Equal(t, "Problem Solving", CategoryProblemSolving.Label("fr").Title)
	assert.Equal(t, "Unknown", QuestionCategory("Unknown").Label("he").Title)
	assert.Equal(t, "המומחה הוותיק", ProfileVeteranSpecialist.Label("HE").Title)

	for _, c := range QuestionCategories {
		assert.NotEmpty(t, c.Label("he").Title, c)
		assert.True(t, c.Valid())
	}
	for _, p := range ProfileTypes {
		assert.NotEmpty(t, p.Label("he").Title, p)
		assert.True(t, p.Valid())
	}
	assert.False(t, QuestionCategory("מיומנות טכנית").Valid())
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Hebrew", LanguageName("he"))
	assert.Equal(t, "English", LanguageName("EN"))
	assert.Equal(t, "French", LanguageName("French"))
	assert.Equal(t, "Hebrew", LanguageName(""))
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"one", "two"}, SplitLines("one\n\n  \n two \n"))
	assert.Nil(t, SplitLines("   "))
}

func TestSalaryMidpoint(t *testing.T) {
	assert.Equal(t, 25000.0, SalaryRange{Min: 20000, Max: 30000, Currency: "ILS"}.Midpoint())
}

func TestSessionAssetsRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		assets SessionAssets
	}{
		{"empty", SessionAssets{}},
		{
			"job assets only",
			SessionAssets{
				JobDescription: &JobDescription{Title: "Backend", HardSkills: []string{"Go", "SQL"}},
				InterviewQuestions: []InterviewQuestion{
					{ID: "b", Question: "q2", Category: CategoryDEI},
					{ID: "a", Question: "q1", Category: CategoryHardSkill},
				},
			},
		},
		{
			"empty list stays empty",
			SessionAssets{CandidateProfiles: []CandidateProfile{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.assets)
			require.NoError(t, err)

			var got SessionAssets
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.assets, got)
			assert.Equal(t, tt.assets.CandidateProfiles == nil, got.CandidateProfiles == nil)
		})
	}
}

func TestNotices(t *testing.T) {
	assert.Equal(t, "יצירת הפרופילים נכשלה.", FailureNotice(TaskCandidateProfiles).Text("he"))
	assert.Equal(t, "Generating the advanced toolkit failed.", FailureNotice(TaskAdvancedAssets).Text("EN"))
	assert.Equal(t, NoticeChatFailed.Text("en"), NoticeChatFailed.Text("fr"), "unknown languages fall back to English")
	assert.Equal(t, NoticeChatFailed, FailureNotice(TaskChat))
}
