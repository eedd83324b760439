package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"hireforge/internal/testutil"
	"hireforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobDescriptionCopyText(t *testing.T) {
	jd := types.JobDescription{
		Title:            "מפתח/ת Backend",
		AboutUs:          "סטארטאפ",
		SellingPoints:    []string{"השפעה"},
		Summary:          "תקציר",
		Responsibilities: []string{"API", "DB"},
		HardSkills:       []string{"Go"},
		NiceToHaves:      []string{"K8s"},
		SoftSkills:       []string{"תקשורת"},
		Offerings:        []string{"היברידי"},
	}

	want := `מפתח/ת Backend

על החברה:
סטארטאפ

למה להצטרף אלינו?
- השפעה

תקציר המשרה:
תקציר

תחומי אחריות:
- API
- DB

דרישות חובה:
- Go

יתרון משמעותי:
- K8s

כישורים רכים:
- תקשורת

מה אנחנו מציעים:
- היברידי`

	assert.Equal(t, want, JobDescriptionCopyText(jd, "he"))

	en := JobDescriptionCopyText(jd, "en")
	assert.Contains(t, en, "About us:\n")
	assert.Contains(t, en, "Why join us?\n- השפעה")
}

func TestCopyTextEmptyOptionalLists(t *testing.T) {
	jd := testutil.JobDescription()
	jd.NiceToHaves = nil

	text := JobDescriptionCopyText(jd, "he")
	assert.Contains(t, text, "יתרון משמעותי:\n\nכישורים רכים:")
	assert.False(t, strings.HasSuffix(text, "\n"))
}

func TestRegistryDispatch(t *testing.T) {
	registry := NewFormatterRegistry("en")
	assets := types.JobAssets{
		JobDescription:     testutil.JobDescription(),
		InterviewQuestions: testutil.Questions(testutil.Distribution()),
	}

	tests := []struct {
		name     string
		data     any
		format   string
		contains []string
	}{
		{
			name:     "job assets text",
			data:     assets,
			format:   "text",
			contains: []string{"Behavioral interview guide (21 questions)", "[Hard Skill]", "[Diversity, Equity & Inclusion]", "Target: "},
		},
		{
			name:     "job assets markdown",
			data:     assets,
			format:   "markdown",
			contains: []string{"# " + assets.JobDescription.Title, "## Requirements", "- **" + testutil.PlaceholderSkill + "**", "### Problem Solving"},
		},
		{
			name:     "profiles text",
			data:     testutil.Profiles(),
			format:   "text",
			contains: []string{"=== Ideal candidate profiles ===", "[Veteran Specialist]", "Potential red flag:"},
		},
		{
			name:     "advanced markdown",
			data:     testutil.AdvancedAssets(),
			format:   "markdown",
			contains: []string{"## 1. Outreach message", "## 8. Bias analysis (DEI)", "| ", "```"},
		},
		{
			name:     "session text with salary",
			data:     types.SessionAssets{JobDescription: &assets.JobDescription},
			format:   "text",
			contains: []string{"Salary range (monthly): 25000 - 35000 ILS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := registry.Format(tt.data, tt.format)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestRegistryJSONAndErrors(t *testing.T) {
	registry := NewFormatterRegistry("he")

	out, err := registry.Format(testutil.AdvancedAssets(), "json")
	require.NoError(t, err)
	var decoded types.AdvancedAssets
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, testutil.AdvancedAssets().OutreachMessage, decoded.OutreachMessage)

	_, err = registry.Format(map[string]string{"a": "b"}, "text")
	assert.Error(t, err, "text has no generic formatter")

	_, err = registry.Format(testutil.Profiles(), "xml")
	assert.Error(t, err)

	assert.Equal(t, []string{"json", "markdown", "text"}, registry.GetSupportedFormats())
}

func TestHeadingsFallback(t *testing.T) {
	assert.Equal(t, headingTable["en"], headingsFor("fr"))
	assert.Equal(t, headingTable["he"], headingsFor("HE"))
}
