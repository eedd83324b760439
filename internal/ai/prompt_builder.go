package ai

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	appErrors "hireforge/internal/errors"
	"hireforge/internal/schema"
	"hireforge/internal/types"
	"hireforge/internal/validation"

	"google.golang.org/genai"
)

// PlaceholderExample is the marker the generator is asked to embed in hardSkills.
const PlaceholderExample = "[Placeholder: Short coding challenge related to X]"

// PromptSource supplies template overrides. An empty string selects the
// built-in template. *config.Config satisfies it.
type PromptSource interface {
	SystemPrompt(task types.Task) string
	UserPrompt(task types.Task) string
}

// Prompt is a fully rendered single-shot request.
type Prompt struct {
	Task   types.Task
	System string
	Text   string
	Image  *types.ImageAttachment
}

// Contents converts the prompt into the generator request body. An attached
// image goes first, followed by the note asking to use it, then the instruction.
func (p Prompt) Contents() []*genai.Content {
	var parts []*genai.Part
	if p.Image != nil {
		parts = append(parts,
			genai.NewPartFromBytes(p.Image.Data, p.Image.MIMEType),
			genai.NewPartFromText(ImageNote),
		)
	}
	parts = append(parts, genai.NewPartFromText(p.Text))
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// ChatPrompt is one chat turn: the instruction, prior turns and the new message.
type ChatPrompt struct {
	System  string
	History []types.ChatTurn
	Message string
}

// HistoryContents serializes prior turns as role and text pairs.
func (p ChatPrompt) HistoryContents() []*genai.Content {
	history := make([]*genai.Content, 0, len(p.History))
	for _, turn := range p.History {
		var role genai.Role = genai.RoleUser
		if turn.Role == types.RoleAssistant {
			role = genai.RoleModel
		}
		history = append(history, genai.NewContentFromText(turn.Text, role))
	}
	return history
}

type promptData struct {
	Language     string
	LanguageCode string

	Notes       string
	HasImage    bool
	Placeholder string

	TotalQuestions int
	General        int
	Conflict       int
	ProblemSolving int
	DEI            int

	Title            string
	Summary          string
	Responsibilities []string
	HardSkills       []string
	ProfileTypes     []types.ProfileType

	KPIs               int
	ScreeningQuestions int
	Stakeholders       int

	Context string
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"inc":  func(i int) int { return i + 1 },
}

// PromptBuilder renders the instruction for each generation task in the
// configured output language.
type PromptBuilder struct {
	source       PromptSource
	languageCode string

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewPromptBuilder creates a builder. source may be nil.
func NewPromptBuilder(source PromptSource, languageCode string) *PromptBuilder {
	if strings.TrimSpace(languageCode) == "" {
		languageCode = types.DefaultLanguage
	}
	return &PromptBuilder{
		source:       source,
		languageCode: languageCode,
		cache:        make(map[string]*template.Template),
	}
}

// Language returns the output language code.
func (b *PromptBuilder) Language() string {
	return b.languageCode
}

func (b *PromptBuilder) baseData() promptData {
	return promptData{
		Language:     types.LanguageName(b.languageCode),
		LanguageCode: b.languageCode,
	}
}

// BuildJobAssetsPrompt renders the base generation request. Empty notes are
// rendered as-is; callers reject them before submission.
func (b *PromptBuilder) BuildJobAssetsPrompt(input types.GenerateJobAssetsInput) (Prompt, error) {
	data := b.baseData()
	data.Notes = input.Notes
	data.HasImage = input.Image != nil
	data.Placeholder = PlaceholderExample
	data.TotalQuestions = validation.TotalQuestionsWanted
	data.General = validation.GeneralQuestions
	data.Conflict = validation.ConflictQuestions
	data.ProblemSolving = validation.ProblemSolvingCount
	data.DEI = validation.DEIQuestions

	prompt, err := b.render(types.TaskJobAssets, data)
	prompt.Image = input.Image
	return prompt, err
}

// BuildCandidateProfilesPrompt renders the persona request for a completed job description.
func (b *PromptBuilder) BuildCandidateProfilesPrompt(jd types.JobDescription) (Prompt, error) {
	data := b.baseData()
	data.Title = jd.Title
	data.Summary = jd.Summary
	data.HardSkills = jd.HardSkills
	data.ProfileTypes = types.ProfileTypes
	return b.render(types.TaskCandidateProfiles, data)
}

// BuildAdvancedAssetsPrompt renders the toolkit request for a completed job description.
func (b *PromptBuilder) BuildAdvancedAssetsPrompt(jd types.JobDescription) (Prompt, error) {
	data := b.baseData()
	data.Title = jd.Title
	data.Summary = jd.Summary
	data.Responsibilities = jd.Responsibilities
	data.HardSkills = jd.HardSkills
	data.KPIs = schema.KPICount
	data.ScreeningQuestions = schema.ScreeningQuestionCount
	data.Stakeholders = schema.StakeholderCount
	return b.render(types.TaskAdvancedAssets, data)
}

// BuildChatPrompt renders the chat instruction around contextSummary.
func (b *PromptBuilder) BuildChatPrompt(history []types.ChatTurn, message, contextSummary string) (ChatPrompt, error) {
	data := b.baseData()
	data.Context = contextSummary
	if strings.TrimSpace(data.Context) == "" {
		data.Context = NoChatContext
	}

	system, err := b.execute(types.TaskChat, "system", b.systemTemplate(types.TaskChat), data)
	if err != nil {
		return ChatPrompt{}, err
	}
	return ChatPrompt{System: system, History: history, Message: message}, nil
}

func (b *PromptBuilder) render(task types.Task, data promptData) (Prompt, error) {
	system, err := b.execute(task, "system", b.systemTemplate(task), data)
	if err != nil {
		return Prompt{Task: task}, err
	}
	text, err := b.execute(task, "user", b.userTemplate(task), data)
	if err != nil {
		return Prompt{Task: task}, err
	}
	return Prompt{Task: task, System: system, Text: text}, nil
}

func (b *PromptBuilder) systemTemplate(task types.Task) string {
	if b.source != nil {
		if override := b.source.SystemPrompt(task); override != "" {
			return override
		}
	}
	return defaultSystemPrompt(task)
}

func (b *PromptBuilder) userTemplate(task types.Task) string {
	if b.source != nil {
		if override := b.source.UserPrompt(task); override != "" {
			return override
		}
	}
	return defaultUserPrompt(task)
}

func (b *PromptBuilder) execute(task types.Task, kind, text string, data promptData) (string, error) {
	tmpl, err := b.parse(text)
	if err != nil {
		return "", appErrors.NewConfigError(appErrors.ErrCodePromptTemplate,
			"prompt template does not parse", err).
			WithContext("task", string(task)).
			WithContext("kind", kind)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", appErrors.NewConfigError(appErrors.ErrCodePromptTemplate,
			"prompt template failed to render", err).
			WithContext("task", string(task)).
			WithContext("kind", kind)
	}
	return strings.TrimSpace(buf.String()), nil
}

// parse caches templates by source text so that reloaded overrides are
// picked up without reparsing unchanged ones.
func (b *PromptBuilder) parse(text string) (*template.Template, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if tmpl, ok := b.cache[text]; ok {
		return tmpl, nil
	}
	tmpl, err := template.New("prompt").Funcs(templateFuncs).Parse(text)
	if err != nil {
		return nil, err
	}
	b.cache[text] = tmpl
	return tmpl, nil
}
