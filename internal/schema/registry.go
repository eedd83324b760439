// Package schema declares the structured-output contract for each generation
// task and validates raw generator output against it.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	appErrors "hireforge/internal/errors"
	"hireforge/internal/types"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/genai"
)

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every structural failure of one document
type ValidationError struct {
	Task   types.Task
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s output failed schema validation:", ve.Task)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, " %d. %s: %s;", i+1, err.Field, err.Message)
	}
	return strings.TrimSuffix(sb.String(), ";")
}

type entry struct {
	genai    *genai.Schema
	compiled *gojsonschema.Schema
}

// Registry maps each generation task to its declared response schema
type Registry struct {
	entries map[types.Task]entry
}

// NewRegistry compiles the built-in schemas.
func NewRegistry() (*Registry, error) {
	r := &Registry{entries: make(map[types.Task]entry)}

	builtins := map[types.Task]*genai.Schema{
		types.TaskJobAssets:         JobAssetsSchema(),
		types.TaskCandidateProfiles: CandidateProfilesSchema(),
		types.TaskAdvancedAssets:    AdvancedAssetsSchema(),
	}
	for task, s := range builtins {
		if err := r.Register(task, s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for package-level initialization.
func MustNewRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// Register compiles s and stores it under task, replacing any previous entry.
func (r *Registry) Register(task types.Task, s *genai.Schema) error {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(ToJSONSchema(s)))
	if err != nil {
		return appErrors.NewInternalError(appErrors.ErrCodeInvalidConfig,
			"failed to compile response schema", err).WithContext("task", string(task))
	}
	r.entries[task] = entry{genai: s, compiled: compiled}
	return nil
}

// Schema returns the declaration sent to the generator for task.
func (r *Registry) Schema(task types.Task) (*genai.Schema, error) {
	e, ok := r.entries[task]
	if !ok {
		return nil, appErrors.NewInternalError(appErrors.ErrCodeInvalidRequest,
			"no response schema registered", nil).WithContext("task", string(task))
	}
	return e.genai, nil
}

// Tasks returns the tasks with a registered schema.
func (r *Registry) Tasks() []types.Task {
	tasks := make([]types.Task, 0, len(r.entries))
	for _, task := range types.GenerationTasks {
		if _, ok := r.entries[task]; ok {
			tasks = append(tasks, task)
		}
	}
	return tasks
}

// JSONSchema returns the JSON Schema document for task, for publishing to clients.
func (r *Registry) JSONSchema(task types.Task) (json.RawMessage, error) {
	s, err := r.Schema(task)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ToJSONSchema(s))
}

// Validate checks raw against the schema of task. Malformed JSON is a parse
// error; a well-formed document that breaks the contract is a schema error
// whose cause is a *ValidationError.
func (r *Registry) Validate(task types.Task, raw []byte) error {
	e, ok := r.entries[task]
	if !ok {
		return appErrors.NewInternalError(appErrors.ErrCodeInvalidRequest,
			"no response schema registered", nil).WithContext("task", string(task))
	}

	if !json.Valid(raw) {
		return appErrors.NewParseError(appErrors.ErrCodeResponseParseFailed,
			"generator response is not valid JSON", nil).WithContext("task", string(task))
	}

	result, err := e.compiled.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return appErrors.NewParseError(appErrors.ErrCodeResponseParseFailed,
			"generator response could not be loaded", err).WithContext("task", string(task))
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Task:   task,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return appErrors.NewSchemaError(appErrors.ErrCodeSchemaMismatch,
		"generator response does not match the declared schema", validationErr).
		WithContext("task", string(task)).
		WithContext("field_errors", len(validationErr.Errors))
}
