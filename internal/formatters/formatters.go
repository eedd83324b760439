package formatters

import (
	"encoding/json"
	"fmt"
	"slices"

	"hireforge/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// Data type keys used by the registry.
const (
	TypeAny               = "any"
	TypeJobAssets         = "JobAssets"
	TypeJobDescription    = "JobDescription"
	TypeCandidateProfiles = "CandidateProfiles"
	TypeAdvancedAssets    = "AdvancedAssets"
	TypeSessionAssets     = "SessionAssets"
)

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a registry whose text and markdown output
// uses headings in lang.
func NewFormatterRegistry(lang string) *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}
	h := headingsFor(lang)

	registry.RegisterFormatter("json", TypeAny, &JSONFormatter{})
	for _, dataType := range []string{TypeJobAssets, TypeJobDescription, TypeCandidateProfiles, TypeAdvancedAssets, TypeSessionAssets} {
		registry.RegisterFormatter("text", dataType, &TextFormatter{dataType: dataType, lang: lang, h: h})
		registry.RegisterFormatter("markdown", dataType, &MarkdownFormatter{dataType: dataType, lang: lang, h: h})
	}

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.JobAssets:
		return TypeJobAssets
	case types.JobDescription:
		return TypeJobDescription
	case []types.CandidateProfile:
		return TypeCandidateProfiles
	case types.AdvancedAssets:
		return TypeAdvancedAssets
	case types.SessionAssets:
		return TypeSessionAssets
	default:
		return TypeAny
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}
