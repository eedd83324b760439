package schema

import (
	"strings"

	"google.golang.org/genai"
)

// ToJSONSchema converts a generator response schema into an equivalent JSON
// Schema (draft-07) document so the raw body can be checked locally against
// the same declaration that was sent upstream.
func ToJSONSchema(s *genai.Schema) map[string]any {
	if s == nil {
		return map[string]any{}
	}

	doc := map[string]any{}
	if s.Type != "" {
		typ := strings.ToLower(string(s.Type))
		if s.Nullable != nil && *s.Nullable {
			doc["type"] = []string{typ, "null"}
		} else {
			doc["type"] = typ
		}
	}

	if len(s.Enum) > 0 {
		enum := make([]any, len(s.Enum))
		for i, v := range s.Enum {
			enum[i] = v
		}
		doc["enum"] = enum
	}

	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = ToJSONSchema(prop)
		}
		doc["properties"] = props
	}

	if len(s.Required) > 0 {
		required := make([]any, len(s.Required))
		for i, name := range s.Required {
			required[i] = name
		}
		doc["required"] = required
	}

	if s.Items != nil {
		doc["items"] = ToJSONSchema(s.Items)
	}
	if s.MinItems != nil {
		doc["minItems"] = *s.MinItems
	}
	if s.MaxItems != nil {
		doc["maxItems"] = *s.MaxItems
	}

	return doc
}
