package common

import (
	"testing"

	"hireforge/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	tests := []struct {
		name             string
		format           string
		supportedFormats []string
		expectedError    string
	}{
		{name: "json", format: "json", supportedFormats: supported},
		{name: "text", format: "text", supportedFormats: supported},
		{name: "markdown", format: "markdown", supportedFormats: supported},
		{
			name:             "xml",
			format:           "xml",
			supportedFormats: supported,
			expectedError:    "INVALID_FORMAT: unsupported output format 'xml'. Supported formats: [json text markdown]",
		},
		{
			name:             "case sensitive",
			format:           "JSON",
			supportedFormats: supported,
			expectedError:    "INVALID_FORMAT: unsupported output format 'JSON'. Supported formats: [json text markdown]",
		},
		{
			name:             "empty format string",
			format:           "",
			supportedFormats: supported,
			expectedError:    "INVALID_FORMAT: unsupported output format ''. Supported formats: [json text markdown]",
		},
		{name: "no restrictions", format: "xml", supportedFormats: nil},
		{
			name:             "single supported format",
			format:           "text",
			supportedFormats: []string{"json"},
			expectedError:    "INVALID_FORMAT: unsupported output format 'text'. Supported formats: [json]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supportedFormats)
			if tt.expectedError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expectedError, err.Error())
			assert.Equal(t, errors.ErrorTypeValidation, errors.TypeOf(err))
		})
	}
}

func TestGetSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "text"}, GetSupportedFormats([]string{"json", "text"}))
	assert.Empty(t, GetSupportedFormats(nil))
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supportedFormats := []string{"json", "text", "markdown"}

	b.Run("valid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("json", supportedFormats)
		}
	})

	b.Run("invalid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("xml", supportedFormats)
		}
	})
}
