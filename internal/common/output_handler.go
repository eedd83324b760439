package common

import (
	"fmt"
	"io"
	"os"

	"hireforge/internal/errors"
	"hireforge/internal/formatters"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
}

// OutputHandler handles formatting and writing output
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	stdout        io.Writer
	logger        *errors.Logger
}

// NewOutputHandler creates an output handler rendering headings in lang
func NewOutputHandler(logger *errors.Logger, lang string) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger),
		registry:      formatters.NewFormatterRegistry(lang),
		stdout:        os.Stdout,
		logger:        logger,
	}
}

// WithStdout redirects stdout output, for tests and embedding.
func (oh *OutputHandler) WithStdout(w io.Writer) *OutputHandler {
	oh.stdout = w
	return oh
}

// HandleOutput formats data and writes it to the specified output
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	return oh.write([]byte(output), config.OutputFile, config.OutputFormat)
}

// WriteBinary writes raw bytes, such as a WAV file, to the output.
func (oh *OutputHandler) WriteBinary(data []byte, outputFile string) error {
	if err := oh.fileProcessor.ValidateOutputFile(outputFile); err != nil {
		return err
	}
	return oh.write(data, outputFile, "binary")
}

func (oh *OutputHandler) write(data []byte, outputFile, format string) error {
	if outputFile == "" {
		_, err := oh.stdout.Write(data)
		return err
	}

	if err := oh.fileProcessor.WriteFile(outputFile, data); err != nil {
		return err
	}
	oh.logger.Info("Output written successfully",
		"file", outputFile, "format", format, "bytes", len(data))
	return nil
}

// GetSupportedFormats returns all supported output formats
func (oh *OutputHandler) GetSupportedFormats() []string {
	return oh.registry.GetSupportedFormats()
}
