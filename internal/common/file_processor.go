package common

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"hireforge/internal/errors"
	"hireforge/internal/types"
	"hireforge/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadBytes reads a whole file. A positive limit rejects larger files.
func (fp *FileProcessor) ReadBytes(filename string, limit int64) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	var r io.Reader = file
	if limit > 0 {
		r = io.LimitReader(file, limit+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}
	if limit > 0 && int64(len(content)) > limit {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("File %s exceeds the %s limit", filename, utils.FormatFileSize(limit)), nil)
	}
	return content, nil
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	content, err := fp.ReadBytes(filename, 0)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// ReadNotes reads a recruiter notes file. "-" reads stdin.
func (fp *FileProcessor) ReadNotes(filename string, stdin io.Reader) (string, error) {
	if filename == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeFileNotReadable, "Failed to read notes from stdin", err)
		}
		return string(content), nil
	}

	contents, err := fp.ValidateAndReadFiles(filename)
	if err != nil {
		return "", err
	}
	return contents[0], nil
}

// ReadImage loads an image attachment. The MIME type comes from the
// extension, or from the content when the extension is unknown.
func (fp *FileProcessor) ReadImage(filename string, limit int64) (*types.ImageAttachment, error) {
	if err := utils.ValidateInputFile(filename); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeUnsupportedImage,
			fmt.Sprintf("Invalid image file %s", filename), err)
	}

	data, err := fp.ReadBytes(filename, limit)
	if err != nil {
		return nil, err
	}

	mimeType := utils.ImageMIMEType(filename)
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, errors.NewValidationError(errors.ErrCodeUnsupportedImage,
			fmt.Sprintf("Not an image: %s (%s)", filename, mimeType), nil)
	}

	fp.logger.Debug("Loaded image attachment",
		"filename", filename,
		"mime_type", mimeType,
		"size", utils.FormatFileSize(int64(len(data))))
	return &types.ImageAttachment{MIMEType: mimeType, Data: data}, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename string, content []byte) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, content, 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateAndReadFiles validates and reads multiple input files
func (fp *FileProcessor) ValidateAndReadFiles(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))

	for i, filename := range filenames {
		if err := utils.ValidateInputFile(filename); err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err)
		}

		if !utils.IsTextFile(filename) {
			fp.logger.Warn("File may not be a text file", "filename", filename)
		}

		content, err := fp.ReadFile(filename)
		if err != nil {
			return nil, err
		}

		contents[i] = content
	}

	return contents, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
