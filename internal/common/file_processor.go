package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"placementpulse/internal/errors"
	"placementpulse/internal/extract"
	"placementpulse/internal/utils"
)

// FileProcessor handles reading resumes and writing command output
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &FileProcessor{logger: logger}
}

// ReadDocument reads a resume file, enforcing maxSize and the media type
// allowlist.
func (fp *FileProcessor) ReadDocument(filename string, maxSize int64) (extract.Document, error) {
	if err := utils.ValidateInputFile(filename); err != nil {
		if _, statErr := os.Stat(filename); os.IsNotExist(statErr) {
			return extract.Document{}, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return extract.Document{}, errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	file, err := os.Open(filename)
	if err != nil {
		return extract.Document{}, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	// Read one byte past the limit so oversize files are detected without
	// loading them whole.
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return extract.Document{}, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	doc := extract.Document{
		Name:      filepath.Base(filename),
		MediaType: extract.MediaTypeFromFilename(filename),
		Data:      data,
	}
	doc.MediaType = extract.ResolveMediaType(doc.MediaType, data)
	if err := extract.ValidateUpload(doc.MediaType, int64(len(data)), maxSize); err != nil {
		return extract.Document{}, err
	}

	fp.logger.Debug("Resume loaded",
		"filename", filename,
		"media_type", doc.MediaType,
		"size", utils.FormatFileSize(int64(len(data))))
	return doc, nil
}

// WriteFile writes content to a file, creating its directory
func (fp *FileProcessor) WriteFile(filename, content string) error {
	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewIOError("DIRECTORY_CREATE_FAILED",
			fmt.Sprintf("Cannot create directory for %s", filename), err)
	}
	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}
