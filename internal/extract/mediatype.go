package extract

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"placementpulse/internal/errors"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDoc  = "application/msword"
	MediaTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeText = "text/plain"
)

// AllowedMediaTypes lists the document types accepted for analysis.
var AllowedMediaTypes = []string{
	MediaTypePDF,
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	MediaTypeDoc,
	MediaTypeDocx,
	MediaTypeText,
}

var extensionMediaTypes = map[string]string{
	".pdf":      MediaTypePDF,
	".doc":      MediaTypeDoc,
	".docx":     MediaTypeDocx,
	".txt":      MediaTypeText,
	".text":     MediaTypeText,
	".md":       MediaTypeText,
	".markdown": MediaTypeText,
	".png":      "image/png",
	".jpg":      "image/jpeg",
	".jpeg":     "image/jpeg",
	".gif":      "image/gif",
	".webp":     "image/webp",
}

// MediaTypeFromFilename maps a resume file name to its media type by
// extension. Unknown extensions return "" so the content gets sniffed.
func MediaTypeFromFilename(name string) string {
	return extensionMediaTypes[strings.ToLower(filepath.Ext(name))]
}

// NormalizeMediaType lowercases a media type and strips its parameters.
func NormalizeMediaType(mediaType string) string {
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// ResolveMediaType returns the declared media type when it is meaningful,
// otherwise the type sniffed from the content.
func ResolveMediaType(declared string, data []byte) string {
	declared = NormalizeMediaType(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return NormalizeMediaType(mimetype.Detect(data).String())
}

// IsAllowedMediaType reports whether the media type may be analyzed.
func IsAllowedMediaType(mediaType string) bool {
	return slices.Contains(AllowedMediaTypes, NormalizeMediaType(mediaType))
}

// ValidateUpload checks an upload's type and size before the pipeline runs.
func ValidateUpload(mediaType string, size, maxSize int64) error {
	if size <= 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "resume file is empty", nil)
	}
	if size > maxSize {
		return errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("resume file is %d bytes, the limit is %d bytes", size, maxSize), nil).
			WithContext("size", size).
			WithContext("max_size", maxSize)
	}
	if !IsAllowedMediaType(mediaType) {
		return errors.NewValidationError(errors.ErrCodeUnsupportedMediaType,
			fmt.Sprintf("unsupported file type %q; upload a PDF, Word document, or image", mediaType), nil).
			WithContext("media_type", mediaType)
	}
	return nil
}
