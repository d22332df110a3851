package extract

import (
	"time"

	"placementpulse/internal/errors"
	"placementpulse/internal/types"
)

// Method names how text was obtained from a document.
type Method string

const (
	MethodOCR         Method = "ocr"
	MethodPDF         Method = "pdf"
	MethodPlaceholder Method = "placeholder"
	MethodPlain       Method = "plain"
	MethodNone        Method = "none"
)

// Placeholder texts handed downstream when no real text is available.
const (
	FailurePlaceholder = "Text could not be extracted from this document. " +
		"The analysis is based on limited information; try uploading a PDF or a clearer image."
	WordPlaceholder = "Word document received. Text extraction for Word documents is not supported yet; " +
		"upload a PDF or an image of the resume for a detailed analysis."
)

// Document is an uploaded resume.
type Document struct {
	Name      string
	MediaType string // declared type, may be empty
	Data      []byte
}

// Extraction is the tagged outcome of text extraction: either Ok with text,
// or Err with a reason. Failed extractions still carry FailurePlaceholder as
// Text so later stages always receive a non-empty string.
type Extraction struct {
	Text        string
	MediaType   string
	Method      Method
	Pages       int
	Placeholder bool
	Duration    time.Duration

	reason string
	cause  error
}

func succeeded(mediaType string, method Method, text string) Extraction {
	return Extraction{Text: text, MediaType: mediaType, Method: method}
}

func failed(mediaType string, method Method, reason string, cause error) Extraction {
	return Extraction{
		Text:      FailurePlaceholder,
		MediaType: mediaType,
		Method:    method,
		reason:    reason,
		cause:     cause,
	}
}

// OK reports whether extraction produced real (or intentionally placeholder) text.
func (e Extraction) OK() bool { return e.reason == "" }

// Reason describes why extraction failed; empty when OK.
func (e Extraction) Reason() string { return e.reason }

// Err returns the failure as an extraction error wrapping its cause, or nil
// when OK.
func (e Extraction) Err() error {
	if e.OK() {
		return nil
	}
	return errors.NewExtractionError(errors.ErrCodeExtractionFailed, e.reason, e.cause).
		WithContext("method", string(e.Method))
}

// Info converts the extraction into its reportable form.
func (e Extraction) Info() *types.ExtractionInfo {
	return &types.ExtractionInfo{
		MediaType:   e.MediaType,
		Method:      string(e.Method),
		OK:          e.OK(),
		Placeholder: e.Placeholder,
		Reason:      e.reason,
		Pages:       e.Pages,
	}
}
