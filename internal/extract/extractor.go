package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"placementpulse/internal/ai"
	"placementpulse/internal/errors"
)

// Extractor obtains plain text from resume documents. It never returns an
// error; failures are reported through the Extraction tag.
type Extractor struct {
	ocr    ai.Transcriber
	pdf    pageParser
	logger *errors.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithTranscriber enables OCR for image documents.
func WithTranscriber(t ai.Transcriber) Option {
	return func(e *Extractor) { e.ocr = t }
}

// WithLogger sets the logger.
func WithLogger(l *errors.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

func withPageParser(p pageParser) Option {
	return func(e *Extractor) { e.pdf = p }
}

// New creates an Extractor backed by the eino PDF parser.
func New(ctx context.Context, opts ...Option) (*Extractor, error) {
	e := &Extractor{logger: errors.NewNopLogger()}
	for _, opt := range opts {
		opt(e)
	}
	if e.pdf == nil {
		p, err := NewPDFParser(ctx)
		if err != nil {
			return nil, err
		}
		e.pdf = p
	}
	return e, nil
}

// OCREnabled reports whether image documents can be transcribed.
func (e *Extractor) OCREnabled() bool { return e.ocr != nil }

// OCRStats exposes the transcriber's health, or nil without OCR.
func (e *Extractor) OCRStats() map[string]any {
	if e.ocr == nil {
		return nil
	}
	return e.ocr.Stats()
}

// Extract returns the text of doc. The context is checked before and after
// the decode step; a cancelled context yields a failed extraction carrying
// the context error.
func (e *Extractor) Extract(ctx context.Context, doc Document) Extraction {
	mediaType := ResolveMediaType(doc.MediaType, doc.Data)
	if err := ctx.Err(); err != nil {
		return failed(mediaType, MethodNone, "cancelled", err)
	}

	start := time.Now()
	ex := e.extract(ctx, mediaType, doc)
	ex.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		return failed(mediaType, ex.Method, "cancelled", err)
	}

	if ex.OK() {
		e.logger.Debug("Text extracted",
			"name", doc.Name,
			"media_type", mediaType,
			"method", ex.Method,
			"chars", len(ex.Text),
			"duration_ms", ex.Duration.Milliseconds())
	} else {
		e.logger.Warn("Text extraction failed, continuing with placeholder",
			"name", doc.Name,
			"media_type", mediaType,
			"method", ex.Method,
			"error", ex.Err())
	}
	return ex
}

func (e *Extractor) extract(ctx context.Context, mediaType string, doc Document) Extraction {
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return e.extractImage(ctx, mediaType, doc)
	case mediaType == MediaTypePDF:
		return e.extractPDF(ctx, mediaType, doc)
	case mediaType == MediaTypeDoc || mediaType == MediaTypeDocx:
		ex := succeeded(mediaType, MethodPlaceholder, WordPlaceholder)
		ex.Placeholder = true
		return ex
	case mediaType == MediaTypeText:
		return succeeded(mediaType, MethodPlain, strings.ToValidUTF8(string(doc.Data), " "))
	default:
		return failed(mediaType, MethodNone, fmt.Sprintf("unsupported media type %s", mediaType), nil)
	}
}

func (e *Extractor) extractImage(ctx context.Context, mediaType string, doc Document) Extraction {
	if e.ocr == nil {
		return failed(mediaType, MethodOCR, "ocr not configured", nil)
	}
	text, err := e.ocr.Transcribe(ctx, doc.Data, mediaType)
	if err != nil {
		return failed(mediaType, MethodOCR, "ocr failed", err)
	}
	return succeeded(mediaType, MethodOCR, text)
}

func (e *Extractor) extractPDF(ctx context.Context, mediaType string, doc Document) (ex Extraction) {
	// The PDF decoder can panic on malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			ex = failed(mediaType, MethodPDF, "pdf decode panicked", fmt.Errorf("panic: %v", r))
		}
	}()

	name := doc.Name
	if name == "" {
		name = "resume.pdf"
	}
	text, pages, err := pdfText(ctx, e.pdf, name, doc.Data)
	if err != nil {
		return failed(mediaType, MethodPDF, "pdf decode failed", err)
	}
	ex = succeeded(mediaType, MethodPDF, text)
	ex.Pages = pages
	return ex
}
