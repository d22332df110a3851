package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
)

// pageParser is satisfied by the eino PDF parser.
type pageParser interface {
	Parse(ctx context.Context, reader io.Reader, opts ...einoParser.Option) ([]*schema.Document, error)
}

// NewPDFParser creates an eino PDF parser that yields one document per page.
func NewPDFParser(ctx context.Context) (*pdf.PDFParser, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF parser: %w", err)
	}
	return p, nil
}

// pageSeparator puts each page on its own line, so a heading that opens a
// page still reads as a line start.
const pageSeparator = "\n"

// pdfText decodes a PDF page by page. Within a page, whitespace runs collapse
// to a single space; pages are joined by newlines in document order.
func pdfText(ctx context.Context, p pageParser, name string, data []byte) (string, int, error) {
	docs, err := p.Parse(ctx, bytes.NewReader(data),
		einoParser.WithURI(name),
		einoParser.WithExtraMeta(map[string]any{"source": name}),
	)
	if err != nil {
		return "", 0, fmt.Errorf("pdf parse failed for %s: %w", name, err)
	}

	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if page := strings.Join(strings.Fields(doc.Content), " "); page != "" {
			pages = append(pages, page)
		}
	}
	return strings.Join(pages, pageSeparator), len(docs), nil
}
