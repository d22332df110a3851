package formatters

import (
	"encoding/json"
	"fmt"
	"slices"

	"placementpulse/internal/types"
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

const anyType = "any"

// Formatter renders one kind of result
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// Registry maps (format, data type) pairs to formatters
type Registry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewRegistry creates a registry with the built-in formatters.
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[string]map[string]Formatter)}

	r.Register(FormatJSON, &JSONFormatter{})
	r.Register(FormatText, &AnalysisTextFormatter{})
	r.Register(FormatMarkdown, &AnalysisMarkdownFormatter{})
	r.Register(FormatText, &PredictionTextFormatter{})
	r.Register(FormatMarkdown, &PredictionMarkdownFormatter{})
	r.Register(FormatText, &StatusTextFormatter{})
	r.Register(FormatMarkdown, &StatusMarkdownFormatter{})

	return r
}

// Register adds f for format under the data type it supports.
func (r *Registry) Register(format string, f Formatter) {
	if r.formatters[format] == nil {
		r.formatters[format] = make(map[string]Formatter)
	}
	r.formatters[format][f.SupportedType()] = f
}

// Format renders data in the given format, falling back to the format's
// generic formatter when none is registered for the data type.
func (r *Registry) Format(data any, format string) (string, error) {
	dataType := dataTypeOf(data)
	if byType, ok := r.formatters[format]; ok {
		if f, ok := byType[dataType]; ok {
			return f.Format(data)
		}
		if f, ok := byType[anyType]; ok {
			return f.Format(data)
		}
	}
	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.formatters))
	for format := range r.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func dataTypeOf(data any) string {
	switch data.(type) {
	case types.AnalysisResult, *types.AnalysisResult:
		return "AnalysisResult"
	case types.PackagePrediction, *types.PackagePrediction:
		return "PackagePrediction"
	case types.ModelStatus, *types.ModelStatus:
		return "ModelStatus"
	default:
		return anyType
	}
}

// deref lets formatters accept both values and pointers.
func deref[T any](data any) (T, error) {
	switch v := data.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("expected %T, got %T", zero, data)
}

// JSONFormatter renders any value as indented JSON
type JSONFormatter struct{}

func (*JSONFormatter) Format(data any) (string, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (*JSONFormatter) SupportedType() string { return anyType }
