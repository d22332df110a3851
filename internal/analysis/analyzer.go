package analysis

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"placementpulse/internal/errors"
	"placementpulse/internal/extract"
	"placementpulse/internal/types"
	"placementpulse/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTopSkills    = 10
	DefaultRawTextLimit = 2000

	reasonEmptyExtraction = "empty extraction"
)

// DefaultLocations is the static preferred-locations list.
var DefaultLocations = []string{"Bengaluru", "Hyderabad", "Pune", "Mumbai", "Delhi", "Chennai"}

// TextExtractor turns a document into text.
type TextExtractor interface {
	Extract(ctx context.Context, doc extract.Document) extract.Extraction
}

// Analyzer runs the resume analysis pipeline. It holds no per-call state and
// is safe for concurrent use.
type Analyzer struct {
	extractor    TextExtractor
	logger       *errors.Logger
	now          func() time.Time
	topSkills    int
	rawTextLimit int
	locations    []string
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithLogger sets the logger
func WithLogger(l *errors.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithClock sets the clock used to resolve open-ended durations.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// WithTopSkills limits how many skills the result lists.
func WithTopSkills(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.topSkills = n
		}
	}
}

// WithRawTextLimit limits the raw text snapshot, in characters.
func WithRawTextLimit(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.rawTextLimit = n
		}
	}
}

// WithLocations sets the preferred locations reported with every result.
func WithLocations(locations []string) Option {
	return func(a *Analyzer) {
		if len(locations) > 0 {
			a.locations = slices.Clone(locations)
		}
	}
}

// New creates an Analyzer. The extractor may be nil when only AnalyzeText
// is used.
func New(extractor TextExtractor, opts ...Option) *Analyzer {
	a := &Analyzer{
		extractor:    extractor,
		logger:       errors.NewNopLogger(),
		now:          time.Now,
		topSkills:    DefaultTopSkills,
		rawTextLimit: DefaultRawTextLimit,
		locations:    DefaultLocations,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze extracts the text of doc and analyzes it. The only error returned
// is the context error when ctx is cancelled; every other failure yields a
// fallback result.
func (a *Analyzer) Analyze(ctx context.Context, doc extract.Document) (types.AnalysisResult, error) {
	if a.extractor == nil {
		return types.AnalysisResult{}, fmt.Errorf("analyzer has no text extractor")
	}
	ctx, span := otel.Tracer("placementpulse/analysis").Start(ctx, "analysis.analyze")
	defer span.End()

	ex := a.extractor.Extract(ctx, doc)
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return types.AnalysisResult{}, err
	}
	span.SetAttributes(
		attribute.String("extraction.method", string(ex.Method)),
		attribute.Bool("extraction.ok", ex.OK()),
	)

	result, err := a.AnalyzeText(ctx, ex.Text)
	if err != nil {
		span.RecordError(err)
		return types.AnalysisResult{}, err
	}
	result.Extraction = ex.Info()
	span.SetAttributes(
		attribute.String("analysis.source", result.Source),
		attribute.Int("analysis.score", result.OverallScore),
	)
	return result, nil
}

// AnalyzeText analyzes already extracted text.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string) (types.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return types.AnalysisResult{}, err
	}
	if strings.TrimSpace(text) == "" {
		a.logger.Warn("Extracted text is empty, using fallback analysis")
		return a.fallback(reasonEmptyExtraction, text), nil
	}

	result, err := a.run(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.AnalysisResult{}, ctxErr
		}
		a.logger.LogError(err, "Analysis failed, using fallback analysis")
		reason := err.Error()
		if appErr, ok := errors.As(err); ok {
			reason = appErr.Message
		}
		return a.fallback(reason, text), nil
	}
	return result, nil
}

func (a *Analyzer) fallback(reason, text string) types.AnalysisResult {
	r := Fallback(reason, a.locations)
	r.RawText = utils.TruncateRunes(text, a.rawTextLimit)
	return r
}

// run executes the pipeline. Panics anywhere inside are turned into errors.
func (a *Analyzer) run(ctx context.Context, text string) (result types.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewInternalError(errors.ErrCodeAnalysisFailed, fmt.Sprintf("analysis panicked: %v", r), nil)
		}
	}()

	sections := Segment(text)

	var (
		education  []types.EducationEntry
		experience []types.ExperienceEntry
		skills     []types.SkillEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	goSafe(gctx, g, "education", func() { education = ExtractEducation(sections.Education) })
	goSafe(gctx, g, "experience", func() { experience = ExtractExperience(sections.Experience) })
	goSafe(gctx, g, "skills", func() { skills = DetectSkills(text) })
	if err := g.Wait(); err != nil {
		return types.AnalysisResult{}, err
	}

	keywords := CountKeywords(text)
	score, breakdown := Score(ScoreInput{
		Skills:     skills,
		Education:  education,
		Experience: experience,
		Keywords:   keywords,
		RawText:    text,
	}, a.now())
	suggestions := Suggest(SuggestionInput{
		Skills:     skills,
		Education:  education,
		Experience: experience,
		Keywords:   keywords,
		RawText:    text,
	})

	a.logger.Debug("Resume analyzed",
		"skills", len(skills),
		"education_entries", len(education),
		"experience_entries", len(experience),
		"education_implicit", sections.EducationImplicit,
		"experience_implicit", sections.ExperienceImplicit,
		"score", score)

	return types.AnalysisResult{
		TopSkills:          append([]types.SkillEntry{}, skills[:min(a.topSkills, len(skills))]...),
		KeywordMatches:     keywords,
		Education:          education,
		Experience:         experience,
		OverallScore:       score,
		SuggestedJobTitles: DeriveJobTitles(skills, experience),
		PreferredLocations: slices.Clone(a.locations),
		Suggestions:        suggestions,
		RawText:            utils.TruncateRunes(text, a.rawTextLimit),
		Source:             types.SourceAnalysis,
		Breakdown:          &breakdown,
	}, nil
}

// goSafe runs fn in the group, converting a panic into the group error.
func goSafe(ctx context.Context, g *errgroup.Group, stage string, fn func()) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.NewInternalError(errors.ErrCodeAnalysisFailed, fmt.Sprintf("%s extraction panicked: %v", stage, r), nil)
			}
		}()
		fn()
		return ctx.Err()
	})
}

// CountKeywords counts the generic keywords in text, case-insensitively.
// Only keywords that occur are reported.
func CountKeywords(text string) map[string]int {
	lower := asciiLower(text)
	out := make(map[string]int)
	for _, k := range Keywords {
		if n := countWordPrefix(lower, k); n > 0 {
			out[k] = n
		}
	}
	return out
}
