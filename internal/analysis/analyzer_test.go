package analysis

import (
	"context"
	"testing"

	"placementpulse/internal/extract"
	"placementpulse/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type stubExtractor struct {
	ex     extract.Extraction
	cancel context.CancelFunc
}

func (s *stubExtractor) Extract(_ context.Context, _ extract.Document) extract.Extraction {
	if s.cancel != nil {
		s.cancel()
	}
	return s.ex
}

func TestAnalyzeTextSample(t *testing.T) {
	a := New(nil, WithClock(fixedClock))
	result, err := a.AnalyzeText(context.Background(), sampleResume)
	require.NoError(t, err)

	assert.Equal(t, types.SourceAnalysis, result.Source)
	assert.False(t, result.IsFallback())
	assert.Empty(t, result.FallbackReason)

	require.GreaterOrEqual(t, len(result.TopSkills), 3)
	assert.Equal(t, "Java", result.TopSkills[0].Skill)
	assert.Equal(t, types.LevelExpert, result.TopSkills[0].Level)

	assert.Len(t, result.Education, 2)
	assert.Len(t, result.Experience, 2)
	assert.Equal(t, map[string]int{"team": 2, "development": 1, "project": 1}, result.KeywordMatches)

	require.NotNil(t, result.Breakdown)
	assert.Equal(t, 15.0, result.Breakdown.Education)
	assert.Equal(t, 25.0, result.Breakdown.Experience)
	assert.Equal(t, 2.0, result.Breakdown.Keywords)
	assert.Equal(t, 2.0, result.Breakdown.Extra)
	assert.Equal(t, 1, result.Breakdown.Projects)
	assert.GreaterOrEqual(t, result.OverallScore, 0)
	assert.LessOrEqual(t, result.OverallScore, 100)

	assert.Equal(t, []string{SuggestKeywords, SuggestCertifications, SuggestFormatting, SuggestTailoring}, result.Suggestions)
	assert.Contains(t, result.SuggestedJobTitles, "Java Developer")
	assert.LessOrEqual(t, len(result.SuggestedJobTitles), 5)
	assert.Equal(t, DefaultLocations, result.PreferredLocations)
	assert.Equal(t, sampleResume, result.RawText)
}

func TestAnalyzeTextEmptyUsesFallback(t *testing.T) {
	a := New(nil)
	result, err := a.AnalyzeText(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Fallback("empty extraction", DefaultLocations), result)
	assert.True(t, result.IsFallback())
	assert.Equal(t, 78, result.OverallScore)

	result, err = a.AnalyzeText(context.Background(), " \n\t ")
	require.NoError(t, err)
	assert.True(t, result.IsFallback())
	assert.Equal(t, "empty extraction", result.FallbackReason)
}

func TestAnalyzeTextZeroSkills(t *testing.T) {
	a := New(nil, WithClock(fixedClock))
	result, err := a.AnalyzeText(context.Background(), "EDUCATION\nB.Tech Mechanical, ABC College, 2019\n")
	require.NoError(t, err)

	assert.NotNil(t, result.TopSkills)
	assert.Empty(t, result.TopSkills)
	assert.Equal(t, 0.0, result.Breakdown.Skills)
	assert.Equal(t, 13, result.OverallScore)
	assert.Equal(t, []types.ExperienceEntry{types.NewExperienceEntry()}, result.Experience)
	assert.Equal(t, SuggestMoreSkills, result.Suggestions[0])
}

func TestAnalyzeTextNeverEmptySequences(t *testing.T) {
	a := New(nil, WithClock(fixedClock))
	for _, text := range []string{"x", "Software", "B.Tech", "Intern at", collapsedResume, sampleResume} {
		result, err := a.AnalyzeText(context.Background(), text)
		require.NoError(t, err)
		assert.NotEmpty(t, result.Education, text)
		assert.NotEmpty(t, result.Experience, text)
		assert.GreaterOrEqual(t, result.OverallScore, 0)
		assert.LessOrEqual(t, result.OverallScore, 100)
	}
}

func TestAnalyzeTextOptions(t *testing.T) {
	a := New(nil, WithTopSkills(2), WithRawTextLimit(10), WithLocations([]string{"Remote"}))
	result, err := a.AnalyzeText(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.Len(t, result.TopSkills, 2)
	assert.Equal(t, "Jane Doe\nj", result.RawText)
	assert.Equal(t, []string{"Remote"}, result.PreferredLocations)
}

func TestAnalyzeTextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).AnalyzeText(ctx, sampleResume)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeAttachesExtraction(t *testing.T) {
	stub := &stubExtractor{ex: extract.Extraction{Text: sampleResume, MediaType: extract.MediaTypeText, Method: extract.MethodPlain}}
	result, err := New(stub, WithClock(fixedClock)).Analyze(context.Background(), extract.Document{Name: "cv.txt"})
	require.NoError(t, err)

	require.NotNil(t, result.Extraction)
	assert.Equal(t, "plain", result.Extraction.Method)
	assert.True(t, result.Extraction.OK)
	assert.Equal(t, types.SourceAnalysis, result.Source)
}

func TestAnalyzeCancelledDuringExtraction(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stub := &stubExtractor{ex: extract.Extraction{Text: sampleResume}, cancel: cancel}
	_, err := New(stub).Analyze(ctx, extract.Document{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeWithoutExtractor(t *testing.T) {
	_, err := New(nil).Analyze(context.Background(), extract.Document{})
	assert.Error(t, err)
}

func TestGoSafeRecoversPanics(t *testing.T) {
	g, ctx := errgroup.WithContext(context.Background())
	goSafe(ctx, g, "skills", func() { panic("index out of range") })
	err := g.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skills extraction panicked")

	g, ctx = errgroup.WithContext(context.Background())
	goSafe(ctx, g, "education", func() {})
	assert.NoError(t, g.Wait())
}

func TestCountKeywords(t *testing.T) {
	got := CountKeywords("Agile team; teams of DESIGNERS; backend-heavy projects. Project X")
	assert.Equal(t, map[string]int{"agile": 1, "team": 2, "design": 1, "backend": 1, "project": 2}, got)
	assert.Empty(t, CountKeywords("nothing relevant"))
}

func TestFallbackIsFresh(t *testing.T) {
	a := Fallback("x", DefaultLocations)
	a.TopSkills[0].Skill = "mutated"
	a.KeywordMatches["team"] = 99
	b := Fallback("x", DefaultLocations)
	assert.Equal(t, "Java", b.TopSkills[0].Skill)
	assert.Equal(t, 4, b.KeywordMatches["team"])
	assert.Len(t, b.Experience, 2)
}
