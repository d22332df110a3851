package analysis

import (
	"testing"

	"placementpulse/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestSuggestEverythingMissing(t *testing.T) {
	got := Suggest(SuggestionInput{
		Education:  []types.EducationEntry{types.NewEducationEntry()},
		Experience: []types.ExperienceEntry{types.NewExperienceEntry()},
		Keywords:   map[string]int{},
	})
	assert.Equal(t, []string{
		SuggestMoreSkills,
		SuggestMoreHighlights,
		SuggestMetrics,
		SuggestDegree,
		SuggestKeywords,
		SuggestSummary,
		SuggestProjects,
		SuggestCertifications,
		SuggestContact,
		SuggestFormatting,
		SuggestTailoring,
	}, got)
}

func TestSuggestSample(t *testing.T) {
	got := Suggest(SuggestionInput{
		Skills:     DetectSkills(sampleResume),
		Education:  ExtractEducation(Segment(sampleResume).Education),
		Experience: ExtractExperience(Segment(sampleResume).Experience),
		Keywords:   CountKeywords(sampleResume),
		RawText:    sampleResume,
	})
	assert.Equal(t, []string{SuggestKeywords, SuggestCertifications, SuggestFormatting, SuggestTailoring}, got)
}

func TestSuggestContactPatterns(t *testing.T) {
	base := SuggestionInput{Keywords: map[string]int{}}
	for _, raw := range []string{"reach me at a.b@mail.co", "Phone: +91 98765 43210", "(555) 123-4567"} {
		in := base
		in.RawText = raw
		assert.NotContains(t, Suggest(in), SuggestContact, raw)
	}
}

func TestSuggestAlwaysEndsWithGeneralAdvice(t *testing.T) {
	for _, raw := range []string{"", sampleResume, collapsedResume} {
		got := Suggest(SuggestionInput{RawText: raw})
		assert.Equal(t, GeneralSuggestions, got[len(got)-2:])
	}
}
