package analysis

import (
	"testing"

	"placementpulse/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractExperienceSample(t *testing.T) {
	entries := ExtractExperience(Segment(sampleResume).Experience)

	assert.Equal(t, []types.ExperienceEntry{
		{
			Role:     "Software Engineer Intern",
			Company:  "Microsoft",
			Duration: "May 2023 - July 2023",
			Highlights: []string{
				"Reduced API latency by 40% using Redis caching",
				"Built React dashboards for the team",
			},
		},
		{
			Role:     "Web Development Lead",
			Company:  "College Tech Club",
			Duration: "Jan 2022 - Present",
			Highlights: []string{
				"Led a team of 6 developers",
				"Organized hackathons",
			},
		},
	}, entries)
}

func TestExtractExperienceCollapsedText(t *testing.T) {
	entries := ExtractExperience(Segment(collapsedResume).Experience)

	require.Len(t, entries, 2)
	assert.Equal(t, "Software Engineering Intern", entries[0].Role)
	assert.Equal(t, "Tech Solutions Ltd.", entries[0].Company)
	assert.Equal(t, "May 2023 - July 2023", entries[0].Duration)
	assert.Equal(t, []string{"Developed web apps using React", "Implemented responsive UI components"}, entries[0].Highlights)

	assert.Equal(t, "Student Developer", entries[1].Role)
	assert.Equal(t, "College Tech Club", entries[1].Company)
	assert.Equal(t, "Aug 2022 - Present", entries[1].Duration)
	assert.Equal(t, []string{"Leading a team of 5 developers"}, entries[1].Highlights)
}

func TestExtractExperienceTitleCaseHeadings(t *testing.T) {
	entries := ExtractExperience(Segment(titleCaseResume).Experience)

	require.Len(t, entries, 1)
	assert.Equal(t, "Software Engineer Intern", entries[0].Role)
	assert.Equal(t, "Google", entries[0].Company)
	assert.Equal(t, "Jun 2022 - Aug 2022", entries[0].Duration)
	assert.Equal(t, []string{"Built REST APIs for campus services", "Reduced latency by 30%"}, entries[0].Highlights)
}

func TestExtractExperienceStopsAtHeadings(t *testing.T) {
	section := "CGPA: 8.5 Experience Software Engineer Intern at Google • Built REST APIs • Reduced latency by 30% Skills Java, Python"
	entries := ExtractExperience([]string{section})

	require.Len(t, entries, 1)
	assert.Equal(t, "Software Engineer Intern", entries[0].Role)
	assert.Equal(t, []string{"Built REST APIs", "Reduced latency by 30%"}, entries[0].Highlights)
}

func TestExtractExperienceRoleForms(t *testing.T) {
	tests := []struct {
		name     string
		section  string
		role     string
		company  string
		duration string
	}{
		{"bare noun with at", "Intern at Google, Jun 2024 - Aug 2024", "Intern", "Google", "Jun 2024 - Aug 2024"},
		{"separator", "Data Scientist | Fractal Analytics | 2021 - Present", "Data Scientist", "Fractal Analytics", "2021 - Present"},
		{"numbered title", "Software Engineer II @ Flipkart", "Software Engineer II", "Flipkart", types.DurationNotDetected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := ExtractExperience([]string{tt.section})
			require.Len(t, entries, 1)
			assert.Equal(t, tt.role, entries[0].Role)
			assert.Equal(t, tt.company, entries[0].Company)
			assert.Equal(t, tt.duration, entries[0].Duration)
			assert.Equal(t, []string{types.HighlightsNotDetected}, entries[0].Highlights)
		})
	}
}

func TestExtractExperienceNumberedHighlights(t *testing.T) {
	section := "Backend Developer at Razorpay\n1. Optimized payment retries\n2) Wrote integration tests\nplain prose line"
	entries := ExtractExperience([]string{section})
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"Optimized payment retries", "Wrote integration tests"}, entries[0].Highlights)
}

func TestExtractExperienceSentinel(t *testing.T) {
	for _, sections := range [][]string{nil, {"• Lead a team of six engineers"}, {"worked on many things"}} {
		entries := ExtractExperience(sections)
		require.Len(t, entries, 1)
		assert.Equal(t, types.NewExperienceEntry(), entries[0])
	}
}
