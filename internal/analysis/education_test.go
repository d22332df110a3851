package analysis

import (
	"testing"

	"placementpulse/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEducationDegreeAndYear(t *testing.T) {
	text := "B.Tech Computer Science, XYZ University, 2020"
	entries := ExtractEducation(Segment(text).Education)

	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Degree, "B.Tech")
	assert.Equal(t, "2020", entries[0].Year)
	assert.Equal(t, "XYZ University", entries[0].Institution)
	assert.Equal(t, types.ScoreNotDetected, entries[0].Score)
}

func TestExtractEducationSample(t *testing.T) {
	entries := ExtractEducation(Segment(sampleResume).Education)

	assert.Equal(t, []types.EducationEntry{
		{
			Degree:      "B.Tech Computer Science",
			Institution: "XYZ University",
			Year:        "2020 - 2024",
			Score:       "8.7 CGPA",
		},
		{
			Degree:      "Higher Secondary",
			Institution: "Delhi Public School",
			Year:        "2020",
			Score:       "92%",
		},
	}, entries)
}

func TestExtractEducationFields(t *testing.T) {
	tests := []struct {
		name string
		line string
		want types.EducationEntry
	}{
		{
			name: "percentage keyword",
			line: "MBA, Symbiosis Institute of Business Management, 2018, Percentage: 78",
			want: types.EducationEntry{
				Degree:      "MBA",
				Institution: "Symbiosis Institute of Business Management",
				Year:        "2018",
				Score:       "78%",
			},
		},
		{
			name: "number before unit",
			line: "10th, Kendriya Vidyalaya, 2016, 9.4 CGPA",
			want: types.EducationEntry{
				Degree:      "10th",
				Institution: "Kendriya Vidyalaya",
				Year:        "2016",
				Score:       "9.4 CGPA",
			},
		},
		{
			name: "collapsed section",
			line: "B.Tech ECE, NIT Trichy, 2021",
			want: types.EducationEntry{
				Degree:      "B.Tech ECE",
				Institution: "NIT Trichy",
				Year:        "2021",
				Score:       types.ScoreNotDetected,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := ExtractEducation([]string{tt.line})
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, entries[0])
		})
	}
}

func TestExtractEducationSentinel(t *testing.T) {
	for _, sections := range [][]string{nil, {"Relevant coursework: compilers"}} {
		entries := ExtractEducation(sections)
		require.Len(t, entries, 1)
		assert.Equal(t, types.NewEducationEntry(), entries[0])
	}
}

func TestDegreeSpansRespectWordBoundaries(t *testing.T) {
	assert.Empty(t, degreeSpans("Because mastery of BCAB is rare"))
	assert.Len(t, degreeSpans("B.E. Mechanical and Master's in Design"), 2)
}
