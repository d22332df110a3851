package analysis

import (
	"strings"
	"testing"
	"time"

	"placementpulse/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestScoreEmptyInput(t *testing.T) {
	score, b := Score(ScoreInput{}, fixedNow)
	assert.Equal(t, 0, score)
	assert.Equal(t, types.ScoreBreakdown{}, b)
}

func TestScoreComponentCaps(t *testing.T) {
	var in ScoreInput
	for range 30 {
		in.Skills = append(in.Skills, types.SkillEntry{Skill: "x", Level: types.LevelExpert, Relevance: 100})
	}
	in.Education = []types.EducationEntry{{
		Degree:      "Ph.D Computer Science",
		Institution: "IISc Bangalore",
		Year:        "2018 - 2023",
		Score:       "9.1 CGPA",
	}}
	for range 5 {
		in.Experience = append(in.Experience, types.ExperienceEntry{
			Role:     "Senior Engineer",
			Company:  "Acme",
			Duration: "2015 - 2020",
			Highlights: []string{
				"Improved throughput by 10%", "Reduced costs", "Led migrations", "Saved 2 hours daily", "Launched search",
			},
		})
	}
	in.Keywords = map[string]int{"team": 40}
	in.RawText = strings.Repeat("certification ", 5)

	score, b := Score(in, fixedNow)
	assert.Equal(t, 25.0, b.Skills)
	assert.Equal(t, 17.0, b.Education)
	assert.Equal(t, 25.0, b.Experience)
	assert.Equal(t, 10.0, b.Keywords)
	assert.Equal(t, 20.0, b.Extra)
	assert.Equal(t, 5, b.Certifications)
	assert.Equal(t, 97, score)
	assert.LessOrEqual(t, score, 100)
}

func TestScoreIsDeterministic(t *testing.T) {
	in := ScoreInput{
		Skills:     DetectSkills(sampleResume),
		Education:  ExtractEducation(Segment(sampleResume).Education),
		Experience: ExtractExperience(Segment(sampleResume).Experience),
		Keywords:   CountKeywords(sampleResume),
		RawText:    sampleResume,
	}
	first, b1 := Score(in, fixedNow)
	second, b2 := Score(in, fixedNow)
	assert.Equal(t, first, second)
	assert.Equal(t, b1, b2)
	assert.GreaterOrEqual(t, first, 0)
	assert.LessOrEqual(t, first, 100)
}

func TestScoreZeroSkillsStillScores(t *testing.T) {
	in := ScoreInput{
		Education:  []types.EducationEntry{{Degree: "B.Sc Physics", Institution: types.InstitutionNotDetected, Year: "2019", Score: types.ScoreNotDetected}},
		Experience: []types.ExperienceEntry{types.NewExperienceEntry()},
		Keywords:   map[string]int{},
	}
	score, b := Score(in, fixedNow)
	assert.Equal(t, 0.0, b.Skills)
	assert.Equal(t, 10.0, b.Education)
	assert.Equal(t, 10, score)
}

func TestScoreOpenEndedDuration(t *testing.T) {
	entry := types.NewExperienceEntry()
	entry.Duration = "2021 - present"

	tests := []struct {
		year int
		want float64
	}{
		{2021, 2},
		{2023, 4},
		{2026, 7},
		{2030, 7},
	}
	for _, tt := range tests {
		now := time.Date(tt.year, time.June, 1, 0, 0, 0, 0, time.UTC)
		_, b := Score(ScoreInput{Experience: []types.ExperienceEntry{entry}}, now)
		assert.Equal(t, tt.want, b.Experience, "year %d", tt.year)
	}
}

func TestYearSpan(t *testing.T) {
	tests := []struct {
		duration string
		want     int
	}{
		{"2021 - present", 5},
		{"2024 - Current", 2},
		{"May 2023 - July 2023", 0},
		{"2018 - 2020", 2},
		{"2019", 0},
		{types.DurationNotDetected, 0},
		{"2022 - 2019", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, YearSpan(tt.duration, fixedNow), tt.duration)
	}
}

func TestDegreeTier(t *testing.T) {
	tests := []struct {
		degree string
		want   float64
	}{
		{"Ph.D in Physics", 5},
		{"M.Tech Data Science", 4},
		{"M.E. Civil", 4},
		{"MBA", 4},
		{"Master's in Design", 4},
		{"B.Tech Computer Science", 3},
		{"B.E. Mechanical", 3},
		{"Bachelor of Arts", 3},
		{"Diploma in Electronics", 2},
		{"Higher Secondary", 1},
		{"12th", 1},
		{"Certificate course", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DegreeTier(tt.degree), tt.degree)
	}
}

func TestIsQuantifiable(t *testing.T) {
	tests := []struct {
		highlight string
		want      bool
	}{
		{"Cut load time by 40%", true},
		{"Served 3 teams", true},
		{"Optimized queries", true},
		{"Led the design review", true},
		{"Built dashboards", false},
		{"Misled nobody", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsQuantifiable(tt.highlight), tt.highlight)
	}
}

func BenchmarkScore(b *testing.B) {
	in := ScoreInput{
		Skills:     DetectSkills(sampleResume),
		Education:  ExtractEducation(Segment(sampleResume).Education),
		Experience: ExtractExperience(Segment(sampleResume).Experience),
		Keywords:   CountKeywords(sampleResume),
		RawText:    sampleResume,
	}
	for b.Loop() {
		Score(in, fixedNow)
	}
}
