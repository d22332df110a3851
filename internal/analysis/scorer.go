package analysis

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"placementpulse/internal/types"
)

// Component caps; they add up to 100.
const (
	maxSkillsPoints     = 25
	maxEducationPoints  = 20
	maxExperiencePoints = 25
	maxKeywordPoints    = 10
	maxExtraPoints      = 20
)

var (
	levelWeights = map[types.SkillLevel]float64{
		types.LevelExpert:       1.5,
		types.LevelAdvanced:     1,
		types.LevelIntermediate: 0.75,
		types.LevelBeginner:     0.5,
	}

	spanYearPattern = regexp.MustCompile(`(?:19|20)\d{2}`)
	openEndPattern  = regexp.MustCompile(`(?i)\b(?:present|current|now|ongoing|till date)\b`)
)

// ScoreInput is the structured intermediate the scorer rates.
type ScoreInput struct {
	Skills     []types.SkillEntry
	Education  []types.EducationEntry
	Experience []types.ExperienceEntry
	Keywords   map[string]int
	RawText    string
}

// Score rates a resume from 0 to 100. It is a pure function of its inputs;
// now resolves open-ended durations such as "2021 - present".
func Score(in ScoreInput, now time.Time) (int, types.ScoreBreakdown) {
	var b types.ScoreBreakdown

	for _, s := range in.Skills {
		b.Skills += levelWeights[s.Level]
	}
	b.Skills = math.Min(b.Skills, maxSkillsPoints)

	for _, e := range in.Education {
		b.Education = math.Max(b.Education, educationPoints(e))
	}
	b.Education = math.Min(b.Education, maxEducationPoints)

	for _, e := range in.Experience {
		b.Experience += experiencePoints(e, now)
	}
	b.Experience = math.Min(b.Experience, maxExperiencePoints)

	hits := 0
	for _, n := range in.Keywords {
		hits += n
	}
	b.Keywords = math.Min(0.5*float64(hits), maxKeywordPoints)

	lower := strings.ToLower(in.RawText)
	b.Certifications = strings.Count(lower, "certif")
	b.Projects = strings.Count(lower, "project")
	b.Extra = math.Min(float64(5*b.Certifications+2*b.Projects), maxExtraPoints)

	total := math.Round(b.Skills + b.Education + b.Experience + b.Keywords + b.Extra)
	return int(math.Max(0, math.Min(100, total))), b
}

func educationPoints(e types.EducationEntry) float64 {
	var p float64
	if e.HasDegree() {
		p += 5 + DegreeTier(e.Degree)
	}
	if e.HasInstitution() {
		p += 3
	}
	if e.HasYear() {
		p += 2
	}
	if e.HasScore() {
		p += 2
	}
	return p
}

// DegreeTier returns the bonus for the level of a degree: 5 for a
// doctorate down to 1 for school certificates.
func DegreeTier(degree string) float64 {
	d := strings.ToLower(strings.NewReplacer(".", "", " ", "", "'", "").Replace(degree))
	hasPrefix := func(prefixes ...string) bool {
		return slices.ContainsFunc(prefixes, func(p string) bool { return strings.HasPrefix(d, p) })
	}
	switch {
	case hasPrefix("phd", "doctor"):
		return 5
	case hasPrefix("mtech", "msc", "mca", "mba", "master", "me"):
		return 4
	case hasPrefix("btech", "bsc", "bca", "bba", "bcom", "bachelor", "be"):
		return 3
	case hasPrefix("diploma"):
		return 2
	case hasPrefix("highersecondary", "seniorsecondary", "secondaryschool", "12th", "10th", "hsc", "ssc"):
		return 1
	default:
		return 0
	}
}

func experiencePoints(e types.ExperienceEntry, now time.Time) float64 {
	var p float64
	if e.HasRole() {
		p += 4
		if isSenior(e.Role) {
			p += 3
		}
	}
	if e.HasCompany() {
		p += 3
	}
	if e.HasDuration() {
		p += 2 + math.Min(5, float64(YearSpan(e.Duration, now)))
	}
	highlights := e.RealHighlights()
	quantified := 0
	for _, h := range highlights {
		if IsQuantifiable(h) {
			quantified++
		}
	}
	p += math.Min(5, float64(len(highlights))) + math.Min(3, float64(quantified))
	return p
}

func isSenior(role string) bool {
	words := strings.Fields(strings.ToLower(role))
	return slices.ContainsFunc(words, func(w string) bool { return slices.Contains(seniorityWords, w) })
}

// YearSpan returns the number of years a duration covers. An open end
// ("present", "current") counts as the year of now.
func YearSpan(duration string, now time.Time) int {
	years := spanYearPattern.FindAllString(duration, -1)
	if len(years) == 0 {
		return 0
	}
	start, _ := strconv.Atoi(years[0])
	end := start
	if openEndPattern.MatchString(duration) {
		end = now.Year()
	} else if len(years) > 1 {
		end, _ = strconv.Atoi(years[len(years)-1])
	}
	return max(0, end-start)
}

// IsQuantifiable reports whether a highlight states a measurable result.
func IsQuantifiable(highlight string) bool {
	if strings.ContainsAny(highlight, "0123456789%") {
		return true
	}
	for _, w := range strings.FieldsFunc(strings.ToLower(highlight), func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}) {
		if slices.Contains(achievementVerbs, w) {
			return true
		}
	}
	return false
}
