package analysis

import (
	"regexp"
	"strings"

	"placementpulse/internal/types"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`(?:\+\d{1,3}[\s-]?)?(?:\d{5}[\s-]?\d{5}|\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4})`)
)

// Suggestion texts, in rule order.
const (
	SuggestMoreSkills     = "Add more relevant technical skills; aim for at least five core skills that match your target roles."
	SuggestMoreHighlights = "Expand your experience with more bullet points describing your responsibilities and achievements."
	SuggestMetrics        = "Quantify your achievements with numbers and metrics, for example \"reduced page load time by 40%\"."
	SuggestDegree         = "Include your degree, institution, graduation year and CGPA or percentage in the education section."
	SuggestKeywords       = "Use more industry keywords such as development, testing, agile and cloud to get past applicant tracking systems."
	SuggestSummary        = "Add a short professional summary or career objective at the top of your resume."
	SuggestProjects       = "Add a projects section showcasing two or three technical projects and the technologies you used."
	SuggestCertifications = "List relevant certifications (AWS, Google Cloud, Coursera and similar) to strengthen your profile."
	SuggestContact        = "Make sure your contact details, an email address and a phone number, are clearly visible."

	SuggestFormatting = "Keep formatting consistent: one font, uniform bullet styles and clear section headings."
	SuggestTailoring  = "Tailor your resume for each application by mirroring the keywords of the job description."
)

// GeneralSuggestions are appended to every analysis.
var GeneralSuggestions = []string{SuggestFormatting, SuggestTailoring}

// SuggestionInput is what the suggestion rules look at.
type SuggestionInput struct {
	Skills     []types.SkillEntry
	Education  []types.EducationEntry
	Experience []types.ExperienceEntry
	Keywords   map[string]int
	RawText    string
}

type suggestionRule struct {
	applies func(in SuggestionInput) bool
	text    string
}

var suggestionRules = []suggestionRule{
	{func(in SuggestionInput) bool { return len(in.Skills) < 5 }, SuggestMoreSkills},
	{func(in SuggestionInput) bool { return countHighlights(in.Experience) < 3 }, SuggestMoreHighlights},
	{func(in SuggestionInput) bool { return !hasQuantifiedHighlight(in.Experience) }, SuggestMetrics},
	{func(in SuggestionInput) bool { return !hasDegree(in.Education) }, SuggestDegree},
	{func(in SuggestionInput) bool { return len(in.Keywords) < 5 }, SuggestKeywords},
	{func(in SuggestionInput) bool {
		return !HasSection(in.RawText, "summary", "objective", "career objective", "professional summary", "profile", "about me")
	}, SuggestSummary},
	{func(in SuggestionInput) bool { return !strings.Contains(strings.ToLower(in.RawText), "project") }, SuggestProjects},
	{func(in SuggestionInput) bool { return !strings.Contains(strings.ToLower(in.RawText), "certif") }, SuggestCertifications},
	{func(in SuggestionInput) bool {
		return !emailPattern.MatchString(in.RawText) && !phonePattern.MatchString(in.RawText)
	}, SuggestContact},
}

// Suggest evaluates the rules in order and appends the general suggestions.
func Suggest(in SuggestionInput) []string {
	var out []string
	for _, r := range suggestionRules {
		if r.applies(in) {
			out = append(out, r.text)
		}
	}
	return append(out, GeneralSuggestions...)
}

func countHighlights(entries []types.ExperienceEntry) int {
	n := 0
	for _, e := range entries {
		n += len(e.RealHighlights())
	}
	return n
}

func hasQuantifiedHighlight(entries []types.ExperienceEntry) bool {
	for _, e := range entries {
		for _, h := range e.RealHighlights() {
			if IsQuantifiable(h) {
				return true
			}
		}
	}
	return false
}

func hasDegree(entries []types.EducationEntry) bool {
	for _, e := range entries {
		if e.HasDegree() {
			return true
		}
	}
	return false
}
