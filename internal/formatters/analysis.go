package formatters

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"placementpulse/internal/types"
)

// AnalysisTextFormatter renders an AnalysisResult as plain text
type AnalysisTextFormatter struct{}

func (*AnalysisTextFormatter) SupportedType() string { return "AnalysisResult" }

func (*AnalysisTextFormatter) Format(data any) (string, error) {
	r, err := deref[types.AnalysisResult](data)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	fmt.Fprintf(&out, "=== RESUME ANALYSIS ===\n")
	fmt.Fprintf(&out, "Overall Score: %d/100\n", r.OverallScore)
	if r.IsFallback() {
		fmt.Fprintf(&out, "Note: fallback analysis (%s)\n", r.FallbackReason)
	}
	out.WriteString("\n")

	out.WriteString("=== TOP SKILLS ===\n")
	for _, s := range r.TopSkills {
		fmt.Fprintf(&out, "- %s (%s, %d%%)\n", s.Skill, s.Level, s.Relevance)
	}
	out.WriteString("\n=== EDUCATION ===\n")
	for _, e := range r.Education {
		fmt.Fprintf(&out, "- %s, %s (%s) %s\n", e.Degree, e.Institution, e.Year, e.Score)
	}
	out.WriteString("\n=== EXPERIENCE ===\n")
	for _, e := range r.Experience {
		fmt.Fprintf(&out, "- %s at %s (%s)\n", e.Role, e.Company, e.Duration)
		for _, h := range e.Highlights {
			fmt.Fprintf(&out, "    * %s\n", h)
		}
	}
	if len(r.KeywordMatches) > 0 {
		out.WriteString("\n=== KEYWORDS ===\n")
		for _, k := range sortedKeys(r.KeywordMatches) {
			fmt.Fprintf(&out, "%s: %d\n", k, r.KeywordMatches[k])
		}
	}
	if b := r.Breakdown; b != nil {
		out.WriteString("\n=== SCORE BREAKDOWN ===\n")
		fmt.Fprintf(&out, "Skills: %.1f\nEducation: %.1f\nExperience: %.1f\nKeywords: %.1f\nExtra: %.1f\n",
			b.Skills, b.Education, b.Experience, b.Keywords, b.Extra)
	}
	writeList(&out, "\n=== SUGGESTED JOB TITLES ===\n", "- ", r.SuggestedJobTitles)
	writeList(&out, "\n=== PREFERRED LOCATIONS ===\n", "- ", r.PreferredLocations)
	writeList(&out, "\n=== SUGGESTIONS ===\n", "- ", r.Suggestions)
	return out.String(), nil
}

// AnalysisMarkdownFormatter renders an AnalysisResult as Markdown
type AnalysisMarkdownFormatter struct{}

func (*AnalysisMarkdownFormatter) SupportedType() string { return "AnalysisResult" }

func (*AnalysisMarkdownFormatter) Format(data any) (string, error) {
	r, err := deref[types.AnalysisResult](data)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	out.WriteString("# Resume Analysis\n\n")
	fmt.Fprintf(&out, "**Overall Score:** %d/100\n\n", r.OverallScore)
	if r.IsFallback() {
		fmt.Fprintf(&out, "> Fallback analysis: %s\n\n", r.FallbackReason)
	}

	out.WriteString("## Top Skills\n\n| Skill | Level | Relevance |\n|---|---|---|\n")
	for _, s := range r.TopSkills {
		fmt.Fprintf(&out, "| %s | %s | %d |\n", s.Skill, s.Level, s.Relevance)
	}

	out.WriteString("\n## Education\n\n")
	for _, e := range r.Education {
		fmt.Fprintf(&out, "- **%s**, %s (%s) - %s\n", e.Degree, e.Institution, e.Year, e.Score)
	}

	out.WriteString("\n## Experience\n\n")
	for _, e := range r.Experience {
		fmt.Fprintf(&out, "### %s - %s\n\n*%s*\n\n", e.Role, e.Company, e.Duration)
		for _, h := range e.Highlights {
			fmt.Fprintf(&out, "- %s\n", h)
		}
		out.WriteString("\n")
	}

	if b := r.Breakdown; b != nil {
		out.WriteString("## Score Breakdown\n\n| Component | Points |\n|---|---|\n")
		fmt.Fprintf(&out, "| Skills | %.1f |\n| Education | %.1f |\n| Experience | %.1f |\n| Keywords | %.1f |\n| Extra | %.1f |\n\n",
			b.Skills, b.Education, b.Experience, b.Keywords, b.Extra)
	}
	writeList(&out, "## Suggested Job Titles\n\n", "- ", r.SuggestedJobTitles)
	writeList(&out, "\n## Suggestions\n\n", "- ", r.Suggestions)
	return out.String(), nil
}

func writeList(out *strings.Builder, heading, bullet string, items []string) {
	if len(items) == 0 {
		return
	}
	out.WriteString(heading)
	for _, item := range items {
		out.WriteString(bullet)
		out.WriteString(item)
		out.WriteString("\n")
	}
}

func sortedKeys(m map[string]int) []string {
	return slices.Sorted(maps.Keys(m))
}
