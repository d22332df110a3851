package analysis

import (
	"cmp"
	"slices"
	"strings"
)

const (
	sectionEducation  = "education"
	sectionExperience = "experience"
)

// headingSynonyms lists heading phrases per category. Categories other than
// education and experience only terminate captures.
var headingSynonyms = map[string][]string{
	sectionEducation: {
		"education", "educational qualifications", "educational background",
		"academic background", "academic qualifications", "academic details",
		"academics", "qualifications", "scholastic record",
	},
	sectionExperience: {
		"experience", "work experience", "professional experience",
		"internship experience", "internships", "employment history",
		"employment", "work history", "career history",
	},
	"skills":       {"skills", "technical skills", "key skills", "core competencies"},
	"projects":     {"projects", "academic projects", "personal projects", "key projects"},
	"certificates": {"certifications", "certificates", "licenses"},
	"summary": {
		"summary", "professional summary", "objective", "career objective",
		"profile", "about me",
	},
	"achievements": {"achievements", "awards", "honors", "accomplishments"},
	"activities": {
		"extracurricular activities", "extra-curricular activities",
		"activities", "positions of responsibility", "volunteering",
	},
	"other": {
		"contact", "personal details", "languages", "interests", "hobbies",
		"publications", "references", "declaration",
	},
}

type headingPhrase struct {
	phrase   string
	category string
}

// headingPhrases is ordered longest first so "work experience" wins over
// "experience".
var headingPhrases = func() []headingPhrase {
	var out []headingPhrase
	for cat, phrases := range headingSynonyms {
		for _, p := range phrases {
			out = append(out, headingPhrase{p, cat})
		}
	}
	slices.SortFunc(out, func(a, b headingPhrase) int {
		if c := cmp.Compare(len(b.phrase), len(a.phrase)); c != 0 {
			return c
		}
		return cmp.Compare(a.phrase, b.phrase)
	})
	return out
}()

type heading struct {
	span
	category string
}

// Sections holds the education and experience regions of a resume.
type Sections struct {
	Education  []string
	Experience []string

	// Implicit is set when no heading was found and the regions come from
	// field-level pattern matches over the whole text.
	EducationImplicit  bool
	ExperienceImplicit bool
}

// Segment splits resume text into education and experience regions.
func Segment(text string) Sections {
	headings := findHeadings(text, headingPhrases)

	var s Sections
	s.Education = captures(text, headings, sectionEducation)
	s.Experience = captures(text, headings, sectionExperience)

	if len(s.Education) == 0 {
		s.Education = snippets(text, degreeSpans(text), 250)
		s.EducationImplicit = true
	}
	if len(s.Experience) == 0 {
		s.Experience = snippets(text, roleNounSpans(text), experienceWindow)
		s.ExperienceImplicit = true
	}
	return s
}

// HasSection reports whether text contains a heading for any of the names.
func HasSection(text string, names ...string) bool {
	phrases := make([]headingPhrase, 0, len(names))
	for _, n := range names {
		phrases = append(phrases, headingPhrase{strings.ToLower(n), ""})
	}
	return len(findHeadings(text, phrases)) > 0
}

// captures returns, for each heading of the category, the text up to the
// nearest following heading of a different category.
func captures(text string, headings []heading, category string) []string {
	var out []string
	for i := 0; i < len(headings); i++ {
		h := headings[i]
		if h.category != category {
			continue
		}
		end := len(text)
		j := i + 1
		for ; j < len(headings); j++ {
			if headings[j].category != category {
				end = headings[j].start
				break
			}
		}
		body := strings.TrimSpace(text[h.end:end])
		if body = strings.TrimSpace(strings.TrimPrefix(body, ":")); body != "" {
			out = append(out, body)
		}
		// Same-category headings inside the capture are already covered.
		i = j - 1
	}
	return out
}

// findHeadings locates heading-like occurrences of the phrases, sorted by
// position. A phrase counts as a heading when it is at a line start (or
// after a bullet) and followed by a colon or line end, when it is written
// in capitals, or when it is followed by a colon.
func findHeadings(text string, phrases []headingPhrase) []heading {
	lower := asciiLower(text)
	var found []heading
	for _, p := range phrases {
		for _, i := range indexAll(lower, p.phrase) {
			j := i + len(p.phrase)
			if !bounded(lower, i, j) || overlapsAny(found, i, j) {
				continue
			}
			if isHeadingAt(text, i, j) {
				found = append(found, heading{span{i, j}, p.category})
			}
		}
	}
	slices.SortFunc(found, func(a, b heading) int { return cmp.Compare(a.start, b.start) })
	return found
}

func isHeadingAt(text string, i, j int) bool {
	colon, eol := followedBy(text, j)
	if colon {
		return true
	}
	upper := isUpperWord(text[i:j])
	if upper && (eol || j < len(text) && (text[j] == ' ' || text[j] == '\t')) {
		return true
	}
	if eol && atLineStart(text, i) {
		return true
	}
	return titleHeadingAt(text, i, j)
}

// titleLeadIns are words that put a following title-case phrase in prose.
var titleLeadIns = []string{"of", "and", "&", "for", "the", "in", "at", "with", "a", "an", "my", "our", "to", "on"}

// titleHeadingAt accepts a title-case heading run into the text around it,
// as in "CGPA: 8.5 Experience Software Engineer". The next token must be
// capitalized, a degree or a bullet. A title-case word right before the
// phrase makes it part of a name ("Customer Experience Designer") unless a
// degree follows.
func titleHeadingAt(text string, i, j int) bool {
	if !isTitlePhrase(text[i:j]) || j >= len(text) || (text[j] != ' ' && text[j] != '\t') {
		return false
	}
	k := j
	for k < len(text) && (text[k] == ' ' || text[k] == '\t') {
		k++
	}
	next := text[k:]
	if next == "" || next[0] == '\n' || next[0] == '\r' {
		return false
	}
	degree := startsWithDegree(next)
	if !degree && !isCapitalized(next) && !startsWithBullet(next) {
		return false
	}
	prev := wordBefore(text, i)
	switch {
	case prev == "":
		return true
	case slices.Contains(titleLeadIns, strings.ToLower(prev)):
		return false
	case isTitleWord(prev):
		return degree
	}
	return true
}

// isTitlePhrase reports whether every word of phrase is capitalized, allowing
// lowercase connectors after the first word.
func isTitlePhrase(phrase string) bool {
	for n, w := range strings.Fields(phrase) {
		if n > 0 && slices.Contains(phraseConnectors, w) {
			continue
		}
		if !isCapitalized(w) {
			return false
		}
	}
	return true
}

// isTitleWord reports whether word is a plain capitalized word such as
// "Doe" or "Customer", not an acronym and not closed by punctuation.
func isTitleWord(word string) bool {
	if !isCapitalized(word) || isUpperWord(word) {
		return false
	}
	last := word[len(word)-1]
	return last >= 'a' && last <= 'z'
}

// wordBefore returns the word ending before i on the same line.
func wordBefore(text string, i int) string {
	j := i
	for j > 0 && (text[j-1] == ' ' || text[j-1] == '\t') {
		j--
	}
	ws := j
	for ws > 0 && !strings.ContainsRune(" \t\n\r", rune(text[ws-1])) {
		ws--
	}
	return text[ws:j]
}

func startsWithDegree(s string) bool {
	d := degreeSpans(s[:min(len(s), 20)])
	return len(d) > 0 && d[0].start == 0
}

func startsWithBullet(s string) bool {
	for _, b := range inlineBullets {
		if strings.HasPrefix(s, b) {
			return true
		}
	}
	return false
}

// headingEndingAt reports whether a heading phrase ends at j in text.
func headingEndingAt(text string, j int) bool {
	for _, p := range headingPhrases {
		i := j - len(p.phrase)
		if i < 0 || !strings.EqualFold(text[i:j], p.phrase) || !bounded(text, i, j) {
			continue
		}
		if isHeadingAt(text, i, j) {
			return true
		}
	}
	return false
}

// followedBy reports whether text[j:] continues with a colon or a line end,
// ignoring horizontal whitespace.
func followedBy(text string, j int) (colon, eol bool) {
	for ; j < len(text); j++ {
		switch text[j] {
		case ' ', '\t':
			continue
		case ':':
			return true, false
		case '\n', '\r':
			return false, true
		default:
			return false, false
		}
	}
	return false, true
}

func atLineStart(text string, i int) bool {
	prefix := strings.TrimSpace(text[lineStart(text, i):i])
	prefix = strings.TrimLeft(prefix, "#*-•▪●◦|= ")
	return prefix == ""
}

func overlapsAny(found []heading, i, j int) bool {
	for _, h := range found {
		if i < h.end && h.start < j {
			return true
		}
	}
	return false
}

// snippets cuts a window starting at the line of each match and running
// width bytes past it, merging overlaps.
func snippets(text string, matches []span, width int) []string {
	if len(matches) == 0 {
		return nil
	}
	windows := make([]span, 0, len(matches))
	for _, m := range matches {
		start, end := clampWindow(text, lineStart(text, m.start), m.start+width)
		windows = append(windows, span{start, end})
	}
	var out []string
	for _, w := range mergeSpans(windows) {
		if s := strings.TrimSpace(text[w.start:w.end]); s != "" {
			out = append(out, s)
		}
	}
	return out
}
