package analysis

import (
	"regexp"
	"slices"
	"strings"

	"placementpulse/internal/types"
)

const (
	experienceWindow = 600
	companyMaxWords  = 6
)

var (
	roleNounPattern = func() *regexp.Regexp {
		alts := slices.Clone(jobTitleNouns)
		for _, n := range jobTitleNouns {
			alts = append(alts, strings.ToUpper(n))
		}
		return regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
	}()

	durationPattern = regexp.MustCompile(`(?i)\b(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?,?\s+)?(?:19|20)\d{2}` +
		`(?:\s*(?:-|–|—|to|till)\s*(?:(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?,?\s+)?(?:19|20)\d{2}|present|current|now|ongoing|date))?`)

	numberedMarker = regexp.MustCompile(`^\d{1,2}[.)]\s+`)
)

var (
	inlineBullets = []string{"•", "▪", "●", "◦"}
	romanNumerals = []string{"I", "II", "III", "IV"}
)

// roleMatch is a role phrase located in a section.
type roleMatch struct {
	span
	role string
}

// ExtractExperience returns one entry per role phrase found in the sections.
// It never returns an empty slice.
func ExtractExperience(sections []string) []types.ExperienceEntry {
	var entries []types.ExperienceEntry
	for _, sec := range sections {
		entries = append(entries, experienceEntries(sec)...)
	}
	if len(entries) == 0 {
		return []types.ExperienceEntry{types.NewExperienceEntry()}
	}
	return entries
}

func experienceEntries(sec string) []types.ExperienceEntry {
	roles := findRoles(sec)
	entries := make([]types.ExperienceEntry, 0, len(roles))
	for k, r := range roles {
		end := min(len(sec), r.start+experienceWindow)
		if k+1 < len(roles) {
			end = min(end, roles[k+1].start)
		}
		_, end = clampWindow(sec, r.start, end)
		entries = append(entries, parseExperience(sec, r, end))
	}
	return entries
}

func parseExperience(sec string, r roleMatch, end int) types.ExperienceEntry {
	entry := types.NewExperienceEntry()
	entry.Role = r.role

	if company := findCompany(sec, r.end, end); company != "" {
		entry.Company = company
	}
	if m := durationPattern.FindStringIndex(sec[r.end:end]); m != nil {
		entry.Duration = cleanPhrase(sec[r.end+m[0] : r.end+m[1]])
	}
	if hl := findHighlights(sec[r.end:end]); len(hl) > 0 {
		entry.Highlights = hl
	}
	return entry
}

// roleNounSpans returns the role phrases of text, used when a resume has no
// experience heading.
func roleNounSpans(text string) []span {
	roles := findRoles(text)
	out := make([]span, len(roles))
	for i, r := range roles {
		out[i] = r.span
	}
	return out
}

// findRoles locates role phrases: a capitalized job-title noun with up to
// three capitalized words before it and up to two title words after it.
func findRoles(text string) []roleMatch {
	var out []roleMatch
	floor := 0
	for _, m := range roleNounPattern.FindAllStringIndex(text, -1) {
		if m[0] < floor {
			continue
		}
		start := extendRoleLeft(text, m[0], max(floor, lineStart(text, m[0])))
		end := extendRoleRight(text, m[1])
		if start == m[0] && end == m[1] && proseFollows(text, end) {
			// "Lead a team of six" is a sentence, not a title.
			continue
		}
		out = append(out, roleMatch{span{start, end}, cleanPhrase(text[start:end])})
		floor = end
	}
	return out
}

func extendRoleLeft(text string, i, floor int) int {
	start := i
	for taken := 0; taken < 3; taken++ {
		j := start
		for j > floor && (text[j-1] == ' ' || text[j-1] == '\t') {
			j--
		}
		ws := j
		for ws > floor && !strings.ContainsRune(" \t\n", rune(text[ws-1])) {
			ws--
		}
		if ws == j {
			break
		}
		word := text[ws:j]
		if strings.ContainsAny(word, ".,;:|)0123456789") || !isCapitalized(word) ||
			slices.Contains(phraseStopWords, strings.ToLower(word)) || headingEndingAt(text, j) {
			break
		}
		start = ws
	}
	return start
}

func extendRoleRight(text string, j int) int {
	end := j
	limit := lineEnd(text, j)
	for taken := 0; taken < 2; taken++ {
		k := end
		for k < limit && (text[k] == ' ' || text[k] == '\t') {
			k++
		}
		we := k
		for we < limit && text[we] != ' ' && text[we] != '\t' {
			we++
		}
		word := text[k:we]
		if word == "" || !(isJobTitleNoun(word) || slices.Contains(romanNumerals, word)) {
			break
		}
		end = we
	}
	return end
}

func isJobTitleNoun(word string) bool {
	for _, n := range jobTitleNouns {
		if word == n || word == strings.ToUpper(n) {
			return true
		}
	}
	return false
}

// proseFollows reports whether the next word is lowercase and not "at".
func proseFollows(text string, j int) bool {
	rest := strings.Fields(text[j:min(len(text), j+40)])
	if len(rest) == 0 {
		return false
	}
	next := rest[0]
	return next != "at" && !isCapitalized(next) && !strings.ContainsAny(next[:1], "@,|-–—(0123456789")
}

// findCompany reads the company phrase after the role: text following "at",
// "@" or a separator on the role line, or the next line when the role line
// ends with the title.
func findCompany(sec string, roleEnd, limit int) string {
	rest := sec[roleEnd:min(limit, lineEnd(sec, roleEnd))]
	if strings.TrimSpace(rest) == "" && lineEnd(sec, roleEnd) < limit {
		next := lineEnd(sec, roleEnd) + 1
		rest = sec[next:min(limit, lineEnd(sec, next))]
		if startsWithMarker(strings.TrimSpace(rest)) {
			return ""
		}
	}

	rest = strings.TrimSpace(rest)
	for {
		trimmed := strings.TrimLeft(rest, " ,|:-–—@")
		if after, ok := strings.CutPrefix(trimmed, "at "); ok {
			trimmed = after
		}
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == rest {
			break
		}
		rest = trimmed
	}

	var words []string
	for _, w := range strings.Fields(rest) {
		last := strings.HasSuffix(w, ",") || strings.HasSuffix(w, "|")
		w = strings.TrimRight(w, ",|")
		if w == "" || slices.ContainsFunc(inlineBullets, func(b string) bool { return strings.HasPrefix(w, b) }) ||
			!acceptPhraseWord(w) {
			break
		}
		words = append(words, w)
		if last || len(words) == companyMaxWords {
			break
		}
	}
	return trimConnectors(strings.Join(words, " "))
}

func startsWithMarker(line string) bool {
	for _, b := range inlineBullets {
		if strings.HasPrefix(line, b) {
			return true
		}
	}
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || numberedMarker.MatchString(line)
}

// findHighlights collects bullet and numbered items in region.
func findHighlights(region string) []string {
	if hs := findHeadings(region, headingPhrases); len(hs) > 0 {
		region = region[:hs[0].start]
	}
	var items []string
	for line := range strings.Lines(region) {
		line = strings.TrimSpace(line)
		marked := false
		switch {
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			line, marked = line[2:], true
		case numberedMarker.MatchString(line):
			line, marked = numberedMarker.ReplaceAllString(line, ""), true
		}

		parts := splitInlineBullets(line)
		if !marked {
			// Text before the first glyph is not an item.
			parts = parts[1:]
		}
		for _, p := range parts {
			if item := cleanPhrase(p); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

// splitInlineBullets splits a line on bullet glyphs; the first part is the
// text before any glyph.
func splitInlineBullets(line string) []string {
	parts := []string{line}
	for _, b := range inlineBullets {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, b)...)
		}
		parts = next
	}
	return parts
}
