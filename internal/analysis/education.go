package analysis

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"placementpulse/internal/types"
)

var (
	degreePattern = regexp.MustCompile(`B\.\s?Tech|BTech|B\.E\.?|B\.Sc\.?|BSc|BCA|M\.\s?Tech|MTech|M\.E\.?|M\.Sc\.?|MSc|MCA|MBA|BBA|B\.Com|BCom|Ph\.\s?D\.?|PhD|` +
		`(?i:bachelor(?:'s)?|master(?:'s)?|diploma|higher secondary|senior secondary|secondary school|12th|10th|hsc|ssc)`)

	institutionPattern = regexp.MustCompile(`\b(?:(?i:university|institute|college|school|academy|vidyalaya)|IIT|NIT|IIIT|BITS)\b`)

	yearPattern = regexp.MustCompile(`((?:19|20)\d{2})(?:\s*(?:-|–|—|to)\s*((?:19|20)\d{2}|(?i:present|current|now)))?`)

	scoreAfterKeyword = regexp.MustCompile(`(?i)\b(CGPA|GPA|SGPA|CPI|percentage|score|marks|grade|aggregate)\s*(?:of|is|:|-|=)?\s*(\d{1,3}(?:\.\d{1,2})?)\s*(%|/\s*10(?:\.0+)?|/\s*4(?:\.0+)?|/\s*100)?`)
	scoreBeforeUnit   = regexp.MustCompile(`(?i)(\d{1,3}(?:\.\d{1,2})?)\s*(%|CGPA|GPA|SGPA|CPI)`)
)

const (
	yearReach      = 100
	degreeLineMax  = 80
	institutionMax = 80
)

// phraseStopWords end an institution or company phrase.
var phraseStopWords = []string{
	"cgpa", "gpa", "sgpa", "cpi", "percentage", "score", "marks", "grade", "aggregate",
	"present", "current",
	"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
	"january", "february", "march", "april", "june", "july", "august", "september",
	"october", "november", "december",
}

var phraseConnectors = []string{"of", "and", "&", "for", "the"}

// degreeSpans returns the degree tokens in text.
func degreeSpans(text string) []span {
	var out []span
	for _, m := range degreePattern.FindAllStringIndex(text, -1) {
		if m[0] > 0 && isAlnum(text[m[0]-1]) {
			continue
		}
		// "B.E." may be followed by anything; "BCA" must end the word.
		if text[m[1]-1] != '.' && m[1] < len(text) && isAlnum(text[m[1]]) {
			continue
		}
		out = append(out, span{m[0], m[1]})
	}
	return out
}

// ExtractEducation returns one entry per degree token found in the sections.
// It never returns an empty slice.
func ExtractEducation(sections []string) []types.EducationEntry {
	var entries []types.EducationEntry
	for _, sec := range sections {
		entries = append(entries, educationEntries(sec)...)
	}
	if len(entries) == 0 {
		return []types.EducationEntry{types.NewEducationEntry()}
	}
	return entries
}

func educationEntries(sec string) []types.EducationEntry {
	tokens := degreeSpans(sec)
	entries := make([]types.EducationEntry, 0, len(tokens))
	for k, tok := range tokens {
		end := len(sec)
		if k+1 < len(tokens) {
			end = tokens[k+1].start
		}
		entries = append(entries, parseEducation(sec[tok.start:end], tok.end-tok.start))
	}
	return entries
}

// parseEducation reads one entry from a window that starts with a degree
// token of length tokenLen.
func parseEducation(w string, tokenLen int) types.EducationEntry {
	entry := types.NewEducationEntry()

	stop := min(lineEnd(w, 0), degreeLineMax)

	inst, instStart := findInstitution(w, tokenLen)
	if inst != "" {
		entry.Institution = inst
		stop = min(stop, instStart)
	}

	yearWindow := w[:min(len(w), yearReach)]
	if m := findYear(yearWindow); m != nil {
		entry.Year = cleanPhrase(yearWindow[m[0]:m[1]])
		stop = min(stop, m[0])
	}

	if score, at := findScore(w, tokenLen); score != "" {
		entry.Score = score
		stop = min(stop, at)
	}

	line := w[:max(stop, tokenLen)]
	for _, sep := range []string{",", "|", ";", "(", " - ", " – ", " — ", " from ", " at "} {
		if i := strings.Index(line[tokenLen:], sep); i >= 0 {
			line = line[:tokenLen+i]
		}
	}
	degree := cleanPhrase(line)
	for _, dangling := range []string{" in", " of", " from", " at"} {
		degree = strings.TrimSuffix(degree, dangling)
	}
	entry.Degree = degree
	return entry
}

func findYear(s string) []int {
	for _, m := range yearPattern.FindAllStringIndex(s, -1) {
		if bounded(s, m[0], m[1]) {
			return m
		}
	}
	return nil
}

// findInstitution returns the phrase around the first institution keyword
// after the degree token, and the phrase start.
func findInstitution(w string, floor int) (string, int) {
	for _, m := range institutionPattern.FindAllStringIndex(w, -1) {
		if m[0] < floor {
			continue
		}
		start := extendLeft(w, m[0], max(floor, lineStart(w, m[0])), 3)
		end := extendRight(w, m[1], min(len(w), lineEnd(w, m[1])), 5)
		phrase := trimConnectors(cleanPhrase(w[start:end]))
		if len(phrase) > institutionMax {
			phrase = strings.TrimSpace(phrase[:institutionMax])
		}
		if phrase != "" {
			return phrase, start
		}
	}
	return "", -1
}

// extendLeft walks back from i over up to n capitalized words or connectors,
// never crossing floor or a word that ends in punctuation.
func extendLeft(text string, i, floor, n int) int {
	start := i
	for taken := 0; taken < n; taken++ {
		j := start
		for j > floor && (text[j-1] == ' ' || text[j-1] == '\t') {
			j--
		}
		ws := j
		for ws > floor && text[ws-1] != ' ' && text[ws-1] != '\t' && text[ws-1] != '\n' {
			ws--
		}
		if ws == j {
			break
		}
		word := text[ws:j]
		if strings.ContainsAny(word[len(word)-1:], ".,;:|)") || !acceptPhraseWord(word) {
			break
		}
		start = ws
	}
	return start
}

// extendRight walks forward from j over up to n capitalized words or
// connectors, stopping at limit. A word ending in a comma is the last one.
func extendRight(text string, j, limit, n int) int {
	end := j
	if end < limit && text[end] == ',' {
		return end
	}
	for taken := 0; taken < n; taken++ {
		k := end
		for k < limit && (text[k] == ' ' || text[k] == '\t') {
			k++
		}
		we := k
		for we < limit && text[we] != ' ' && text[we] != '\t' {
			we++
		}
		if we == k {
			break
		}
		word := text[k:we]
		last := strings.ContainsAny(word[len(word)-1:], ",;|")
		word = strings.TrimRight(word, ",;|")
		if word == "" || !acceptPhraseWord(word) {
			break
		}
		end = k + len(word)
		if last {
			break
		}
	}
	return end
}

func acceptPhraseWord(word string) bool {
	lw := strings.ToLower(strings.Trim(word, ".,"))
	if slices.Contains(phraseConnectors, lw) {
		return true
	}
	if slices.Contains(phraseStopWords, lw) || strings.ContainsAny(word, "0123456789|(") {
		return false
	}
	return isCapitalized(word)
}

func trimConnectors(phrase string) string {
	words := strings.Fields(phrase)
	for len(words) > 0 && slices.Contains(phraseConnectors, strings.ToLower(words[0])) {
		words = words[1:]
	}
	for len(words) > 0 && slices.Contains(phraseConnectors, strings.ToLower(words[len(words)-1])) {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// findScore returns the first grade in w after the degree token, formatted
// as "8.7 CGPA" or "92%", and its offset.
func findScore(w string, floor int) (string, int) {
	best, at := "", -1
	for _, m := range scoreAfterKeyword.FindAllStringSubmatchIndex(w, -1) {
		if m[0] < floor || !plausibleScore(w, m[4], m[5]) {
			continue
		}
		keyword := w[m[2]:m[3]]
		num := w[m[4]:m[5]]
		suffix := ""
		if m[6] >= 0 {
			suffix = strings.ReplaceAll(w[m[6]:m[7]], " ", "")
		}
		best, at = formatScore(num, keyword, suffix), m[0]
		break
	}
	for _, m := range scoreBeforeUnit.FindAllStringSubmatchIndex(w, -1) {
		if m[0] < floor || !plausibleScore(w, m[2], m[3]) {
			continue
		}
		if at < 0 || m[0] < at {
			best, at = formatScore(w[m[2]:m[3]], w[m[4]:m[5]], ""), m[0]
		}
		break
	}
	return best, at
}

func plausibleScore(w string, i, j int) bool {
	if i > 0 && (w[i-1] >= '0' && w[i-1] <= '9' || w[i-1] == '.') {
		return false
	}
	if j < len(w) && w[j] >= '0' && w[j] <= '9' {
		return false
	}
	v, err := strconv.ParseFloat(w[i:j], 64)
	return err == nil && v <= 100
}

func formatScore(num, keyword, suffix string) string {
	switch kw := strings.ToUpper(keyword); {
	case kw == "%" || suffix == "%" || kw == "PERCENTAGE":
		return num + "%"
	case kw == "CGPA" || kw == "GPA" || kw == "SGPA" || kw == "CPI":
		return num + " " + kw
	default:
		return num + suffix
	}
}
