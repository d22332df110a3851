package analysis

import (
	"cmp"
	"slices"
	"strings"

	"placementpulse/internal/types"
)

const (
	relevanceBase         = 50
	relevancePerHit       = 10
	relevanceEarlyBonus   = 10
	relevanceEarlyOffset  = 500
	proficiencyReach      = 50
	expertBonus           = 20
	intermediateBonus     = 10
	caseSensitiveNameSize = 2
)

// DetectSkills finds vocabulary skills in text and rates them. The result is
// sorted by relevance, highest first, then by name.
func DetectSkills(text string) []types.SkillEntry {
	lower := asciiLower(text)
	var out []types.SkillEntry
	for _, s := range Vocabulary {
		// Short names such as "C", "R" and "Go" only match as written.
		haystack, needle := lower, asciiLower(s.Name)
		listOnly := slices.Contains(listOnlySkills, s.Name)
		if listOnly || len(s.Name) <= caseSensitiveNameSize {
			haystack, needle = text, s.Name
		}
		hits := skillOccurrences(haystack, needle)
		if listOnly {
			hits = slices.DeleteFunc(hits, func(i int) bool { return !inList(text, i, i+len(needle)) })
		}
		if len(hits) == 0 {
			continue
		}
		relevance := relevanceFor(lower, hits, len(needle))
		out = append(out, types.SkillEntry{
			Skill:     s.Name,
			Level:     LevelFor(relevance),
			Relevance: relevance,
		})
	}
	SortSkills(out)
	return out
}

// SortSkills orders skills by relevance descending, ties by name.
func SortSkills(skills []types.SkillEntry) {
	slices.SortStableFunc(skills, func(a, b types.SkillEntry) int {
		if c := cmp.Compare(b.Relevance, a.Relevance); c != 0 {
			return c
		}
		return cmp.Compare(a.Skill, b.Skill)
	})
}

// LevelFor maps a relevance value to a proficiency level.
func LevelFor(relevance int) types.SkillLevel {
	switch {
	case relevance > 90:
		return types.LevelExpert
	case relevance > 75:
		return types.LevelAdvanced
	case relevance > 60:
		return types.LevelIntermediate
	default:
		return types.LevelBeginner
	}
}

// skillOccurrences returns offsets of needle in haystack that are not part
// of a longer word. A trailing "+" or "#" glues too, so "C" does not match
// inside "C++".
func skillOccurrences(haystack, needle string) []int {
	var out []int
	for _, i := range indexAll(haystack, needle) {
		j := i + len(needle)
		if i > 0 && (isAlnum(haystack[i-1]) || haystack[i-1] == '_') {
			continue
		}
		if j < len(haystack) && (isAlnum(haystack[j]) || strings.IndexByte("_+#", haystack[j]) >= 0) {
			continue
		}
		out = append(out, i)
	}
	return out
}

// inList reports whether text[i:j] sits next to list punctuation or a
// bullet, or ends its line.
func inList(text string, i, j int) bool {
	for i > 0 && (text[i-1] == ' ' || text[i-1] == '\t') {
		i--
	}
	if i > 0 && strings.IndexByte(",/|(&:;", text[i-1]) >= 0 {
		return true
	}
	for _, b := range inlineBullets {
		if strings.HasSuffix(text[:i], b) {
			return true
		}
	}
	for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
		j++
	}
	return j == len(text) || strings.IndexByte(",/|)&;\n\r", text[j]) >= 0
}

func relevanceFor(lower string, hits []int, size int) int {
	r := relevanceBase + relevancePerHit*len(hits)
	if hits[0] < relevanceEarlyOffset {
		r += relevanceEarlyBonus
	}
	bonus := 0
	for _, i := range hits {
		start, end := clampWindow(lower, i-proficiencyReach, i+size+proficiencyReach)
		bonus = max(bonus, proficiencyBonus(lower[start:end]))
		if bonus == expertBonus {
			break
		}
	}
	return min(100, r+bonus)
}

func proficiencyBonus(window string) int {
	for _, w := range expertTierWords {
		if strings.Contains(window, w) {
			return expertBonus
		}
	}
	for _, w := range intermediateTierWords {
		if strings.Contains(window, w) {
			return intermediateBonus
		}
	}
	return 0
}
