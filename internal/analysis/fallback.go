package analysis

import (
	"slices"

	"placementpulse/internal/types"
)

const fallbackScore = 78

// Fallback returns the substitute analysis used when the pipeline cannot
// produce one. It is marked with source "fallback" and the given reason.
// Every call returns fresh slices and maps.
func Fallback(reason string, locations []string) types.AnalysisResult {
	skills := []types.SkillEntry{
		{Skill: "Java", Level: types.LevelAdvanced, Relevance: 90},
		{Skill: "Python", Level: types.LevelIntermediate, Relevance: 75},
		{Skill: "React", Level: types.LevelBeginner, Relevance: 65},
		{Skill: "Data Structures", Level: types.LevelAdvanced, Relevance: 85},
		{Skill: "Machine Learning", Level: types.LevelIntermediate, Relevance: 70},
	}
	SortSkills(skills)

	experience := []types.ExperienceEntry{
		{
			Role:     "Software Engineering Intern",
			Company:  "Tech Solutions Ltd.",
			Duration: "May 2023 - July 2023",
			Highlights: []string{
				"Developed and maintained web applications using React",
				"Collaborated with senior developers on database optimization",
				"Implemented responsive UI components",
			},
		},
		{
			Role:     "Student Developer",
			Company:  "College Tech Club",
			Duration: "Aug 2022 - Present",
			Highlights: []string{
				"Leading a team of 5 developers",
				"Created a campus event management application",
			},
		},
	}

	return types.AnalysisResult{
		TopSkills: skills,
		KeywordMatches: map[string]int{
			"engineering": 5,
			"project":     8,
			"development": 6,
			"team":        4,
			"algorithms":  3,
			"database":    2,
		},
		Education: []types.EducationEntry{{
			Degree:      "B.Tech in Computer Science",
			Institution: "Indian Institute of Technology",
			Year:        "2020-2024",
			Score:       "8.7 CGPA",
		}},
		Experience:         experience,
		OverallScore:       fallbackScore,
		SuggestedJobTitles: DeriveJobTitles(skills, experience),
		PreferredLocations: slices.Clone(locations),
		Suggestions:        slices.Clone(GeneralSuggestions),
		Source:             types.SourceFallback,
		FallbackReason:     reason,
	}
}

