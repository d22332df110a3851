package analysis

import (
	"strings"

	"placementpulse/internal/types"
)

const maxJobTitles = 5

// titlesBySkill maps a prominent skill to the roles it usually leads to.
var titlesBySkill = map[string][]string{
	"Java":             {"Java Developer", "Backend Developer"},
	"Python":           {"Python Developer", "Data Analyst"},
	"JavaScript":       {"JavaScript Developer", "Frontend Developer"},
	"TypeScript":       {"Frontend Developer", "Full Stack Developer"},
	"C++":              {"Software Engineer", "Systems Engineer"},
	"C#":               {".NET Developer", "Software Engineer"},
	"Go":               {"Go Developer", "Backend Developer"},
	"Kotlin":           {"Android Developer"},
	"Swift":            {"iOS Developer"},
	"PHP":              {"PHP Developer", "Web Developer"},
	"SQL":              {"Database Developer", "Data Analyst"},
	"React":            {"React Developer", "Frontend Developer"},
	"Angular":          {"Angular Developer", "Frontend Developer"},
	"Vue":              {"Frontend Developer"},
	"Node.js":          {"Node.js Developer", "Backend Developer"},
	"Django":           {"Django Developer", "Backend Developer"},
	"Spring Boot":      {"Java Backend Developer"},
	"Machine Learning": {"Machine Learning Engineer", "Data Scientist"},
	"Deep Learning":    {"Deep Learning Engineer", "AI Engineer"},
	"Data Science":     {"Data Scientist"},
	"Data Analysis":    {"Data Analyst"},
	"TensorFlow":       {"Machine Learning Engineer"},
	"PyTorch":          {"Machine Learning Engineer"},
	"NLP":              {"NLP Engineer"},
	"Power BI":         {"Business Intelligence Analyst"},
	"Tableau":          {"Business Intelligence Analyst"},
	"AWS":              {"Cloud Engineer"},
	"Azure":            {"Cloud Engineer"},
	"Docker":           {"DevOps Engineer"},
	"Kubernetes":       {"DevOps Engineer", "Site Reliability Engineer"},
	"Android":          {"Android Developer"},
	"Flutter":          {"Flutter Developer", "Mobile App Developer"},
	"React Native":     {"Mobile App Developer"},
	"Data Structures":  {"Software Engineer", "Software Development Engineer"},
	"Algorithms":       {"Software Development Engineer"},
}

// categoryTitles are generic titles for a skill category.
var categoryTitles = []struct {
	category string
	titles   []string
}{
	{CategoryFrontend, []string{"Frontend Developer"}},
	{CategoryBackend, []string{"Backend Developer"}},
	{CategoryData, []string{"Data Analyst"}},
	{CategoryDevOps, []string{"DevOps Engineer"}},
	{CategoryMobile, []string{"Mobile App Developer"}},
}

// DeriveJobTitles suggests up to five job titles from the top skills, the
// categories of all detected skills and the roles already held.
func DeriveJobTitles(skills []types.SkillEntry, experience []types.ExperienceEntry) []string {
	var titles []string
	seen := make(map[string]bool)
	add := func(t string) {
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			return
		}
		seen[key] = true
		titles = append(titles, t)
	}

	for _, s := range skills[:min(3, len(skills))] {
		for _, t := range titlesBySkill[s.Skill] {
			add(t)
		}
	}

	present := make(map[string]bool)
	for _, s := range skills {
		present[SkillCategory(s.Skill)] = true
	}
	for _, ct := range categoryTitles {
		if present[ct.category] {
			for _, t := range ct.titles {
				add(t)
			}
		}
	}

	for _, e := range experience {
		if e.HasRole() {
			add(e.Role)
		}
	}

	return titles[:min(maxJobTitles, len(titles))]
}
