package analysis

import (
	"testing"

	"placementpulse/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestDeriveJobTitles(t *testing.T) {
	tests := []struct {
		name       string
		skills     []types.SkillEntry
		experience []types.ExperienceEntry
		want       []string
	}{
		{
			name:       "skills, categories and roles",
			skills:     []types.SkillEntry{{Skill: "React"}, {Skill: "Docker"}},
			experience: []types.ExperienceEntry{{Role: "Data Analyst"}},
			want:       []string{"React Developer", "Frontend Developer", "DevOps Engineer", "Data Analyst"},
		},
		{
			name:   "category only",
			skills: []types.SkillEntry{{Skill: "HTML"}},
			want:   []string{"Frontend Developer"},
		},
		{
			name:       "capped at five",
			skills:     []types.SkillEntry{{Skill: "Java"}, {Skill: "Python"}, {Skill: "Machine Learning"}},
			experience: []types.ExperienceEntry{{Role: "Research Intern"}},
			want:       []string{"Java Developer", "Backend Developer", "Python Developer", "Data Analyst", "Machine Learning Engineer"},
		},
		{
			name:       "case-insensitive dedupe and sentinel roles skipped",
			skills:     []types.SkillEntry{{Skill: "Vue"}},
			experience: []types.ExperienceEntry{{Role: "frontend developer"}, types.NewExperienceEntry()},
			want:       []string{"Frontend Developer"},
		},
		{
			name: "nothing detected",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveJobTitles(tt.skills, tt.experience))
		})
	}
}

func TestDeriveJobTitlesUsesTopThreeOnly(t *testing.T) {
	skills := []types.SkillEntry{{Skill: "C"}, {Skill: "Rust"}, {Skill: "Bash"}, {Skill: "Swift"}}
	got := DeriveJobTitles(skills, nil)
	assert.NotContains(t, got, "iOS Developer")
	assert.Contains(t, got, "Mobile App Developer")
	assert.Contains(t, got, "DevOps Engineer")
}
