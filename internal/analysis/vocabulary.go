package analysis

// Skill categories used by the job-title deriver.
const (
	CategoryLanguage    = "language"
	CategoryFrontend    = "frontend"
	CategoryBackend     = "backend"
	CategoryData        = "data"
	CategoryDatabase    = "database"
	CategoryDevOps      = "devops"
	CategoryMobile      = "mobile"
	CategoryFundamental = "fundamental"
)

// Skill is a vocabulary entry.
type Skill struct {
	Name     string
	Category string
}

// listOnlySkills are skill names that are also everyday words. They match
// only as written and only next to list punctuation.
var listOnlySkills = []string{"C", "R", "Go", "Express", "Swift", "Rust", "Excel", "Dart", "Ruby"}

// Vocabulary is the fixed skill list the detector searches for.
var Vocabulary = []Skill{
	{"Java", CategoryLanguage},
	{"Python", CategoryLanguage},
	{"JavaScript", CategoryFrontend},
	{"TypeScript", CategoryFrontend},
	{"C", CategoryLanguage},
	{"C++", CategoryLanguage},
	{"C#", CategoryBackend},
	{"Go", CategoryBackend},
	{"Rust", CategoryLanguage},
	{"Kotlin", CategoryMobile},
	{"Swift", CategoryMobile},
	{"Ruby", CategoryBackend},
	{"PHP", CategoryBackend},
	{"R", CategoryData},
	{"Scala", CategoryData},
	{"MATLAB", CategoryData},
	{"SQL", CategoryDatabase},
	{"Dart", CategoryMobile},
	{"Bash", CategoryDevOps},

	{"HTML", CategoryFrontend},
	{"CSS", CategoryFrontend},
	{"React", CategoryFrontend},
	{"Angular", CategoryFrontend},
	{"Vue", CategoryFrontend},
	{"Next.js", CategoryFrontend},
	{"Redux", CategoryFrontend},
	{"Tailwind", CategoryFrontend},
	{"Bootstrap", CategoryFrontend},
	{"jQuery", CategoryFrontend},

	{"Node.js", CategoryBackend},
	{"Express", CategoryBackend},
	{"Django", CategoryBackend},
	{"Flask", CategoryBackend},
	{"Spring Boot", CategoryBackend},
	{"FastAPI", CategoryBackend},
	{"REST API", CategoryBackend},
	{"GraphQL", CategoryBackend},
	{"Microservices", CategoryBackend},
	{"Laravel", CategoryBackend},

	{"Machine Learning", CategoryData},
	{"Deep Learning", CategoryData},
	{"Data Science", CategoryData},
	{"Data Analysis", CategoryData},
	{"TensorFlow", CategoryData},
	{"PyTorch", CategoryData},
	{"Pandas", CategoryData},
	{"NumPy", CategoryData},
	{"Scikit-learn", CategoryData},
	{"NLP", CategoryData},
	{"Computer Vision", CategoryData},
	{"Power BI", CategoryData},
	{"Tableau", CategoryData},
	{"Excel", CategoryData},

	{"MySQL", CategoryDatabase},
	{"PostgreSQL", CategoryDatabase},
	{"MongoDB", CategoryDatabase},
	{"Redis", CategoryDatabase},
	{"Firebase", CategoryDatabase},
	{"Oracle", CategoryDatabase},
	{"SQLite", CategoryDatabase},

	{"AWS", CategoryDevOps},
	{"Azure", CategoryDevOps},
	{"GCP", CategoryDevOps},
	{"Docker", CategoryDevOps},
	{"Kubernetes", CategoryDevOps},
	{"Jenkins", CategoryDevOps},
	{"Terraform", CategoryDevOps},
	{"Linux", CategoryDevOps},
	{"Git", CategoryDevOps},
	{"GitHub", CategoryDevOps},
	{"CI/CD", CategoryDevOps},
	{"Ansible", CategoryDevOps},

	{"Android", CategoryMobile},
	{"iOS", CategoryMobile},
	{"Flutter", CategoryMobile},
	{"React Native", CategoryMobile},

	{"Data Structures", CategoryFundamental},
	{"Algorithms", CategoryFundamental},
	{"OOP", CategoryFundamental},
	{"DBMS", CategoryFundamental},
	{"Operating Systems", CategoryFundamental},
	{"Computer Networks", CategoryFundamental},
	{"System Design", CategoryFundamental},
}

var categoryBySkill = func() map[string]string {
	m := make(map[string]string, len(Vocabulary))
	for _, s := range Vocabulary {
		m[s.Name] = s.Category
	}
	return m
}()

// SkillCategory returns the category of a vocabulary skill, or "".
func SkillCategory(name string) string {
	return categoryBySkill[name]
}

// Keywords are the generic resume terms counted by the keyword scan.
var Keywords = []string{
	"engineering",
	"project",
	"development",
	"team",
	"algorithms",
	"database",
	"frontend",
	"backend",
	"full-stack",
	"agile",
	"testing",
	"cloud",
	"architecture",
	"optimization",
	"performance",
	"responsive",
	"component",
	"scaling",
	"leadership",
	"deployment",
	"collaboration",
	"research",
	"analysis",
	"design",
}

// Proficiency words looked up around skill occurrences.
var (
	expertTierWords       = []string{"expert", "advanced", "proficient", "extensive", "mastery"}
	intermediateTierWords = []string{"intermediate", "experienced", "familiar", "working knowledge", "good"}
)

// Job-title nouns that anchor an experience role phrase.
var jobTitleNouns = []string{
	"Intern", "Engineer", "Developer", "Analyst", "Manager", "Lead",
	"Consultant", "Designer", "Architect", "Scientist", "Trainee",
	"Associate", "Administrator", "Specialist", "Researcher", "Contributor",
}

// Role words that earn the seniority bonus.
var seniorityWords = []string{"senior", "sr.", "lead", "manager", "principal", "head"}

// Verbs that mark a highlight as an achievement.
var achievementVerbs = []string{
	"increased", "reduced", "improved", "achieved", "led", "launched", "optimized", "saved",
}
