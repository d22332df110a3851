package types

import (
	"fmt"
	"math"
	"time"
)

// SkillLevel is an ordinal proficiency level assigned to a detected skill.
type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelAdvanced     SkillLevel = "advanced"
	LevelExpert       SkillLevel = "expert"
)

// Rank returns the ordinal position of the level, beginner being 0.
func (l SkillLevel) Rank() int {
	switch l {
	case LevelExpert:
		return 3
	case LevelAdvanced:
		return 2
	case LevelIntermediate:
		return 1
	default:
		return 0
	}
}

// Sentinel values substituted when a field could not be extracted.
const (
	DegreeNotDetected      = "Degree not detected"
	InstitutionNotDetected = "Institution not detected"
	YearNotDetected        = "Year not detected"
	ScoreNotDetected       = "Score not detected"
	RoleNotDetected        = "Role not detected"
	CompanyNotDetected     = "Company not detected"
	DurationNotDetected    = "Duration not detected"
	HighlightsNotDetected  = "Highlights not detected"
)

// Result sources.
const (
	SourceAnalysis = "analysis"
	SourceFallback = "fallback"
)

// SkillEntry is a vocabulary skill found in the resume text
type SkillEntry struct {
	Skill     string     `json:"skill"`
	Level     SkillLevel `json:"level"`
	Relevance int        `json:"relevance"` // 0-100
}

// EducationEntry is one detected education record
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
	Score       string `json:"score"`
}

// NewEducationEntry returns an entry with every field set to its sentinel.
func NewEducationEntry() EducationEntry {
	return EducationEntry{
		Degree:      DegreeNotDetected,
		Institution: InstitutionNotDetected,
		Year:        YearNotDetected,
		Score:       ScoreNotDetected,
	}
}

func (e EducationEntry) HasDegree() bool      { return e.Degree != "" && e.Degree != DegreeNotDetected }
func (e EducationEntry) HasInstitution() bool { return e.Institution != "" && e.Institution != InstitutionNotDetected }
func (e EducationEntry) HasYear() bool        { return e.Year != "" && e.Year != YearNotDetected }
func (e EducationEntry) HasScore() bool       { return e.Score != "" && e.Score != ScoreNotDetected }

// ExperienceEntry is one detected work experience record
type ExperienceEntry struct {
	Role       string   `json:"role"`
	Company    string   `json:"company"`
	Duration   string   `json:"duration"`
	Highlights []string `json:"highlights"`
}

// NewExperienceEntry returns an entry with every field set to its sentinel.
func NewExperienceEntry() ExperienceEntry {
	return ExperienceEntry{
		Role:       RoleNotDetected,
		Company:    CompanyNotDetected,
		Duration:   DurationNotDetected,
		Highlights: []string{HighlightsNotDetected},
	}
}

func (e ExperienceEntry) HasRole() bool     { return e.Role != "" && e.Role != RoleNotDetected }
func (e ExperienceEntry) HasCompany() bool  { return e.Company != "" && e.Company != CompanyNotDetected }
func (e ExperienceEntry) HasDuration() bool { return e.Duration != "" && e.Duration != DurationNotDetected }

// RealHighlights returns the highlights excluding the sentinel.
func (e ExperienceEntry) RealHighlights() []string {
	out := make([]string, 0, len(e.Highlights))
	for _, h := range e.Highlights {
		if h != "" && h != HighlightsNotDetected {
			out = append(out, h)
		}
	}
	return out
}

// ScoreBreakdown records the points each scoring component contributed
type ScoreBreakdown struct {
	Skills         float64 `json:"skillsScore"`
	Education      float64 `json:"educationScore"`
	Experience     float64 `json:"experienceScore"`
	Keywords       float64 `json:"keywordsScore"`
	Extra          float64 `json:"extraScore"`
	Certifications int     `json:"certCount"`
	Projects       int     `json:"projectCount"`
}

// ExtractionInfo describes how the resume text was obtained
type ExtractionInfo struct {
	MediaType   string `json:"mediaType"`
	Method      string `json:"method"`
	OK          bool   `json:"ok"`
	Placeholder bool   `json:"placeholder,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Pages       int    `json:"pages,omitempty"`
}

// AnalysisResult is the complete output of a resume analysis
type AnalysisResult struct {
	TopSkills          []SkillEntry      `json:"topSkills"`
	KeywordMatches     map[string]int    `json:"keywordMatches"`
	Education          []EducationEntry  `json:"education"`
	Experience         []ExperienceEntry `json:"experience"`
	OverallScore       int               `json:"overallScore"` // 0-100
	SuggestedJobTitles []string          `json:"suggestedJobTitles,omitempty"`
	PreferredLocations []string          `json:"preferredLocations,omitempty"`
	Suggestions        []string          `json:"suggestions,omitempty"`
	RawText            string            `json:"rawText,omitempty"`

	Source         string          `json:"source"`
	FallbackReason string          `json:"fallbackReason,omitempty"`
	Extraction     *ExtractionInfo `json:"extraction,omitempty"`
	Breakdown      *ScoreBreakdown `json:"breakdown,omitempty"`
}

// IsFallback reports whether the result is the substituted fallback analysis.
func (r AnalysisResult) IsFallback() bool {
	return r.Source == SourceFallback
}

// StudentProfile holds the features the package predictor consumes
type StudentProfile struct {
	CGPA            float64 `json:"cgpa"`
	HighSchoolScore float64 `json:"highSchoolScore"`
	SSCScore        float64 `json:"sscScore"`
	WebDev          float64 `json:"webDev"`
	MachineLearning float64 `json:"machineLearning"`
	CloudComputing  float64 `json:"cloudComputing"`
	Database        float64 `json:"database"`
	OtherSkills     float64 `json:"otherSkills"`
	DSACP           float64 `json:"dsaCP"`
	TechInternships float64 `json:"techInternships"`
	Hackathons      float64 `json:"hackathons"`
	Projects        float64 `json:"projects"`
}

// FeatureCount is the number of model input features.
const FeatureCount = 12

// Features returns the profile in model input order.
func (p StudentProfile) Features() []float64 {
	return []float64{
		p.CGPA,
		p.HighSchoolScore,
		p.SSCScore,
		p.WebDev,
		p.MachineLearning,
		p.CloudComputing,
		p.Database,
		p.OtherSkills,
		p.DSACP,
		p.TechInternships,
		p.Hackathons,
		p.Projects,
	}
}

// featureNames labels Features() positions in error messages.
var featureNames = [FeatureCount]string{
	"cgpa", "highSchoolScore", "sscScore", "webDev", "machineLearning", "cloudComputing",
	"database", "otherSkills", "dsaCP", "techInternships", "hackathons", "projects",
}

// Validate rejects negative and non-finite feature values.
func (p StudentProfile) Validate() error {
	for i, v := range p.Features() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", featureNames[i])
		}
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %g", featureNames[i], v)
		}
	}
	return nil
}

// PlacementRecord is one historical placement row used for training
type PlacementRecord struct {
	StudentProfile
	PackageLPA float64 `json:"packageLPA"`
}

// ModelState is the lifecycle state of the package predictor
type ModelState string

const (
	ModelUntrained ModelState = "untrained"
	ModelTraining  ModelState = "training"
	ModelReady     ModelState = "ready"
	ModelFailed    ModelState = "failed"
)

// ModelStatus is a snapshot of the predictor state
type ModelStatus struct {
	State          ModelState `json:"state"`
	Error          string     `json:"error,omitempty"`
	TrainedOn      int        `json:"trainedOn"`
	TrainedAt      time.Time  `json:"trainedAt,omitzero"`
	TrainingLoss   float64    `json:"trainingLoss,omitempty"`
	ValidationLoss float64    `json:"validationLoss,omitempty"`
	DatasetSource  string     `json:"datasetSource,omitempty"`
}

// PackagePrediction is the predicted salary package for a student
type PackagePrediction struct {
	PackageLPA float64        `json:"packageLPA"`
	Profile    StudentProfile `json:"profile"`
	Model      ModelStatus    `json:"model"`
}
