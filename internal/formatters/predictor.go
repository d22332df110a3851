package formatters

import (
	"fmt"
	"strings"
	"time"

	"placementpulse/internal/types"
)

// PredictionTextFormatter renders a PackagePrediction as plain text
type PredictionTextFormatter struct{}

func (*PredictionTextFormatter) SupportedType() string { return "PackagePrediction" }

func (*PredictionTextFormatter) Format(data any) (string, error) {
	p, err := deref[types.PackagePrediction](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.WriteString("=== PACKAGE PREDICTION ===\n")
	fmt.Fprintf(&out, "Predicted Package: %.2f LPA\n\n", p.PackageLPA)
	out.WriteString("=== PROFILE ===\n")
	for _, f := range profileFields(p.Profile) {
		fmt.Fprintf(&out, "%s: %g\n", f.name, f.value)
	}
	out.WriteString("\n")
	writeStatusText(&out, p.Model)
	return out.String(), nil
}

// PredictionMarkdownFormatter renders a PackagePrediction as Markdown
type PredictionMarkdownFormatter struct{}

func (*PredictionMarkdownFormatter) SupportedType() string { return "PackagePrediction" }

func (*PredictionMarkdownFormatter) Format(data any) (string, error) {
	p, err := deref[types.PackagePrediction](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.WriteString("# Package Prediction\n\n")
	fmt.Fprintf(&out, "**Predicted Package:** %.2f LPA\n\n", p.PackageLPA)
	out.WriteString("## Profile\n\n| Feature | Value |\n|---|---|\n")
	for _, f := range profileFields(p.Profile) {
		fmt.Fprintf(&out, "| %s | %g |\n", f.name, f.value)
	}
	out.WriteString("\n")
	writeStatusMarkdown(&out, p.Model)
	return out.String(), nil
}

// StatusTextFormatter renders a ModelStatus as plain text
type StatusTextFormatter struct{}

func (*StatusTextFormatter) SupportedType() string { return "ModelStatus" }

func (*StatusTextFormatter) Format(data any) (string, error) {
	s, err := deref[types.ModelStatus](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	writeStatusText(&out, s)
	return out.String(), nil
}

// StatusMarkdownFormatter renders a ModelStatus as Markdown
type StatusMarkdownFormatter struct{}

func (*StatusMarkdownFormatter) SupportedType() string { return "ModelStatus" }

func (*StatusMarkdownFormatter) Format(data any) (string, error) {
	s, err := deref[types.ModelStatus](data)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	writeStatusMarkdown(&out, s)
	return out.String(), nil
}

func writeStatusText(out *strings.Builder, s types.ModelStatus) {
	out.WriteString("=== MODEL ===\n")
	fmt.Fprintf(out, "State: %s\n", s.State)
	if s.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", s.Error)
	}
	if s.TrainedOn > 0 {
		fmt.Fprintf(out, "Trained On: %d records (%s)\n", s.TrainedOn, s.DatasetSource)
		fmt.Fprintf(out, "Trained At: %s\n", s.TrainedAt.Format(time.RFC3339))
		fmt.Fprintf(out, "Loss: %.4f (validation %.4f)\n", s.TrainingLoss, s.ValidationLoss)
	}
}

func writeStatusMarkdown(out *strings.Builder, s types.ModelStatus) {
	out.WriteString("## Model\n\n")
	fmt.Fprintf(out, "- **State:** %s\n", s.State)
	if s.Error != "" {
		fmt.Fprintf(out, "- **Error:** %s\n", s.Error)
	}
	if s.TrainedOn > 0 {
		fmt.Fprintf(out, "- **Trained On:** %d records (%s)\n", s.TrainedOn, s.DatasetSource)
		fmt.Fprintf(out, "- **Trained At:** %s\n", s.TrainedAt.Format(time.RFC3339))
		fmt.Fprintf(out, "- **Loss:** %.4f (validation %.4f)\n", s.TrainingLoss, s.ValidationLoss)
	}
}

type profileField struct {
	name  string
	value float64
}

func profileFields(p types.StudentProfile) []profileField {
	return []profileField{
		{"CGPA", p.CGPA},
		{"High School Score", p.HighSchoolScore},
		{"SSC Score", p.SSCScore},
		{"Web Development", p.WebDev},
		{"Machine Learning", p.MachineLearning},
		{"Cloud Computing", p.CloudComputing},
		{"Database", p.Database},
		{"Other Skills", p.OtherSkills},
		{"DSA / CP", p.DSACP},
		{"Tech Internships", p.TechInternships},
		{"Hackathons", p.Hackathons},
		{"Projects", p.Projects},
	}
}
