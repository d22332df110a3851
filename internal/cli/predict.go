package cli

import (
	"context"
	"fmt"

	"placementpulse/internal/common"
	"placementpulse/internal/errors"
	"placementpulse/internal/types"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the placement package for a student profile",
	Long: `Train the package model on the configured placement records, then
predict the expected package (LPA) for the profile given by flags.

Training data comes from --dataset, then --database-url, then the built-in
records. Unset profile flags count as 0.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(getConfigFromContext(cmd.Context()), &predictConfig)
	},
	RunE: runPredict,
}

var (
	predictConfig  common.CommandConfig
	predictDataset datasetOptions
	predictProfile types.StudentProfile
)

func init() {
	addProfileFlags(predictCmd.Flags(), &predictProfile)
	addDatasetFlags(predictCmd, &predictDataset)
	addOutputFlags(predictCmd, &predictConfig)
}

// addProfileFlags binds one flag per model feature.
func addProfileFlags(fs *pflag.FlagSet, p *types.StudentProfile) {
	fs.Float64Var(&p.CGPA, "cgpa", 0, "Cumulative GPA")
	fs.Float64Var(&p.HighSchoolScore, "high-school-score", 0, "Higher secondary (12th) score")
	fs.Float64Var(&p.SSCScore, "ssc-score", 0, "Secondary school (10th) score")
	fs.Float64Var(&p.WebDev, "web-dev", 0, "Web development skill rating")
	fs.Float64Var(&p.MachineLearning, "machine-learning", 0, "Machine learning skill rating")
	fs.Float64Var(&p.CloudComputing, "cloud-computing", 0, "Cloud computing skill rating")
	fs.Float64Var(&p.Database, "database", 0, "Database skill rating")
	fs.Float64Var(&p.OtherSkills, "other-skills", 0, "Other skills rating")
	fs.Float64Var(&p.DSACP, "dsa-cp", 0, "DSA and competitive programming rating")
	fs.Float64Var(&p.TechInternships, "tech-internships", 0, "Number of tech internships")
	fs.Float64Var(&p.Hackathons, "hackathons", 0, "Number of hackathons")
	fs.Float64Var(&p.Projects, "projects", 0, "Number of projects")
}

func runPredict(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	if err := predictProfile.Validate(); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, err.Error(), nil)
	}

	predictDataset.apply(cmd, cfg)
	loader, cleanup := datasetLoader(ctx, cfg, logger)
	defer cleanup()

	p := newPredictor(cfg, logger)

	err := common.RunCommand(ctx, logger, predictConfig, "predict",
		func(ctx context.Context) (types.PackagePrediction, error) {
			if _, err := p.Train(ctx, loader); err != nil {
				return types.PackagePrediction{}, err
			}
			return p.Predict(predictProfile)
		})
	if err != nil {
		return fmt.Errorf("failed to predict package: %w", err)
	}
	return nil
}
