package cli

import (
	"context"
	"fmt"

	"placementpulse/internal/common"
	"placementpulse/internal/types"

	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the package model and report its status",
	Long: `Train the package model on the configured placement records and print
the resulting status: record count, data source, final losses and the time
of training. Useful to check a dataset before serving it.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(getConfigFromContext(cmd.Context()), &trainConfig)
	},
	RunE: runTrain,
}

var (
	trainConfig  common.CommandConfig
	trainDataset datasetOptions
)

func init() {
	addDatasetFlags(trainCmd, &trainDataset)
	addOutputFlags(trainCmd, &trainConfig)
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	trainDataset.apply(cmd, cfg)
	loader, cleanup := datasetLoader(ctx, cfg, logger)
	defer cleanup()

	p := newPredictor(cfg, logger)

	err := common.RunCommand(ctx, logger, trainConfig, "train",
		func(ctx context.Context) (types.ModelStatus, error) {
			return p.Train(ctx, loader)
		})
	if err != nil {
		return fmt.Errorf("failed to train package model: %w", err)
	}
	return nil
}
