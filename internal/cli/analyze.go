package cli

import (
	"context"
	"fmt"

	"placementpulse/internal/common"
	"placementpulse/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Analyze a resume and score it",
	Long: `Analyze a resume file (PDF, Word, plain text, or an image when OCR is
configured) and report:
- Top skills with proficiency level and relevance
- Education and experience entries
- An overall score from 0 to 100
- Suggested job titles and improvement tips

A document whose text cannot be read still produces a result, marked as
a fallback with the reason.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareOutput(getConfigFromContext(cmd.Context()), &analyzeConfig)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig

func init() {
	addOutputFlags(analyzeCmd, &analyzeConfig)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	doc, err := common.NewFileProcessor(logger).ReadDocument(args[0], cfg.App.MaxFileSize)
	if err != nil {
		return err
	}

	extractor, err := newExtractor(ctx, cfg, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to create text extractor: %w", err)
	}
	analyzer := newAnalyzer(extractor, cfg, logger)

	logger.Info("Starting resume analysis",
		"file", doc.Name,
		"media_type", doc.MediaType,
		"bytes", len(doc.Data),
		"output_format", analyzeConfig.OutputFormat)

	err = common.RunCommand(ctx, logger, analyzeConfig, "analyze",
		func(ctx context.Context) (types.AnalysisResult, error) {
			result, err := analyzer.Analyze(ctx, doc)
			if err == nil && result.IsFallback() {
				logger.Warn("Resume could not be analyzed, reporting fallback result",
					"reason", result.FallbackReason)
			}
			return result, err
		})
	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}
