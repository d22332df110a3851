package cli

import (
	"context"

	"placementpulse/internal/ai"
	"placementpulse/internal/analysis"
	"placementpulse/internal/common"
	"placementpulse/internal/config"
	"placementpulse/internal/errors"
	"placementpulse/internal/extract"
	"placementpulse/internal/formatters"
	"placementpulse/internal/observability"
	"placementpulse/internal/predictor"

	"github.com/spf13/cobra"
)

// newExtractor builds the text extractor, with OCR when it is configured.
// metrics may be nil.
func newExtractor(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *errors.Logger) (*extract.Extractor, error) {
	opts := []extract.Option{extract.WithLogger(logger)}

	if cfg.OCRAvailable() {
		t, err := ai.NewTranscriber(ctx, cfg.OCR, logger)
		if err != nil {
			return nil, err
		}
		if t != nil {
			opts = append(opts, extract.WithTranscriber(ai.Instrument(t, metrics.RecordOCR)))
		}
	}

	return extract.New(ctx, opts...)
}

func newAnalyzer(extractor analysis.TextExtractor, cfg *config.Config, logger *errors.Logger) *analysis.Analyzer {
	return analysis.New(extractor,
		analysis.WithLogger(logger),
		analysis.WithTopSkills(cfg.Analysis.TopSkills),
		analysis.WithRawTextLimit(cfg.Analysis.RawTextLimit),
		analysis.WithLocations(cfg.Analysis.PreferredLocations),
	)
}

func newPredictor(cfg *config.Config, logger *errors.Logger) *predictor.Predictor {
	return predictor.New(
		predictor.WithConfig(cfg.Predictor),
		predictor.WithLogger(logger),
	)
}

// datasetLoader chains the configured CSV file and PostgreSQL table in
// front of the built-in records. An unreachable database is logged and
// skipped. The returned cleanup releases the database pool.
func datasetLoader(ctx context.Context, cfg *config.Config, logger *errors.Logger) (predictor.Loader, func()) {
	var loaders []predictor.Loader
	cleanup := func() {}

	if path := cfg.Predictor.DatasetFile; path != "" {
		loaders = append(loaders, predictor.CSVLoader{Path: path})
	}

	if db := cfg.Predictor.Database; db.URL != "" {
		pg, err := predictor.OpenPostgres(ctx, db.URL, db.Table)
		if err != nil {
			logger.LogError(err, "Placement database unavailable, continuing without it")
		} else {
			loaders = append(loaders, pg)
			cleanup = pg.Close
		}
	}

	return predictor.ChainLoader{Loaders: loaders, Logger: logger}, cleanup
}

// addDatasetFlags registers the training data overrides shared by predict
// and train.
func addDatasetFlags(cmd *cobra.Command, opts *datasetOptions) {
	cmd.Flags().StringVar(&opts.file, "dataset", "", "Placement records CSV file (overrides config)")
	cmd.Flags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL URL holding placement records (overrides config)")
	cmd.Flags().StringVar(&opts.table, "database-table", "", "Table holding placement records (overrides config)")
}

type datasetOptions struct {
	file        string
	databaseURL string
	table       string
}

// apply copies the flags the user set onto cfg.
func (o datasetOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("dataset") {
		cfg.Predictor.DatasetFile = o.file
	}
	if cmd.Flags().Changed("database-url") {
		cfg.Predictor.Database.URL = o.databaseURL
	}
	if cmd.Flags().Changed("database-table") {
		cfg.Predictor.Database.Table = o.table
	}
}

// addOutputFlags registers -o and --format with shell completion for the
// configured formats.
func addOutputFlags(cmd *cobra.Command, out *common.CommandConfig) {
	cmd.Flags().StringVarP(&out.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&out.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		if len(cfg.App.SupportedFormats) > 0 {
			return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
		}
		return formatters.NewRegistry().Formats(), cobra.ShellCompDirectiveNoFileComp
	})
}

// prepareOutput applies the default format and validates the result.
func prepareOutput(cfg *config.Config, out *common.CommandConfig) error {
	if out.OutputFormat == "" {
		out.OutputFormat = cfg.App.DefaultFormat
	}
	out.SupportedFormats = cfg.App.SupportedFormats
	return common.ValidateOutputFormat(out.OutputFormat, out.SupportedFormats)
}
