package cli

import (
	"context"
	"fmt"
	"time"

	"placementpulse/internal/config"
	"placementpulse/internal/errors"
	"placementpulse/internal/observability"
	"placementpulse/internal/predictor"
	"placementpulse/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for resume analysis and package prediction",
	Long: `Start an HTTP server that provides REST API endpoints for resume analysis
and placement package prediction.

Available endpoints:
- POST /analyze: Analyze a resume (multipart field "resume" or raw body)
- POST /predict: Predict the package for a JSON student profile
- POST /predictor/train: Retrain the package model in the background
- GET /predictor/status: Package model status
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveDataset datasetOptions

func init() {
	addServeFlags(serveCmd)
	addDatasetFlags(serveCmd, &serveDataset)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().String("host", "", "Host to bind to (default from config)")
	cmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	cmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	cmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	cmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
}

// applyServeFlags copies the server flags the user set onto cfg.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	overrides := map[string]*string{
		"port":      &cfg.Server.Port,
		"host":      &cfg.Server.Host,
		"tls-mode":  &cfg.Server.TLS.Mode,
		"cert-file": &cfg.Server.TLS.CertFile,
		"key-file":  &cfg.Server.TLS.KeyFile,
		"ca-file":   &cfg.Server.TLS.CAFile,
	}
	for name, target := range overrides {
		if cmd.Flags().Changed(name) {
			*target, _ = cmd.Flags().GetString(name)
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	applyServeFlags(cmd, cfg)
	serveDataset.apply(cmd, cfg)

	// Validate TLS configuration after applying overrides
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewManager(ctx, observability.SettingsFromConfig(cfg, Version), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	extractor, err := newExtractor(ctx, cfg, om.Metrics(), logger)
	if err != nil {
		return fmt.Errorf("failed to create text extractor: %w", err)
	}
	loader, cleanup := datasetLoader(ctx, cfg, logger)
	defer cleanup()

	srv := server.NewServer(server.ConfigFromApp(cfg, Version), server.Dependencies{
		Analyzer:      newAnalyzer(extractor, cfg, logger),
		Predictor:     newPredictor(cfg, logger),
		Dataset:       loader,
		OCR:           extractor,
		Observability: om,
	}, logger)

	if cfg.Predictor.TrainOnStart {
		if _, err := srv.StartTraining(); err != nil {
			logger.LogError(err, "Failed to start initial training")
		}
	}

	if stop, err := watchDataset(cfg, srv, logger); err != nil {
		logger.LogError(err, "Dataset watcher not started")
	} else {
		defer stop()
	}

	if err := watchVaultKeys(ctx, cfg, srv, logger); err != nil {
		logger.LogError(err, "Vault API key watcher not started")
	}

	return srv.Start(ctx)
}

// watchDataset retrains whenever the configured CSV dataset changes.
func watchDataset(cfg *config.Config, srv *server.Server, logger *errors.Logger) (func(), error) {
	path := cfg.Predictor.DatasetFile
	if !cfg.Predictor.WatchDataset || path == "" {
		return func() {}, nil
	}

	w := predictor.NewDatasetWatcher(path, cfg.Predictor.DebounceDelay, func() {
		if _, err := srv.StartTraining(); err != nil {
			logger.Warn("Dataset changed but retraining was not started", "error", err)
		}
	}, logger)
	if err := w.Start(); err != nil {
		return nil, err
	}
	return func() {
		if err := w.Stop(); err != nil {
			logger.LogError(err, "Failed to stop dataset watcher")
		}
	}, nil
}

// watchVaultKeys rotates the API keys when their Vault secret changes.
func watchVaultKeys(ctx context.Context, cfg *config.Config, srv *server.Server, logger *errors.Logger) error {
	v := cfg.Vault
	if !v.Enabled || v.PollInterval <= 0 || v.Secrets.APIKeys == "" {
		return nil
	}
	client, err := config.NewVaultClient(ctx, v, logger)
	if err != nil {
		return err
	}
	return srv.WatchAPIKeys(ctx, client, v.Secrets.APIKeys, v.PollInterval)
}
