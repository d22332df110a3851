package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"placementpulse/internal/config"
	"placementpulse/internal/errors"
)

// apiKeysField is the KVv2 key holding the comma-separated API keys
const apiKeysField = "keys"

// SecretReader reads KVv2 secrets. *config.VaultClient implements it.
type SecretReader interface {
	GetSecretV2(ctx context.Context, path string) (*config.VaultSecret, error)
}

// VaultWatcher polls the API keys secret in Vault and hands every new
// version to onChange.
type VaultWatcher struct {
	mu sync.RWMutex

	client       SecretReader
	secretPath   string
	pollInterval time.Duration
	onChange     func(keys []string)
	logger       *errors.Logger

	stop        chan struct{}
	done        chan struct{}
	running     bool
	lastVersion int64
	lastError   string
}

// NewVaultWatcher creates a new VaultWatcher
func NewVaultWatcher(client SecretReader, secretPath string, pollInterval time.Duration, onChange func(keys []string), logger *errors.Logger) *VaultWatcher {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &VaultWatcher{
		client:       client,
		secretPath:   secretPath,
		pollInterval: pollInterval,
		onChange:     onChange,
		logger:       logger,
	}
}

// Start records the current secret version and begins polling until ctx is
// done or Stop is called.
func (vw *VaultWatcher) Start(ctx context.Context) error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if vw.running {
		return fmt.Errorf("vault watcher is already running")
	}
	if vw.pollInterval <= 0 {
		return fmt.Errorf("vault poll interval must be positive, got %s", vw.pollInterval)
	}

	// Keys at the current version were applied at startup.
	if secret, err := vw.client.GetSecretV2(ctx, vw.secretPath); err == nil {
		vw.lastVersion = secret.Version
	}

	vw.stop = make(chan struct{})
	vw.done = make(chan struct{})
	vw.running = true
	go vw.pollLoop(ctx, vw.stop, vw.done)

	vw.logger.Info("Vault watcher started",
		"secret_path", vw.secretPath,
		"poll_interval", vw.pollInterval,
		"version", vw.lastVersion)
	return nil
}

// Stop stops polling and waits for the loop to exit
func (vw *VaultWatcher) Stop() {
	vw.mu.Lock()
	if !vw.running {
		vw.mu.Unlock()
		return
	}
	close(vw.stop)
	done := vw.done
	vw.running = false
	vw.mu.Unlock()

	<-done
	vw.logger.Info("Vault watcher stopped")
}

func (vw *VaultWatcher) pollLoop(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(vw.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			vw.poll(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// poll checks the secret once and reports a newer version's keys
func (vw *VaultWatcher) poll(ctx context.Context) {
	keys, changed, err := vw.checkForUpdates(ctx)

	vw.mu.Lock()
	if err != nil {
		vw.lastError = err.Error()
	} else {
		vw.lastError = ""
	}
	vw.mu.Unlock()

	if err != nil {
		vw.logger.LogError(err, "Failed to check Vault for API key updates")
		return
	}
	if changed {
		vw.logger.Info("API keys secret changed in Vault", "version", vw.version())
		vw.onChange(keys)
	}
}

// checkForUpdates reads the secret and returns its keys when the version
// moved past the last one seen.
func (vw *VaultWatcher) checkForUpdates(ctx context.Context) ([]string, bool, error) {
	secret, err := vw.client.GetSecretV2(ctx, vw.secretPath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read secret: %w", err)
	}

	vw.mu.Lock()
	defer vw.mu.Unlock()
	if secret.Version <= vw.lastVersion {
		return nil, false, nil
	}

	raw, ok := secret.Data[apiKeysField].(string)
	if !ok {
		return nil, false, fmt.Errorf("secret %s has no string field %q", vw.secretPath, apiKeysField)
	}
	vw.lastVersion = secret.Version
	return splitKeys(raw), true, nil
}

func (vw *VaultWatcher) version() int64 {
	vw.mu.RLock()
	defer vw.mu.RUnlock()
	return vw.lastVersion
}

// Status returns the watcher state for health reporting
func (vw *VaultWatcher) Status() map[string]any {
	vw.mu.RLock()
	defer vw.mu.RUnlock()
	status := map[string]any{
		"running":       vw.running,
		"poll_interval": vw.pollInterval.String(),
		"secret_path":   vw.secretPath,
		"last_version":  vw.lastVersion,
	}
	if vw.lastError != "" {
		status["last_error"] = vw.lastError
	}
	return status
}

func splitKeys(raw string) []string {
	var keys []string
	for key := range strings.SplitSeq(raw, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// WatchAPIKeys polls secretPath in Vault and rotates the accepted API keys
// whenever a new version appears. The watcher stops on Close.
func (s *Server) WatchAPIKeys(ctx context.Context, client SecretReader, secretPath string, pollInterval time.Duration) error {
	vw := NewVaultWatcher(client, secretPath, pollInterval, s.SetAPIKeys, s.Logger)
	if err := vw.Start(ctx); err != nil {
		return err
	}
	s.vaultWatcher = vw
	return nil
}
