package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"placementpulse/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	secrets map[string]*api.Secret
	err     error
}

func (f *fakeReader) ReadWithContext(_ context.Context, path string) (*api.Secret, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.secrets[path], nil
}

func kv2(data map[string]any, version any) *api.Secret {
	return &api.Secret{Data: map[string]any{
		"data":     data,
		"metadata": map[string]any{"version": version},
	}}
}

func newTestVaultClient(reader secretReader) *VaultClient {
	return &VaultClient{reader: reader, logger: errors.NewNopLogger()}
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(42.0), expected: 42},
		{name: "string value", input: "42", expected: 42},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "secret/data/test")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetSecretV2(t *testing.T) {
	reader := &fakeReader{secrets: map[string]*api.Secret{
		"secret/data/ok":          kv2(map[string]any{"api_key": "abc"}, "3"),
		"secret/data/no-data":     {Data: map[string]any{"metadata": map[string]any{"version": 1}}},
		"secret/data/no-metadata": {Data: map[string]any{"data": map[string]any{}}},
	}}
	vc := newTestVaultClient(reader)
	ctx := context.Background()

	secret, err := vc.GetSecretV2(ctx, "secret/data/ok")
	require.NoError(t, err)
	assert.Equal(t, int64(3), secret.Version)
	assert.Equal(t, "abc", secret.Data["api_key"])

	_, err = vc.GetSecretV2(ctx, "secret/data/missing")
	assert.ErrorContains(t, err, "secret not found")

	_, err = vc.GetSecretV2(ctx, "secret/data/no-data")
	assert.ErrorContains(t, err, "missing 'data' field")

	_, err = vc.GetSecretV2(ctx, "secret/data/no-metadata")
	assert.ErrorContains(t, err, "missing 'metadata' field")

	var nilClient *VaultClient
	_, err = nilClient.GetSecretV2(ctx, "secret/data/ok")
	assert.EqualError(t, err, "vault client not initialized")
}

func TestGetStringSecrets(t *testing.T) {
	reader := &fakeReader{secrets: map[string]*api.Secret{
		"secret/data/keys": kv2(map[string]any{"keys": " k1, k2 ,,k3", "count": 3.0}, 1.0),
	}}
	vc := newTestVaultClient(reader)
	ctx := context.Background()

	keys, err := vc.GetStringSliceSecret(ctx, "secret/data/keys", "keys")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2", "k3"}, keys)

	_, err = vc.GetStringSecret(ctx, "secret/data/keys", "missing")
	assert.ErrorContains(t, err, "key 'missing' not found")

	_, err = vc.GetStringSecret(ctx, "secret/data/keys", "count")
	assert.ErrorContains(t, err, "is not a string")
}

func TestApplySecrets(t *testing.T) {
	reader := &fakeReader{secrets: map[string]*api.Secret{
		"secret/data/api":    kv2(map[string]any{"keys": "alpha,beta"}, 2),
		"secret/data/gemini": kv2(map[string]any{"api_key": "gemini-secret-key"}, 1),
		"secret/data/db":     kv2(map[string]any{"url": "postgres://u:p@db/placements"}, 1),
	}}
	cfg := &Config{
		Vault: VaultConfig{Secrets: VaultSecrets{
			APIKeys:     "secret/data/api",
			GeminiKey:   "secret/data/gemini",
			DatabaseURL: "secret/data/db",
		}},
		OCR: OCRConfig{APIKey: "from-env"},
	}

	require.NoError(t, applySecrets(context.Background(), newTestVaultClient(reader), cfg))
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Server.APIKeys)
	assert.Equal(t, "gemini-secret-key", cfg.OCR.APIKey)
	assert.Equal(t, "postgres://u:p@db/placements", cfg.Predictor.Database.URL)
}

func TestApplySecretsPropagatesReadErrors(t *testing.T) {
	reader := &fakeReader{err: fmt.Errorf("permission denied")}
	cfg := &Config{Vault: VaultConfig{Secrets: VaultSecrets{DatabaseURL: "secret/data/db"}}}

	err := applySecrets(context.Background(), newTestVaultClient(reader), cfg)
	assert.ErrorContains(t, err, "failed to load database URL from vault")
	assert.ErrorContains(t, err, "permission denied")
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := &Config{Vault: VaultConfig{Enabled: false}}
	assert.NoError(t, ApplyVaultSecrets(context.Background(), cfg, errors.NewNopLogger()))
}

func TestResolveVaultToken(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("  s.file-token\n"), 0600))

	token, err := resolveVaultToken(VaultConfig{Token: "s.inline"})
	require.NoError(t, err)
	assert.Equal(t, "s.inline", token)

	token, err = resolveVaultToken(VaultConfig{TokenFile: tokenFile})
	require.NoError(t, err)
	assert.Equal(t, "s.file-token", token)

	_, err = resolveVaultToken(VaultConfig{TokenFile: filepath.Join(dir, "missing")})
	assert.ErrorContains(t, err, "failed to read vault token file")

	_, err = resolveVaultToken(VaultConfig{})
	assert.EqualError(t, err, "vault token is required when vault is enabled")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "abcd****6789", maskSecret("abcdef0123456789"))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "", maskSecret(""))
}
