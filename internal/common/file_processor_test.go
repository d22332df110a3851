package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"placementpulse/internal/errors"
	"placementpulse/internal/extract"
	"placementpulse/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestReadDocument(t *testing.T) {
	fp := NewFileProcessor(nil)

	tests := []struct {
		name      string
		file      string
		data      []byte
		maxSize   int64
		mediaType string
		code      string
	}{
		{name: "text by extension", file: "resume.txt", data: []byte("Skills: Go"), maxSize: 1024, mediaType: extract.MediaTypeText},
		{name: "pdf by extension", file: "resume.PDF", data: []byte("%PDF-1.4"), maxSize: 1024, mediaType: extract.MediaTypePDF},
		{name: "sniffed png", file: "scan", data: []byte("\x89PNG\r\n\x1a\n0000"), maxSize: 1024, mediaType: "image/png"},
		{name: "too large", file: "resume.txt", data: bytes.Repeat([]byte("a"), 20), maxSize: 10, code: errors.ErrCodeFileTooLarge},
		{name: "empty", file: "resume.txt", data: nil, maxSize: 10, code: errors.ErrCodeInvalidRequest},
		{name: "unsupported", file: "resume.zip", data: []byte("PK\x03\x04zipdata"), maxSize: 1024, code: errors.ErrCodeUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := fp.ReadDocument(writeTemp(t, tt.file, tt.data), tt.maxSize)
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.file, doc.Name)
			assert.Equal(t, tt.mediaType, doc.MediaType)
			assert.Equal(t, tt.data, doc.Data)
		})
	}
}

func TestReadDocumentMissing(t *testing.T) {
	_, err := NewFileProcessor(nil).ReadDocument(filepath.Join(t.TempDir(), "nope.pdf"), 1024)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileNotFound))
}

func TestWriteFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "result.txt")
	require.NoError(t, NewFileProcessor(nil).WriteFile(path, "hello"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestOutputHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewOutputHandlerWithWriter(&buf, nil)

	status := types.ModelStatus{State: types.ModelUntrained}
	require.NoError(t, h.HandleOutput(status, CommandConfig{OutputFormat: "text"}))
	assert.Equal(t, "=== MODEL ===\nState: untrained\n\n", buf.String())

	err := h.HandleOutput(status, CommandConfig{OutputFormat: "yaml", SupportedFormats: []string{"json"}})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))

	path := filepath.Join(t.TempDir(), "status.json")
	require.NoError(t, h.HandleOutput(status, CommandConfig{OutputFormat: "json", OutputFile: path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state": "untrained"`)
}

func TestRunCommandSkipsOperationOnBadFormat(t *testing.T) {
	called := false
	err := RunCommand(context.Background(), nil,
		CommandConfig{OutputFormat: "xml", SupportedFormats: []string{"json"}}, "status",
		func(context.Context) (types.ModelStatus, error) {
			called = true
			return types.ModelStatus{}, nil
		})
	require.Error(t, err)
	assert.False(t, called)
}

func TestRunCommandPropagatesError(t *testing.T) {
	want := errors.NewModelError(errors.ErrCodeModelNotReady, "not ready", nil)
	err := RunCommand(context.Background(), nil, CommandConfig{OutputFormat: "json"}, "predict",
		func(context.Context) (types.PackagePrediction, error) {
			return types.PackagePrediction{}, want
		})
	assert.Same(t, want, err)
}
