package predictor

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetWatcherDebouncesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "placements.csv")
	require.NoError(t, os.WriteFile(path, []byte("cgpa,packageLPA\n8,10\n"), 0o600))

	var calls atomic.Int32
	w := NewDatasetWatcher(path, 50*time.Millisecond, func() { calls.Add(1) }, nil)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	assert.True(t, w.IsRunning())
	assert.Error(t, w.Start())

	for i := range 3 {
		require.NoError(t, os.WriteFile(path, []byte("cgpa,packageLPA\n8,10\n9,12\n"), 0o600))
		future := time.Now().Add(time.Duration(i+1) * time.Minute)
		require.NoError(t, os.Chtimes(path, future, future))
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDatasetWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "placements.csv")
	require.NoError(t, os.WriteFile(path, []byte("cgpa,packageLPA\n"), 0o600))

	var calls atomic.Int32
	w := NewDatasetWatcher(path, 20*time.Millisecond, func() { calls.Add(1) }, nil)
	require.NoError(t, w.Start())
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestDatasetWatcherStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "placements.csv")
	w := NewDatasetWatcher(path, 0, func() {}, nil)
	assert.NoError(t, w.Stop())

	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
	assert.NoError(t, w.Stop())
}
