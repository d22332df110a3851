package predictor

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"placementpulse/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceDelay collapses bursts of file events into one retrain.
const DefaultDebounceDelay = time.Second

// DatasetWatcher watches the CSV dataset and calls onChange, debounced,
// when the file is written, created or replaced.
type DatasetWatcher struct {
	mu sync.Mutex

	path    string
	modTime time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan    chan struct{}
	triggerChan chan struct{}
	done        chan struct{}

	onChange func()
	logger   *errors.Logger

	running bool
}

// NewDatasetWatcher creates a watcher for path.
func NewDatasetWatcher(path string, debounceDelay time.Duration, onChange func(), logger *errors.Logger) *DatasetWatcher {
	if debounceDelay <= 0 {
		debounceDelay = DefaultDebounceDelay
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &DatasetWatcher{
		path:          path,
		debounceDelay: debounceDelay,
		onChange:      onChange,
		logger:        logger,
	}
}

// Start begins watching. The dataset's directory is watched so atomic
// replacements (write to temp, rename) are seen.
func (w *DatasetWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("dataset watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	if stat, err := os.Stat(w.path); err == nil {
		w.modTime = stat.ModTime()
	}

	w.fsWatcher = watcher
	w.stopChan = make(chan struct{})
	w.triggerChan = make(chan struct{}, 1)
	w.done = make(chan struct{})
	w.running = true
	go w.watchLoop(watcher, w.stopChan, w.triggerChan, w.done)

	w.logger.Info("Dataset watcher started", "file", w.path, "debounce_delay", w.debounceDelay)
	return nil
}

// Stop stops the watcher and waits for its loop to exit. A pending
// debounced change is discarded.
func (w *DatasetWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	err := w.fsWatcher.Close()
	w.running = false
	done := w.done
	w.mu.Unlock()

	<-done
	if err != nil {
		w.logger.LogError(err, "Failed to close dataset watcher")
		return err
	}
	w.logger.Info("Dataset watcher stopped")
	return nil
}

// IsRunning reports whether the watcher is active.
func (w *DatasetWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *DatasetWatcher) watchLoop(watcher *fsnotify.Watcher, stop, trigger, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.schedule(trigger)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.LogError(err, "Dataset watcher error")
		case <-trigger:
			if w.changed() {
				w.logger.Info("Dataset changed, retraining", "file", w.path)
				w.onChange()
			}
		case <-stop:
			return
		}
	}
}

func (w *DatasetWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// changed reports whether the file's modification time moved since the
// last accepted change. A missing file is not a change.
func (w *DatasetWatcher) changed() bool {
	stat, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if stat.ModTime().Equal(w.modTime) {
		return false
	}
	w.modTime = stat.ModTime()
	return true
}

func (w *DatasetWatcher) schedule(trigger chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
}
