package store

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay coalesces the bursts of writes a compaction produces.
const DefaultSettleDelay = 50 * time.Millisecond

// FileWatcher watches a history file and reports writes to it. A burst of
// writes within the settle delay is reported once.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	onChange func()
	logger   *slog.Logger
	settle   time.Duration
	done     chan struct{}
	mu       sync.Mutex
	running  bool
	pending  *time.Timer
}

// NewFileWatcher creates a watcher that calls onChange whenever filePath is
// written or recreated.
func NewFileWatcher(filePath string, onChange func(), logger *slog.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FileWatcher{
		watcher:  watcher,
		filePath: filePath,
		onChange: onChange,
		logger:   logger,
		settle:   DefaultSettleDelay,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching the file for changes.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.running {
		return nil
	}

	// Watch the directory containing the file; compaction replaces it
	if err := fw.watcher.Add(filepath.Dir(fw.filePath)); err != nil {
		return err
	}
	fw.running = true

	go fw.watch()
	return nil
}

func (fw *FileWatcher) watch() {
	filename := filepath.Base(fw.filePath)

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fw.schedule()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", "error", err)

		case <-fw.done:
			return
		}
	}
}

// schedule arms or pushes back the pending change notification.
func (fw *FileWatcher) schedule() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.running {
		return
	}
	if fw.pending != nil {
		fw.pending.Stop()
	}
	fw.pending = time.AfterFunc(fw.settle, func() {
		fw.logger.Debug("history file changed", "file", fw.filePath)
		fw.onChange()
	})
}

// Stop stops the file watcher.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.running {
		return fw.watcher.Close()
	}

	fw.running = false
	if fw.pending != nil {
		fw.pending.Stop()
	}
	close(fw.done)
	return fw.watcher.Close()
}
