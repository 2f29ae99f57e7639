package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/edit-flow/internal/logger"
)

const defaultSettle = 500 * time.Millisecond

// New creates a Watcher on inputDir. At most maxConcurrent handlers run at
// once. settle is the polling interval used to decide a new file has been
// fully written; zero means 500ms.
func New(inputDir string, handler EventHandler, log logger.Logger, maxConcurrent int, settle time.Duration) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	// Default to 2 concurrent if not specified
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	if settle <= 0 {
		settle = defaultSettle
	}

	return &implWatcher{
		inputDir:      inputDir,
		handler:       handler,
		logger:        log,
		watcher:       watcher,
		maxConcurrent: maxConcurrent,
		settle:        settle,
		semaphore:     make(chan struct{}, maxConcurrent),
		active:        make(map[string]bool),
	}, nil
}
