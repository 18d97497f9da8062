package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/podcast-digest/internal/logger"
)

const defaultDebounce = 2 * time.Second

// New creates a Watcher on dir. Events are coalesced for debounce before the
// handler runs; at most maxConcurrent handlers run at once.
func New(dir string, handler EventHandler, log logger.Logger, maxConcurrent int, debounce time.Duration) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	return &implWatcher{
		dir:           dir,
		handler:       handler,
		logger:        log,
		watcher:       watcher,
		maxConcurrent: maxConcurrent,
		debounce:      debounce,
		semaphore:     make(chan struct{}, maxConcurrent),
	}, nil
}
