package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/podcast-digest/internal/logger"
)

type implWatcher struct {
	dir           string
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	debounce      time.Duration
	semaphore     chan struct{}
	wg            sync.WaitGroup
}

// Start monitors the transcript directory until ctx is done.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Transcript watcher started (max concurrent: %d, debounce: %s). Monitoring: %s",
		w.maxConcurrent, w.debounce, w.dir)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	var pending []string
	seen := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing runs to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "Transcript watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isTranscriptFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-transcript file: %s", event.Name)
				continue
			}
			w.logger.Debug(ctx, "Transcript changed: %s", event.Name)
			if !seen[event.Name] {
				seen[event.Name] = true
				pending = append(pending, event.Name)
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			paths := pending
			pending = nil
			clear(seen)
			for _, path := range paths {
				if err := w.dispatch(ctx, path); err != nil {
					return err
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// dispatch runs the handler for path once a semaphore slot is free.
func (w *implWatcher) dispatch(ctx context.Context, path string) error {
	w.logger.Info(ctx, "New transcript detected: %s", path)

	// Acquire semaphore slot (blocks if max concurrent reached)
	select {
	case w.semaphore <- struct{}{}:
	case <-ctx.Done():
		w.wg.Wait()
		return ctx.Err()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.semaphore }()

		if err := w.handler(ctx, path); err != nil {
			w.logger.Error(ctx, "Handler for %s failed: %v", path, err)
		}
	}()
	return nil
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// isTranscriptFile reports whether path is a cached transcript (.txt or .srt),
// ignoring hidden and temporary files.
func isTranscriptFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".txt", ".srt":
		return true
	}
	return false
}
