package watcher

import "context"

// Watcher defines the interface for file system monitoring
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is called once for every distinct transcript file seen in a
// burst of events.
type EventHandler func(ctx context.Context, filePath string) error
