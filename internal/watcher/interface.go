package watcher

import "context"

// Watcher defines the interface for file system monitoring
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is called once for each new video file, after its size has
// stopped changing.
type EventHandler func(ctx context.Context, filePath string) error
