package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ytget/media-magic/internal/logger"
	"github.com/ytget/media-magic/internal/media"
)

// Watcher defaults
const (
	DefaultMaxConcurrent = 2
	DefaultSettleDelay   = 500 * time.Millisecond
)

// Handler processes one newly created audio file
type Handler func(ctx context.Context, path string) error

// Watcher submits every audio file created in a directory to a Handler
type Watcher struct {
	dir           string
	handler       Handler
	log           logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	settleDelay   time.Duration
	wg            sync.WaitGroup
}

// New creates a Watcher on dir running at most maxConcurrent handlers at once
func New(dir string, handler Handler, log logger.Logger, maxConcurrent int) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	return &Watcher{
		dir:           dir,
		handler:       handler,
		log:           logger.OrNop(log),
		watcher:       fw,
		maxConcurrent: maxConcurrent,
		semaphore:     make(chan struct{}, maxConcurrent),
		settleDelay:   DefaultSettleDelay,
	}, nil
}

// SetSettleDelay sets how long to wait after a create event before handling the file
func (w *Watcher) SetSettleDelay(d time.Duration) {
	w.settleDelay = d
}

// Start blocks until ctx is done, then waits for running handlers
func (w *Watcher) Start(ctx context.Context) error {
	w.log.Info(ctx, "Watching %s for audio files (max concurrent: %d)", w.dir, w.maxConcurrent)

	for {
		select {
		case <-ctx.Done():
			w.log.Info(ctx, "Waiting for ongoing transcriptions to complete...")
			w.wg.Wait()
			w.log.Info(ctx, "Folder watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !media.IsAudioFile(event.Name) {
				w.log.Debug(ctx, "Ignoring non-audio file: %s", event.Name)
				continue
			}

			w.log.Info(ctx, "New audio detected: %s", event.Name)
			if w.settleDelay > 0 {
				time.Sleep(w.settleDelay)
			}

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()

					if err := w.handler(ctx, path); err != nil {
						w.log.Error(ctx, "Failed to transcribe %s: %v", path, err)
					}
				}(event.Name)
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the underlying fsnotify watcher
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
