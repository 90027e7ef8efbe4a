// Package watch scrubs markdown files as they are created or modified in a
// directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/raaihank/deidentify/internal/batch"
	"github.com/raaihank/deidentify/internal/logger"
	"go.uber.org/zap"
)

// ErrInPlaceUnsupported is returned when watching with in-place output, which
// would re-trigger on its own writes
var ErrInPlaceUnsupported = errors.New("in-place output cannot be used with watch")

// Processor is the pipeline surface the watcher needs
type Processor interface {
	ProcessFile(ctx context.Context, path string) (*batch.FileResult, error)
	IsCandidate(path string) bool
	IsOutput(path string) bool
}

// Watcher processes documents dropped into a directory. Events are handled
// on the Run goroutine only, so the engine behind Processor is never used
// concurrently.
type Watcher struct {
	dir       string
	processor Processor
	debounce  time.Duration
	logger    *logger.Logger

	// OnProcessed, if set, is called after every document attempt
	OnProcessed func(fr *batch.FileResult, err error)
}

// New creates a watcher for dir
func New(dir string, processor Processor, debounce time.Duration, inPlace bool, log *logger.Logger) (*Watcher, error) {
	if inPlace {
		return nil, ErrInPlaceUnsupported
	}
	return &Watcher{
		dir:       dir,
		processor: processor,
		debounce:  debounce,
		logger:    log,
	}, nil
}

// Run watches until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.logger.Info("Watching directory",
		zap.String("directory", w.dir),
		zap.Duration("debounce", w.debounce),
	)

	// pending maps a path to the time its last event arrived
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Watcher stopped", zap.String("directory", w.dir))
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.processor.IsCandidate(event.Name) || w.processor.IsOutput(event.Name) {
				continue
			}
			w.logger.Debug("Document event",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()),
			)
			pending[event.Name] = time.Now()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))

		case now := <-ticker.C:
			for _, path := range due(pending, now, w.debounce) {
				delete(pending, path)
				w.process(ctx, path)
			}
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	fr, err := w.processor.ProcessFile(ctx, path)
	if err != nil {
		w.logger.Error("Failed to process document",
			zap.String("path", path),
			zap.Error(err),
		)
	}
	if w.OnProcessed != nil {
		w.OnProcessed(fr, err)
	}
}

func (w *Watcher) tick() time.Duration {
	if w.debounce <= 0 {
		return 50 * time.Millisecond
	}
	if t := w.debounce / 2; t > 10*time.Millisecond {
		return t
	}
	return 10 * time.Millisecond
}

// due returns the pending paths whose last event is at least debounce old,
// sorted for a stable processing order
func due(pending map[string]time.Time, now time.Time, debounce time.Duration) []string {
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= debounce {
			ready = append(ready, path)
		}
	}
	slices.Sort(ready)
	return ready
}
