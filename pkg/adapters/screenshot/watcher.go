// Package screenshot implements a capture source that watches a
// screenshots directory for new image files.
package screenshot

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/sgags-official/envisage/pkg/core"
)

// DefaultPattern matches the image extensions the pipeline accepts.
const DefaultPattern = "*.{png,jpg,jpeg,bmp,tif,tiff,webp}"

const (
	defaultStabilityTimeout = 10 * time.Second
	defaultStabilityPoll    = 350 * time.Millisecond
	debounceWindow          = 200 * time.Millisecond
)

// Config holds the configuration for the screenshot watcher.
type Config struct {
	Dir              string        // directory to watch, non-recursive
	Pattern          string        // doublestar filename pattern, default DefaultPattern
	StabilityTimeout time.Duration // max wait for a file to finish writing
	StabilityPoll    time.Duration // size poll interval during the wait
	Logger           *slog.Logger
}

// Watcher observes the screenshots directory and emits image captures.
type Watcher struct {
	*worker.BaseWorker
	config  Config
	out     chan<- core.Capture
	watcher *fsnotify.Watcher
	deb     *debouncer
	cancel  context.CancelFunc
}

// NewWatcher creates the screenshot source. Captures are sent to out.
func NewWatcher(config Config, out chan<- core.Capture) *Watcher {
	if config.Pattern == "" {
		config.Pattern = DefaultPattern
	}
	if config.StabilityTimeout <= 0 {
		config.StabilityTimeout = defaultStabilityTimeout
	}
	if config.StabilityPoll <= 0 {
		config.StabilityPoll = defaultStabilityPoll
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Watcher{
		BaseWorker: worker.NewBaseWorker("screenshot-watcher"),
		config:     config,
		out:        out,
	}
}

// Name implements core.Source.
func (w *Watcher) Name() string { return "screenshot" }

// Start begins watching. It is non-blocking; the run loop ends when the
// context is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(w.config.Dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.config.Dir, err)
	}

	w.watcher = watcher
	w.deb = newDebouncer(debounceWindow)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

// Stop requests shutdown and waits for the run loop to finish.
func (w *Watcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

// State exposes worker state for observability.
func (w *Watcher) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (w *Watcher) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)

			var stack string
			if w.config.Logger.Enabled(ctx, slog.LevelDebug) {
				stack = string(debug.Stack())
			}

			if stack != "" {
				w.config.Logger.Error("watcher panic", "error", panicErr, "stack", stack)
			} else {
				w.config.Logger.Error("watcher panic", "error", panicErr)
			}
		}
	}()
	defer w.watcher.Close()

	err = w.eventLoop(ctx)

	// Stop accepting new events and wait for in-flight debounce timers so
	// nothing fires after the out channel's consumer is gone.
	w.deb.stopAndWait(5 * time.Second)

	return err
}

func (w *Watcher) eventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.config.Logger.Error("fsnotify error", "error", wErr)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}

	if !w.matches(event.Name) {
		w.config.Logger.Debug("skipping unsupported file", "path", event.Name)
		return
	}

	w.config.Logger.Debug("new file event", "path", event.Name)
	w.deb.add(event.Name, func() {
		w.process(ctx, event.Name)
	})
}

func (w *Watcher) matches(path string) bool {
	ok, err := doublestar.Match(w.config.Pattern, strings.ToLower(filepath.Base(path)))
	return err == nil && ok
}

// process waits until the file is fully written, checks it really is an
// image, and emits the capture.
func (w *Watcher) process(ctx context.Context, path string) {
	if err := waitForStableFile(ctx, path, w.config.StabilityTimeout, w.config.StabilityPoll); err != nil {
		w.config.Logger.Warn("file not stable, continuing anyway", "path", path, "error", err)
	}

	if err := validateImage(path); err != nil {
		w.config.Logger.Error("cannot open image", "path", path, "error", err)
		return
	}

	capture := core.Capture{
		ID:     uuid.NewString(),
		Kind:   core.CaptureImage,
		Source: core.SourceScreenshot,
		Path:   path,
		Origin: filepath.Base(path),
		Time:   time.Now(),
	}

	select {
	case w.out <- capture:
	case <-ctx.Done():
	}
}

var _ core.Source = (*Watcher)(nil)
