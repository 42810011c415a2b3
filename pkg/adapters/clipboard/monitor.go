// Package clipboard implements a capture source that polls the system
// clipboard. Text snippets become notes directly; clipboard content naming
// an image file on disk is snapshotted into the clipboard spool directory
// and handed to the OCR pipeline.
package clipboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/atotto/clipboard"
	"github.com/google/uuid"

	"github.com/sgags-official/envisage/pkg/core"
)

const defaultInterval = time.Second

// imageExts are the extensions recognized when the clipboard carries a
// file path instead of literal text.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// Config holds the configuration for the clipboard monitor.
type Config struct {
	Interval time.Duration // poll interval, default 1s
	SpoolDir string        // where clipboard image snapshots are written
	Logger   *slog.Logger

	// Read overrides the clipboard read function, used by tests.
	Read func() (string, error)
}

// Monitor polls the clipboard and emits captures whenever its content changes.
type Monitor struct {
	*worker.BaseWorker
	config Config
	out    chan<- core.Capture
	cancel context.CancelFunc

	last       string
	warnedOnce bool
}

// NewMonitor creates the clipboard source. Captures are sent to out.
func NewMonitor(config Config, out chan<- core.Capture) *Monitor {
	if config.Interval <= 0 {
		config.Interval = defaultInterval
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Read == nil {
		config.Read = clipboard.ReadAll
	}
	return &Monitor{
		BaseWorker: worker.NewBaseWorker("clipboard-monitor"),
		config:     config,
		out:        out,
	}
}

// Name implements core.Source.
func (m *Monitor) Name() string { return "clipboard" }

// Start begins polling. It is non-blocking.
func (m *Monitor) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := m.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("monitor already started (status: %s)", status)
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.SetStatus(worker.StatusRunning)
	return m.StartFunc(runCtx, m.run)
}

// Stop requests shutdown and waits for the poll loop to finish.
func (m *Monitor) Stop(ctx context.Context) error {
	if m.cancel != nil {
		m.StopRequested = true
		m.cancel()
	}

	return m.BaseWorker.Stop(ctx)
}

// State exposes worker state for observability.
func (m *Monitor) State() worker.State {
	return m.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (m *Monitor) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			m.config.Logger.Error("clipboard monitor panic",
				"error", fmt.Errorf("panic: %v", recovered),
				"stack", string(debug.Stack()),
			)
		}
	}()

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *Monitor) poll(ctx context.Context) {
	content, err := m.config.Read()
	if err != nil {
		// Clipboard access is flaky on headless systems; warn once and
		// keep polling in case it becomes available.
		if !m.warnedOnce {
			m.config.Logger.Warn("clipboard read failed", "error", err)
			m.warnedOnce = true
		}
		return
	}

	if content == m.last || strings.TrimSpace(content) == "" {
		return
	}
	m.last = content

	if path, ok := imagePath(content); ok {
		m.emitImage(ctx, path)
		return
	}

	m.emit(ctx, core.Capture{
		ID:     uuid.NewString(),
		Kind:   core.CaptureText,
		Source: core.SourceClipboard,
		Text:   content,
		Origin: "clipboard buffer",
		Time:   time.Now(),
	})
}

// emitImage snapshots the referenced image into the spool directory so the
// note survives the original file moving or being deleted.
func (m *Monitor) emitImage(ctx context.Context, src string) {
	dst, err := m.snapshot(src)
	if err != nil {
		m.config.Logger.Error("failed to snapshot clipboard image", "path", src, "error", err)
		return
	}
	m.config.Logger.Info("saved clipboard image", "path", dst)

	m.emit(ctx, core.Capture{
		ID:     uuid.NewString(),
		Kind:   core.CaptureImage,
		Source: core.SourceClipboard,
		Path:   dst,
		Origin: filepath.Base(src),
		Time:   time.Now(),
	})
}

func (m *Monitor) snapshot(src string) (string, error) {
	if err := os.MkdirAll(m.config.SpoolDir, 0755); err != nil {
		return "", err
	}

	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	name := core.NoteID(time.Now(), stem) + filepath.Ext(src)
	dst := filepath.Join(m.config.SpoolDir, name)

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return "", err
	}

	return dst, nil
}

func (m *Monitor) emit(ctx context.Context, c core.Capture) {
	select {
	case m.out <- c:
	case <-ctx.Done():
	}
}

// imagePath reports whether the clipboard text names an existing image file.
// Some platforms put quoted paths on the clipboard when a file is copied.
func imagePath(content string) (string, bool) {
	p := strings.TrimSpace(content)
	p = strings.Trim(p, `"'`)

	if strings.ContainsAny(p, "\n\r") {
		return "", false
	}
	if !imageExts[strings.ToLower(filepath.Ext(p))] {
		return "", false
	}

	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", false
	}
	return p, true
}

var _ core.Source = (*Monitor)(nil)
