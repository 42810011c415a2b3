// Package platform is the composition root: it wires the domain service
// to the filesystem repository, the OCR engine, and the capture sources.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sgags-official/envisage/internal/config"
	"github.com/sgags-official/envisage/pkg/adapters/clipboard"
	"github.com/sgags-official/envisage/pkg/adapters/fs"
	"github.com/sgags-official/envisage/pkg/adapters/screenshot"
	"github.com/sgags-official/envisage/pkg/core"
	"github.com/sgags-official/envisage/pkg/ocr"
)

// SystemDir is the hidden directory inside the note store holding the
// dedup index.
const SystemDir = ".envisage"

// Init builds and initializes the note repository for the given config.
func Init(cfg config.Config, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.repository != nil {
		return o.repository, nil
	}

	repo := newRepository(cfg, o)
	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// New creates the fully wired pipeline service.
func New(cfg config.Config, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	var repo core.Repository
	if o.repository != nil {
		repo = o.repository
	} else {
		fsRepo := newRepository(cfg, o)
		if err := fsRepo.Initialize(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to initialize note store: %w", err)
		}
		repo = fsRepo
	}

	extractor := o.extractor
	if extractor == nil {
		client := ocr.NewClient(cfg.TesseractCmd, logger)
		if cfg.TesseractCmd != "" {
			logger.Info("using tesseract", "binary", cfg.TesseractCmd)
		} else {
			logger.Info("using tesseract from PATH (if available)")
		}
		extractor = client
	}

	dedup, _ := repo.(core.Deduplicator)

	eventBuffer := cfg.EventBuffer
	if o.eventBuffer > 0 {
		eventBuffer = o.eventBuffer
	}

	return core.NewService(core.ServiceConfig{
		Repository:  repo,
		Dedup:       dedup,
		Extractor:   extractor,
		Logger:      logger,
		EventBuffer: eventBuffer,
		Topics:      cfg.Topics,
	})
}

// NewSources builds the capture sources feeding the pipeline channel.
func NewSources(cfg config.Config, out chan<- core.Capture, opts ...Option) []core.Source {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	watcher := screenshot.NewWatcher(screenshot.Config{
		Dir:              cfg.ScreenshotsDir,
		StabilityTimeout: cfg.StabilityTimeout,
		StabilityPoll:    cfg.StabilityPoll,
		Logger:           logger,
	}, out)

	monitor := clipboard.NewMonitor(clipboard.Config{
		Interval: cfg.PollInterval,
		SpoolDir: cfg.ClipboardDir,
		Logger:   logger,
	}, out)

	return []core.Source{watcher, monitor}
}

// EnsureDirs creates every directory the pipeline expects.
func EnsureDirs(cfg config.Config) error {
	for _, dir := range cfg.Dirs() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

func newRepository(cfg config.Config, o *options) *fs.Repository {
	versioning := cfg.Versioning
	if o.versioning != nil {
		versioning = *o.versioning
	}

	return fs.NewRepository(fs.Config{
		Path:      cfg.NotesDir,
		AutoInit:  o.autoInit,
		Gitless:   !versioning,
		MustExist: o.mustExist,
		Logger:    o.logger,
		SystemDir: SystemDir,
		Remote:    cfg.GitRemote,
		Branch:    cfg.GitBranch,
	})
}
