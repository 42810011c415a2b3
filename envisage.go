package envisage

import (
	"log/slog"

	"github.com/sgags-official/envisage/internal/config"
	"github.com/sgags-official/envisage/internal/platform"
	"github.com/sgags-official/envisage/pkg/core"
)

// --- Configuration ---

// Config is a public alias for the application configuration.
type Config = config.Config

// LoadConfig builds the configuration from defaults, an optional YAML
// file, and ENVISAGE_* environment variables.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// Option defines a functional option for configuring envisage.
type Option = platform.Option

// WithAutoInit enables automatic initialization of the note store
// (creates directories and, with versioning on, git init).
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithMustExist ensures the note store directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithVersioning overrides the configured version control setting.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithExtractor allows injecting a custom OCR engine.
func WithExtractor(e core.Extractor) Option {
	return platform.WithExtractor(e)
}

// WithEventBuffer overrides the size of the pipeline event buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// --- Factory ---

// New creates the fully wired pipeline Service.
func New(cfg Config, opts ...Option) (*core.Service, error) {
	return platform.New(cfg, opts...)
}

// Init builds and initializes the note repository explicitly.
func Init(cfg Config, opts ...Option) (core.Repository, error) {
	return platform.Init(cfg, opts...)
}

// NewSources builds the capture sources feeding the pipeline channel.
func NewSources(cfg Config, out chan<- core.Capture, opts ...Option) []core.Source {
	return platform.NewSources(cfg, out, opts...)
}

// EnsureDirs creates every directory the pipeline expects.
func EnsureDirs(cfg Config) error {
	return platform.EnsureDirs(cfg)
}
