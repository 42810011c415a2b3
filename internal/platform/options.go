package platform

import (
	"log/slog"

	"github.com/sgags-official/envisage/pkg/core"
)

// options holds the internal configuration for the envisage service.
type options struct {
	repository  core.Repository
	extractor   core.Extractor
	logger      *slog.Logger
	autoInit    bool
	mustExist   bool
	versioning  *bool
	eventBuffer int
}

// Option defines a functional option for configuring envisage.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom storage adapter (e.g. a mock).
// If provided, the default filesystem adapter will be skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithExtractor allows injecting a custom OCR engine.
// If provided, the default Tesseract client will be skipped.
func WithExtractor(e core.Extractor) Option {
	return func(o *options) {
		o.extractor = e
	}
}

// WithAutoInit enables automatic initialization of the note store
// (creates directories and, with versioning on, git init).
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.autoInit = auto
	}
}

// WithMustExist ensures the note store directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithVersioning overrides the configured version control setting.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.versioning = &enabled
	}
}

// WithEventBuffer overrides the size of the pipeline event buffer.
// Zero means the configured/default size.
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}
