// Package config provides configuration loading for envisage.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (ENVISAGE_*, plus the bare TESSERACT_CMD
//     convention carried over from the .env template)
//  2. YAML config file
//  3. Hardcoded defaults
package config

import (
	"path/filepath"
	"time"
)

// Config holds the complete envisage configuration.
type Config struct {
	DataDir        string `koanf:"data_dir"`
	ScreenshotsDir string `koanf:"screenshots_dir"`
	ClipboardDir   string `koanf:"clipboard_dir"`
	NotesDir       string `koanf:"notes_dir"`
	SiteDir        string `koanf:"site_dir"`

	TesseractCmd string `koanf:"tesseract_cmd"`

	PollInterval     time.Duration `koanf:"poll_interval"`
	StabilityTimeout time.Duration `koanf:"stability_timeout"`
	StabilityPoll    time.Duration `koanf:"stability_poll"`

	Versioning bool   `koanf:"versioning"`
	GitRemote  string `koanf:"git_remote"`
	GitBranch  string `koanf:"git_branch"`

	EventBuffer int    `koanf:"event_buffer"`
	Topics      string `koanf:"topics"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:          "data",
		SiteDir:          "site",
		PollInterval:     time.Second,
		StabilityTimeout: 10 * time.Second,
		StabilityPoll:    350 * time.Millisecond,
		Versioning:       false,
		GitRemote:        "origin",
		GitBranch:        "main",
		EventBuffer:      100,
		Topics:           "general",
	}
}

// Normalize derives the per-source directories from DataDir when they are
// not set explicitly.
func (c *Config) Normalize() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.ScreenshotsDir == "" {
		c.ScreenshotsDir = filepath.Join(c.DataDir, "screenshots")
	}
	if c.ClipboardDir == "" {
		c.ClipboardDir = filepath.Join(c.DataDir, "clipboard")
	}
	if c.NotesDir == "" {
		c.NotesDir = filepath.Join(c.DataDir, "notes")
	}
	if c.SiteDir == "" {
		c.SiteDir = "site"
	}
}

// Dirs returns every directory the pipeline expects to exist.
func (c *Config) Dirs() []string {
	return []string{
		c.ScreenshotsDir,
		c.ClipboardDir,
		c.NotesDir,
		filepath.Join(c.SiteDir, "notes"),
	}
}
