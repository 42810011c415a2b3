package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces envisage environment variables.
// ENVISAGE_TESSERACT_CMD -> tesseract_cmd, ENVISAGE_POLL_INTERVAL -> poll_interval.
const envPrefix = "ENVISAGE_"

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables. configPath may be empty; a missing file is not
// an error, only an unreadable or invalid one is.
func Load(configPath string) (Config, error) {
	cfg := Default()

	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// .env convention: a bare TESSERACT_CMD (no prefix) is honored when
	// nothing more specific was configured.
	if cfg.TesseractCmd == "" {
		cfg.TesseractCmd = os.Getenv("TESSERACT_CMD")
	}

	cfg.Normalize()
	return cfg, nil
}
