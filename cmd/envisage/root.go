package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	envisage "github.com/sgags-official/envisage"
)

var (
	verbose    bool
	configPath string
	gitless    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "envisage",
	Short: "Capture screenshots and clipboard snippets as searchable OCR notes",
	Long: `ENVISAGE watches a screenshots directory and the system clipboard,
runs OCR over new images, and persists the extracted text as Markdown
notes with frontmatter. Notes can be rendered into a static site and
synchronized with a git remote.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&gitless, "no-git", false, "Disable git versioning of notes")
}

// loadConfig builds the effective configuration for a command invocation.
func loadConfig() (envisage.Config, error) {
	cfg, err := envisage.LoadConfig(configPath)
	if err != nil {
		return envisage.Config{}, err
	}
	if gitless {
		cfg.Versioning = false
	}
	return cfg, nil
}
