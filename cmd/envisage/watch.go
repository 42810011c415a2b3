package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	envisage "github.com/sgags-official/envisage"
	"github.com/sgags-official/envisage/pkg/core"
)

// watchCmd runs the capture daemon.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the capture daemon (screenshots + clipboard)",
	Long: `Watch the screenshots directory and the system clipboard for new
captures. Each unique capture is OCR-processed and stored as a note.
Runs until interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load config", err)
		}

		if err := envisage.EnsureDirs(cfg); err != nil {
			fatal("Failed to create directories", err)
		}

		logger := slog.Default()

		service, err := envisage.New(cfg,
			envisage.WithAutoInit(true),
			envisage.WithLogger(logger),
		)
		if err != nil {
			fatal("Failed to initialize pipeline", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		captures := make(chan core.Capture, cfg.EventBuffer)
		sources := envisage.NewSources(cfg, captures, envisage.WithLogger(logger))

		logger.Info("watching for captures",
			"screenshots", cfg.ScreenshotsDir,
			"clipboard_interval", cfg.PollInterval,
		)

		if err := service.Run(ctx, captures, sources...); err != nil {
			fatal("Watcher failed", err)
		}

		logger.Info("stopping watcher")
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
