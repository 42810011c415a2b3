package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgags-official/envisage/pkg/git"
	"github.com/sgags-official/envisage/pkg/ocr"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that external tools required by envisage are available",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load config", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		healthy := true

		engine := ocr.NewClient(cfg.TesseractCmd, slog.Default())
		if version, err := engine.Version(ctx); err != nil {
			healthy = false
			fmt.Printf("✗ tesseract (%s): %v\n", cfg.TesseractCmd, err)
			fmt.Println("  Tip: install Tesseract OCR or set ENVISAGE_TESSERACT_CMD to its full path.")
		} else {
			fmt.Printf("✓ tesseract: %s\n", version)
		}

		if git.IsInstalled() {
			fmt.Println("✓ git: found in PATH")
		} else {
			fmt.Println("✗ git: not found in PATH (versioning and sync will be unavailable)")
			if cfg.Versioning {
				healthy = false
			}
		}

		if info, err := os.Stat(cfg.ScreenshotsDir); err != nil || !info.IsDir() {
			fmt.Printf("✗ screenshots dir: %s does not exist (run 'envisage init')\n", cfg.ScreenshotsDir)
			healthy = false
		} else {
			fmt.Printf("✓ screenshots dir: %s\n", cfg.ScreenshotsDir)
		}

		if !healthy {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
