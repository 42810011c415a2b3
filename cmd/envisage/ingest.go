package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	envisage "github.com/sgags-official/envisage"
	"github.com/sgags-official/envisage/pkg/core"
)

var ingestSource string

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <image>...",
	Short: "OCR one or more images and store them as notes",
	Long: `Run the pipeline once for the given image files: deduplicate, OCR,
and persist each as a note. Useful for backfilling existing screenshots.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load config", err)
		}

		service, err := envisage.New(cfg,
			envisage.WithAutoInit(true),
			envisage.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to initialize pipeline", err)
		}

		source := core.SourceScreenshot
		if ingestSource == string(core.SourceClipboard) {
			source = core.SourceClipboard
		}

		ctx := context.Background()
		for _, path := range args {
			n, err := service.Ingest(ctx, core.Capture{
				ID:     uuid.NewString(),
				Kind:   core.CaptureImage,
				Source: source,
				Path:   path,
				Origin: filepath.Base(path),
				Time:   time.Now(),
			})
			if err != nil {
				if errors.Is(err, core.ErrDuplicateCapture) {
					fmt.Printf("%s: already ingested, skipped\n", path)
					continue
				}
				fatal("Failed to ingest "+path, err)
			}
			fmt.Printf("%s: note %s\n", path, n.ID)
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestSource, "source", string(core.SourceScreenshot), "Source tag to record (screenshot|clipboard)")
}
