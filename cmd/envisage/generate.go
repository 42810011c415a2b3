package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	envisage "github.com/sgags-official/envisage"
	"github.com/sgags-official/envisage/pkg/site"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render the notes into a static browsable site",
	Long: `Build one HTML page per note under <site>/notes/ plus an index.html
table of all notes, sorted newest first.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load config", err)
		}

		repo, err := envisage.Init(cfg,
			envisage.WithMustExist(true),
			envisage.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to open note store", err)
		}

		gen, err := site.NewGenerator(repo, cfg.SiteDir, slog.Default())
		if err != nil {
			fatal("Failed to set up generator", err)
		}

		if err := gen.Generate(context.Background()); err != nil {
			fatal("Failed to generate site", err)
		}

		fmt.Println("Site generated at", cfg.SiteDir)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
