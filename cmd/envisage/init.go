package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	envisage "github.com/sgags-official/envisage"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the capture directories and note store",
	Long: `Create the data directories (screenshots, clipboard, notes) and the
site output directory, and initialize the note store (git init when
versioning is enabled).`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load config", err)
		}

		if err := envisage.EnsureDirs(cfg); err != nil {
			fatal("Failed to create directories", err)
		}

		_, err = envisage.Init(cfg,
			envisage.WithAutoInit(true),
			envisage.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to initialize note store", err)
		}

		fmt.Println("Initialized ENVISAGE workspace in", cfg.DataDir)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
