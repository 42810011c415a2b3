package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	envisage "github.com/sgags-official/envisage"
	"github.com/sgags-official/envisage/pkg/core"
)

var syncMessage string

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Commit local notes and synchronize with the git remote",
	Long: `Snapshot any uncommitted notes and push them to the configured
remote. A rejected push is retried after pull --rebase.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load config", err)
		}

		service, err := envisage.New(cfg,
			envisage.WithMustExist(true),
			envisage.WithVersioning(true),
			envisage.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to open note store", err)
		}

		ctx := context.Background()
		if syncMessage != "" {
			ctx = context.WithValue(ctx, core.ChangeReasonKey, syncMessage)
		}

		fmt.Println("Syncing...")
		if err := service.Sync(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Sync failed: %v\n", err)
			fmt.Println("Tip: Ensure you have a remote configured ('git remote add origin <url>') and you are online.")
			fmt.Println("If there are merge conflicts, you may need to resolve them manually in the repository.")
			os.Exit(1)
		}

		fmt.Println("Sync completed successfully.")
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVarP(&syncMessage, "message", "m", "", "Commit message for the snapshot")
}
