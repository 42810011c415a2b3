package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	envisage "github.com/sgags-official/envisage"
	"github.com/sgags-official/envisage/pkg/core"
)

var (
	listJSON     bool
	filterSource string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load config", err)
		}

		service, err := envisage.New(cfg,
			envisage.WithMustExist(true),
			envisage.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to open note store", err)
		}

		notes, err := service.ListNotes(context.Background())
		if err != nil {
			fatal("Failed to list notes", err)
		}

		var filtered []core.Note
		for _, n := range notes {
			if filterSource != "" && string(n.Source) != filterSource {
				continue
			}
			filtered = append(filtered, n)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(filtered); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, n := range filtered {
			created := ""
			if !n.CreatedAt.IsZero() {
				created = n.CreatedAt.UTC().Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%s  %-10s  %s\n", created, n.Source, n.ID)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&filterSource, "source", "", "Filter notes by source (screenshot|clipboard)")
}
