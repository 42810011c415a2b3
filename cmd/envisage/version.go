package main

import (
	"fmt"

	"github.com/spf13/cobra"

	envisage "github.com/sgags-official/envisage"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the envisage version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("envisage v%s\n", envisage.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
