package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcfactory/arc"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of arcrun",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("arcrun version %s\n", arc.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
