package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/stitch"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Stitch",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "stitch version %s\n", strings.TrimSpace(stitch.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
