package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stitch/pkg/adapters/file"
	"github.com/aretw0/stitch/pkg/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate <graph>",
	Short: "Check a graph definition for consistency",
	Long: `Compiles a graph definition and reports every problem found: structural
errors, overlapping keywords and unresolved joins.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		model, err := file.LoadGraph(args[0])
		if err != nil {
			if errs := schema.ValidationErrors(err); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(out, "  - %v\n", e)
				}
				return fmt.Errorf("validation failed: %d problem(s)", len(errs))
			}
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(out, "Graph is valid: %d nodes, %d edges, %d joins, components %v\n",
			model.NumNodes(), model.NumEdges(), len(model.Joins()), model.Components())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
