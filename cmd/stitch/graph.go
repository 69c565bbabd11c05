package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stitch/internal/presentation/graph"
	"github.com/aretw0/stitch/pkg/adapters/file"
	"github.com/aretw0/stitch/pkg/report"
)

var graphCmd = &cobra.Command{
	Use:   "graph <graph>",
	Short: "Export the graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the fragments, edges and joins
of a graph definition. With --report, edges matched by a previous run are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := file.LoadGraph(args[0])
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if path, _ := cmd.Flags().GetString("report"); path != "" {
			rep, err := readReport(path)
			if err != nil {
				return err
			}
			overlay = &graph.Overlay{SeenEdges: rep.Replay.SeenEdges}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(model, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("report", "", "Run report (JSON, as written by 'run --report') to overlay")
}

func readReport(path string) (*report.RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var rep report.RunReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", path, err)
	}
	return &rep, nil
}
