package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/stitch"
	"github.com/aretw0/stitch/pkg/adapters/file"
	"github.com/aretw0/stitch/pkg/adapters/jsonl"
	"github.com/aretw0/stitch/pkg/observability"
)

var runCmd = &cobra.Command{
	Use:   "run --graph <graph> <lines>...",
	Short: "Reconstruct requests from log lines",
	Long: `Replays every thread found in the JSON Lines files against the graph, joins threads,
assembles requests and synchronizes host clocks. Valid requests are stored in Redis
when STITCH_REDIS_ADDR is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		graphPath, _ := cmd.Flags().GetString("graph")
		jsonMode, _ := cmd.Flags().GetBool("json")
		reportPath, _ := cmd.Flags().GetString("report")
		metricsPath, _ := cmd.Flags().GetString("metrics-out")

		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		model, err := file.LoadGraph(graphPath)
		if err != nil {
			return err
		}
		src, err := jsonl.Open(args...)
		if err != nil {
			return err
		}

		registry := prometheus.NewRegistry()
		metrics := observability.NewMetrics(registry)

		opts := []stitch.Option{
			stitch.WithLogger(logger),
			stitch.WithWorkers(cfg.Workers),
			stitch.WithLifecycleHooks(metrics.Hooks()),
		}
		if cfg.Redis.Enabled() {
			store, closer, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()
			opts = append(opts, stitch.WithStore(store))
		}

		eng, err := stitch.New(model, opts...)
		if err != nil {
			return err
		}
		res, err := eng.Run(cmd.Context(), src)
		if err != nil {
			return err
		}
		metrics.ObserveReport(res.Report)

		if reportPath != "" {
			if err := writeJSON(reportPath, res.Report); err != nil {
				return err
			}
		}
		if metricsPath != "" {
			if err := prometheus.WriteToTextfile(metricsPath, registry); err != nil {
				return fmt.Errorf("failed to write metrics: %w", err)
			}
		}

		if jsonMode {
			return printSummaries(cmd.OutOrStdout(), eng, res)
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("graph", "g", "", "Graph definition (YAML or JSON)")
	runCmd.Flags().Bool("json", false, "Print one JSON summary per valid request (NDJSON)")
	runCmd.Flags().String("report", "", "Write the run report as JSON to this path")
	runCmd.Flags().String("metrics-out", "", "Write Prometheus metrics in text format to this path")
	_ = runCmd.MarkFlagRequired("graph")
}

func printSummaries(w io.Writer, eng *stitch.Engine, res *stitch.Result) error {
	enc := json.NewEncoder(w)
	for _, id := range sortedKeys(res.Requests) {
		if err := enc.Encode(stitch.Summarize(eng.Model(), res.RunID, res.Requests[id])); err != nil {
			return err
		}
	}
	return nil
}

func printResult(w io.Writer, res *stitch.Result) {
	rep := res.Report
	fmt.Fprintf(w, "Run %s\n", res.RunID)
	fmt.Fprintf(w, "  threads: %d instances, %d dangling lines\n", len(res.Threads), rep.Replay.Dangling)
	fmt.Fprintf(w, "  joins:   %d (%d violated before correction, %d after)\n",
		rep.Join.Total(), rep.Clock.ViolatedBefore, rep.Clock.ViolatedAfter)
	fmt.Fprintf(w, "  requests: %d valid, %d failed, %d unidentified\n",
		len(res.Requests), countFailed(res), len(res.Unidentified))

	for _, id := range sortedKeys(res.Requests) {
		r := res.Requests[id]
		fmt.Fprintf(w, "    %s %s lapse=%.6fs threads=%d\n", id, r.State, r.Lapse(), len(r.Threads))
	}
	for _, kind := range sortedKeys(rep.Assemble.Failed) {
		fmt.Fprintf(w, "  failed %s: %d\n", kind, rep.Assemble.Failed[kind])
	}
	for _, host := range sortedKeys(res.Offsets) {
		fmt.Fprintf(w, "  offset %s: %+.6fs\n", host, res.Offsets[host])
	}
	if len(rep.UnseenEdges) > 0 {
		fmt.Fprintf(w, "  unseen edges: %v\n", rep.UnseenEdges)
	}
}

func countFailed(res *stitch.Result) int {
	n := 0
	for _, rs := range res.Failed {
		n += len(rs)
	}
	return n
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
