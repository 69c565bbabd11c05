package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var requestsCmd = &cobra.Command{
	Use:   "requests <run-id> [request-id]",
	Short: "Inspect requests stored by a previous run",
	Long: `Lists the request ids stored for a run, or prints one stored request summary
as JSON. Requires STITCH_REDIS_ADDR.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		if !cfg.Redis.Enabled() {
			return errors.New("STITCH_REDIS_ADDR is not set")
		}
		store, closer, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			ids, err := store.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		}

		summary, err := store.Load(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	rootCmd.AddCommand(requestsCmd)
}
