package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stitch/internal/config"
	"github.com/aretw0/stitch/internal/logging"
	"github.com/aretw0/stitch/pkg/adapters/redis"
	"github.com/aretw0/stitch/pkg/persistence/middleware"
	"github.com/aretw0/stitch/pkg/ports"
)

var rootCmd = &cobra.Command{
	Use:   "stitch",
	Short: "Stitch reconstructs distributed request traces from logs",
	Long: `Stitch replays per-thread log lines against a graph of automata, joins
threads across hosts, assembles requests and corrects host clock skew.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides STITCH_LOG_LEVEL)")
}

// setup loads the environment config and builds the command logger.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Format(), level), nil
}

// openStore connects the Redis request store and applies the configured middlewares.
func openStore(cfg *config.Config) (ports.RequestStore, io.Closer, error) {
	mws, err := cfg.StoreMiddlewares()
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		redis.WithPrefix(cfg.Redis.Prefix),
		redis.WithTTL(cfg.Redis.TTL),
	)
	return middleware.Wrap(rdb, mws...), rdb, nil
}
