package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor compiles and evaluates declarative decision trees",
	Long: `Arbor loads decision tree documents (YAML, JSON or Markdown front matter),
validates them once and evaluates facts against them over the CLI, HTTP or MCP.`,
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
	// Persistent flags (available to all commands). Defaults come from ARBOR_* variables.
	rootCmd.PersistentFlags().String("dir", "", "Directory containing the tree documents (default $ARBOR_DIR or .)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("loam", false, "Read documents through a loam repository")
	rootCmd.PersistentFlags().String("redis-addr", "", "Read documents from redis at host:port")
}

// loadConfig reads the environment and applies the persistent flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Dir, _ = flags.GetString("dir")
	}
	if flags.Changed("loam") {
		cfg.Loam, _ = flags.GetBool("loam")
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr, _ = flags.GetString("redis-addr")
	}
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Level())
}

// openLibrary loads the configured source for cmd.
func openLibrary(ctx context.Context, cmd *cobra.Command) (*arbor.Library, *config.Config, *slog.Logger, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger := newLogger(cfg)
	lib, closeFn, err := cli.OpenLibrary(ctx, sourceOptions(cfg), logger)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return lib, cfg, logger, closeFn, nil
}

func sourceOptions(cfg *config.Config) cli.SourceOptions {
	return cli.SourceOptions{
		Dir:       cfg.Dir,
		Loam:      cfg.Loam,
		RedisAddr: cfg.RedisAddr,
		RedisDB:   cfg.RedisDB,
		Debug:     cfg.Level() == slog.LevelDebug,
	}
}
