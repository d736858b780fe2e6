package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MarketPulse/internal/config"
	"MarketPulse/internal/logger"
	"MarketPulse/internal/trace"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "pulse",
	Short:         "Score a stock watchlist and render a static report",
	Long:          `MarketPulse fetches quotes, company profiles and analyst ratings from Finnhub, scores every ticker, keeps a per-session history on disk and renders it as an HTML report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $CONFIG_PATH or configs/config.yaml)")
	rootCmd.AddCommand(refreshCmd, renderCmd, mockCmd, watchCmd, versionCmd)
}

func setup() error {
	// .env is optional
	_ = godotenv.Load()

	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err = logger.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return err
	}
	if err := trace.Init(cfg.Tracing.Enabled, version, os.Stderr); err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	}
	log.Debug("config loaded", zap.String("path", path), zap.Bool("test_mode", cfg.TestMode))
	return nil
}

func teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = trace.Shutdown(ctx)
	if log != nil {
		_ = log.Sync()
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if log != nil {
			log.Error("fatal", zap.Error(err))
			teardown()
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
