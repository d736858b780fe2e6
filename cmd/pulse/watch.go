package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/recorder"
	"MarketPulse/internal/render"
	"MarketPulse/internal/scheduler"
)

var watchRunOnStart bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh on a schedule at every session phase",
	Long:  `Runs until interrupted, refreshing the watchlist before the open, during the session and after the close, and re-rendering the report after each run. When Telegram is configured, /refresh, /top and /status commands are answered.`,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchRunOnStart, "now", false, "run one refresh immediately on start")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	rec := recorder.Open(cfg.Database.SQLitePath, log)
	defer rec.Close()

	ctx, stop := signalContext()
	defer stop()

	runner := newRunner(cfg, rec)
	sched := scheduler.NewScheduler(ctx, runner, cache.NewStore(cfg.Cache.File, log),
		cfg.ActiveTickers(), cfg.Market.UTCOffsetHours, log)
	sched.Renderer = render.NewRenderer(log)
	sched.ReportPath = cfg.Render.Output
	sched.Recorder = rec
	sched.Notifier = runner.Notifier

	if err := sched.RegisterAll(cfg.Schedule.PreCron, cfg.Schedule.InCron, cfg.Schedule.PostCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if cfg.TelegramEnabled() {
		go newTelegram(cfg).StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	if watchRunOnStart {
		go func() {
			if _, err := sched.RunNow(ctx); err != nil {
				log.Error("initial refresh", zap.Error(err))
			}
		}()
	}

	log.Info("MarketPulse is running, press Ctrl+C to stop",
		zap.Int("tickers", len(sched.Symbols)),
		zap.Float64("utc_offset_hours", cfg.Market.UTCOffsetHours),
	)
	<-ctx.Done()
	log.Info("shutdown signal received, stopping")
	return nil
}
