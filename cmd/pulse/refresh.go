package main

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/collector"
	"MarketPulse/internal/config"
	"MarketPulse/internal/notifier"
	"MarketPulse/internal/recorder"
	"MarketPulse/internal/refresh"
)

var refreshTestMode bool

var refreshCmd = &cobra.Command{
	Use:   "refresh [SYMBOL...]",
	Short: "Fetch and score the watchlist, then update the cache",
	Long:  `Fetches every configured ticker (or the ones given as arguments), scores them and merges the results into the cache under the current session key.`,
	RunE:  runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshTestMode, "test", false, "use the short test watchlist")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if refreshTestMode {
		cfg.TestMode = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	symbols := cfg.ActiveTickers()
	if len(args) > 0 {
		symbols = make([]string, 0, len(args))
		for _, a := range args {
			symbols = append(symbols, strings.ToUpper(a))
		}
	}

	rec := recorder.Open(cfg.Database.SQLitePath, log)
	defer rec.Close()

	runner := newRunner(cfg, rec)

	ctx, stop := signalContext()
	defer stop()

	res, err := runner.Run(ctx, symbols)
	if err != nil {
		return err
	}
	if res.Succeeded == 0 && res.Attempted > 0 {
		log.Warn("no ticker could be analyzed", zap.Strings("failed", res.Failed))
	}
	return nil
}

// newFetcher builds the Finnhub client from config.
func newFetcher(c *config.Config) *collector.FinnhubFetcher {
	return collector.NewFinnhubFetcher(c.Provider.APIKey,
		collector.WithBaseURL(c.Provider.BaseURL),
		collector.WithProxy(c.Proxy),
		collector.WithTimeout(c.Provider.Timeout),
		collector.WithRateLimit(c.Provider.RateLimit, c.Provider.Burst),
		collector.WithProfileTTL(c.Provider.ProfileTTL),
		collector.WithLogger(log),
	)
}

// newNotifier returns a Telegram notifier when it is configured.
func newNotifier(c *config.Config) notifier.Notifier {
	if !c.TelegramEnabled() {
		return notifier.NoopNotifier{}
	}
	return newTelegram(c)
}

func newTelegram(c *config.Config) *notifier.TelegramNotifier {
	return notifier.NewTelegramNotifier(c.Telegram.BotToken, c.Telegram.ChatID,
		notifier.WithProxy(c.Proxy),
		notifier.WithLogger(log),
	)
}

func newRunner(c *config.Config, rec recorder.Recorder) *refresh.Runner {
	col := collector.NewCollector(newFetcher(c), log)
	r := refresh.NewRunner(col, cache.NewStore(c.Cache.File, log), log)
	r.Delay = c.RequestDelay
	r.UTCOffsetHours = c.Market.UTCOffsetHours
	r.TestMode = c.TestMode
	r.Recorder = rec
	r.Notifier = newNotifier(c)
	return r
}
