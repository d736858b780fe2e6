package refresh

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/collector"
	"MarketPulse/internal/logger"
	"MarketPulse/internal/model"
	"MarketPulse/internal/notifier"
	"MarketPulse/internal/recorder"
	"MarketPulse/internal/trace"
)

// DefaultTopN is how many picks the run summary lists.
const DefaultTopN = 5

// Result summarizes one refresh run.
type Result struct {
	RunID      string
	SessionKey cache.SessionKey
	StartedAt  time.Time
	FinishedAt time.Time
	Attempted  int
	Succeeded  int
	Failed     []string
	// Snapshots are ordered by prediction, highest first.
	Snapshots []*model.TickerSnapshot
}

// Runner fetches, scores and caches a watchlist.
type Runner struct {
	Analyzer       collector.Analyzer
	Store          *cache.Store
	Recorder       recorder.Recorder
	Notifier       notifier.Notifier
	Delay          time.Duration
	UTCOffsetHours float64
	TopN           int
	TestMode       bool

	log *zap.Logger
	now func() time.Time
}

// NewRunner creates a Runner with no recorder or notifier attached.
func NewRunner(analyzer collector.Analyzer, store *cache.Store, log *zap.Logger) *Runner {
	return &Runner{
		Analyzer: analyzer,
		Store:    store,
		Recorder: recorder.NewNoopRecorder(),
		Notifier: notifier.NoopNotifier{},
		TopN:     DefaultTopN,
		log:      logger.OrNop(log),
		now:      time.Now,
	}
}

// Run analyzes symbols one at a time, merges the results into the cache under
// the current session key and saves it. Per-symbol failures are logged and
// skipped. A cache write failure is returned; recorder and notifier failures
// are only logged.
func (r *Runner) Run(ctx context.Context, symbols []string) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, "refresh.Run")
	defer span.End()

	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
		Attempted: len(symbols),
	}
	res.SessionKey = cache.ComputeSessionKey(res.StartedAt, r.UTCOffsetHours)
	log := r.log.With(zap.String("run_id", res.RunID), zap.String("session", res.SessionKey.String()))
	log.Info("refresh started", zap.Int("tickers", len(symbols)), zap.Bool("test_mode", r.TestMode))

	for i, sym := range symbols {
		if i > 0 && r.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(r.Delay):
			}
		}
		if err := ctx.Err(); err != nil {
			log.Warn("refresh cancelled", zap.Int("remaining", len(symbols)-i), zap.Error(err))
			res.Failed = append(res.Failed, symbols[i:]...)
			break
		}

		snap, err := r.Analyzer.Analyze(ctx, sym)
		if err != nil {
			log.Warn("skipping ticker", zap.String("symbol", sym), zap.Error(err))
			res.Failed = append(res.Failed, sym)
			continue
		}
		res.Snapshots = append(res.Snapshots, snap)
	}
	res.Succeeded = len(res.Snapshots)
	sort.SliceStable(res.Snapshots, func(i, j int) bool {
		return res.Snapshots[i].Prediction > res.Snapshots[j].Prediction
	})

	if res.Succeeded > 0 {
		bySymbol := make(map[string]*model.TickerSnapshot, res.Succeeded)
		for _, s := range res.Snapshots {
			bySymbol[s.Symbol] = s
		}
		c := r.Store.Load()
		cache.Merge(c, bySymbol, res.SessionKey, r.now().In(cache.MarketZone(r.UTCOffsetHours)))
		if err := r.Store.Save(c); err != nil {
			trace.RecordError(span, err)
			return res, fmt.Errorf("save cache: %w", err)
		}
		log.Info("cache updated", zap.String("path", r.Store.Path()), zap.Int("symbols", len(c.Data.Symbols)))
	} else {
		log.Warn("no ticker succeeded, cache left unchanged")
	}
	res.FinishedAt = r.now()

	r.record(log, res)
	r.notify(ctx, log, res)

	log.Info("refresh finished",
		zap.String("analyzed", fmt.Sprintf("%d/%d", res.Succeeded, res.Attempted)),
		zap.Duration("took", res.FinishedAt.Sub(res.StartedAt)),
	)
	return res, nil
}

// RunRecord converts the result for the recorder and notifier.
func (res *Result) RunRecord(testMode bool) *recorder.RunRecord {
	return &recorder.RunRecord{
		RunID:      res.RunID,
		SessionKey: res.SessionKey.String(),
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Attempted:  res.Attempted,
		Succeeded:  res.Succeeded,
		Failed:     res.Failed,
		TestMode:   testMode,
	}
}

func (r *Runner) record(log *zap.Logger, res *Result) {
	if r.Recorder == nil {
		return
	}
	if err := r.Recorder.RecordRun(res.RunRecord(r.TestMode)); err != nil {
		log.Warn("record run", zap.Error(err))
		return
	}
	for _, s := range res.Snapshots {
		if err := r.Recorder.RecordSnapshot(res.RunID, res.SessionKey.String(), s); err != nil {
			log.Warn("record snapshot", zap.String("symbol", s.Symbol), zap.Error(err))
		}
	}
}

func (r *Runner) notify(ctx context.Context, log *zap.Logger, res *Result) {
	if r.Notifier == nil {
		return
	}
	msg := notifier.FormatRefreshSummary(res.RunRecord(r.TestMode), res.Snapshots, r.TopN)
	if err := r.Notifier.Notify(ctx, msg); err != nil {
		log.Warn("send refresh summary", zap.Error(err))
	}
}
