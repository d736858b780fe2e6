package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/logger"
	"MarketPulse/internal/notifier"
	"MarketPulse/internal/recorder"
	"MarketPulse/internal/refresh"
	"MarketPulse/internal/render"
)

// Refresher runs one refresh over a watchlist.
type Refresher interface {
	Run(ctx context.Context, symbols []string) (*refresh.Result, error)
}

// topPicks is how many symbols /top lists.
const topPicks = 5

// Scheduler manages the session-phase refresh jobs and operator commands.
type Scheduler struct {
	Cron       *cron.Cron
	Refresher  Refresher
	Store      *cache.Store
	Renderer   *render.Renderer
	Recorder   recorder.Recorder
	Notifier   notifier.Notifier
	Symbols    []string
	ReportPath string
	Ctx        context.Context

	mu  sync.Mutex
	log *zap.Logger
}

// NewScheduler creates a Scheduler whose cron runs in the market time zone.
func NewScheduler(ctx context.Context, r Refresher, store *cache.Store, symbols []string, utcOffsetHours float64, log *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithLocation(cache.MarketZone(utcOffsetHours))),
		Refresher: r,
		Store:     store,
		Recorder:  recorder.NewNoopRecorder(),
		Notifier:  notifier.NoopNotifier{},
		Symbols:   symbols,
		Ctx:       ctx,
		log:       logger.OrNop(log),
	}
}

// RegisterAll registers the pre-market, in-session and post-market refreshes.
func (s *Scheduler) RegisterAll(preCron, inCron, postCron string) error {
	jobs := []struct {
		name string
		spec string
	}{
		{cache.PhasePre.String(), preCron},
		{cache.PhaseIn.String(), inCron},
		{cache.PhasePost.String(), postCron},
	}
	for _, j := range jobs {
		name := j.name
		if _, err := s.Cron.AddFunc(j.spec, func() { s.refreshTask(name) }); err != nil {
			return fmt.Errorf("register %s task: %w", name, err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) refreshTask(phase string) {
	s.log.Info("running scheduled refresh", zap.String("phase", phase))
	if _, err := s.RunNow(s.Ctx); err != nil {
		s.log.Error("scheduled refresh", zap.String("phase", phase), zap.Error(err))
		s.trySend(fmt.Sprintf("❌ %s refresh failed: %v", phase, err))
	}
}

// ErrBusy is returned by RunNow while another refresh is in progress.
var ErrBusy = errors.New("a refresh is already running")

// RunNow runs a refresh immediately and re-renders the report. Overlapping
// calls return ErrBusy.
func (s *Scheduler) RunNow(ctx context.Context) (*refresh.Result, error) {
	if !s.mu.TryLock() {
		return nil, ErrBusy
	}
	defer s.mu.Unlock()

	res, err := s.Refresher.Run(ctx, s.Symbols)
	if err != nil {
		return res, err
	}
	if s.Renderer != nil && s.ReportPath != "" && res.Succeeded > 0 {
		if err := s.Renderer.RenderFile(s.ReportPath, s.Store.Load()); err != nil {
			s.log.Error("render report", zap.Error(err))
		}
	}
	return res, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Group chats append the bot name: /top@pulse_bot
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch cmd {
	case "/refresh":
		res, err := s.RunNow(ctx)
		switch {
		case errors.Is(err, ErrBusy):
			return "⏳ " + err.Error()
		case err != nil:
			return fmt.Sprintf("❌ refresh failed: %v", err)
		}
		// the runner already sent its summary
		s.log.Info("manual refresh done", zap.String("run_id", res.RunID))
		return ""
	case "/top":
		return notifier.FormatTopPicks(cache.LatestPerSymbol(s.Store.Load()), topPicks)
	case "/status":
		runs, err := s.Recorder.RecentRuns(5)
		if err != nil {
			s.log.Warn("load recent runs", zap.Error(err))
		}
		c := s.Store.Load()
		return notifier.FormatStatus(runs, len(c.Data.Symbols), c.Data.LastGenerationDate)
	default:
		return helpText
	}
}

const helpText = "Available commands:\n• /refresh - fetch all tickers now\n• /top - best scored tickers\n• /status - recent runs"

func (s *Scheduler) trySend(text string) {
	ctx, cancel := context.WithTimeout(s.Ctx, time.Minute)
	defer cancel()
	if err := s.Notifier.Notify(ctx, text); err != nil {
		s.log.Error("send notification", zap.Error(err))
	}
}
