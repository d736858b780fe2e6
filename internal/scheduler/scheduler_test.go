package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/model"
	"MarketPulse/internal/recorder"
	"MarketPulse/internal/refresh"
	"MarketPulse/internal/render"
)

type fakeRefresher struct {
	calls   int32
	block   chan struct{}
	started chan struct{}
	err     error
	onRun   func()
}

func (f *fakeRefresher) Run(_ context.Context, symbols []string) (*refresh.Result, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.onRun != nil {
		f.onRun()
	}
	return &refresh.Result{RunID: "r1", Attempted: len(symbols), Succeeded: len(symbols)}, nil
}

type fakeRecorder struct {
	recorder.NoopRecorder
	runs []recorder.RunRecord
}

func (f *fakeRecorder) RecentRuns(int) ([]recorder.RunRecord, error) { return f.runs, nil }

func seededStore(t *testing.T) *cache.Store {
	t.Helper()
	store := cache.NewStore(filepath.Join(t.TempDir(), "stock_data.json"), nil)
	c := model.NewCacheFile()
	key := cache.SessionKey{Year: 2026, Month: time.October, Day: 16, Phase: cache.PhaseIn}
	cache.Merge(c, map[string]*model.TickerSnapshot{
		"AAA": {Symbol: "AAA", Prediction: 6.5, Recommendation: model.RecBuy, CompanyInfo: &model.CompanyInfo{Name: "A"}},
		"BBB": {Symbol: "BBB", Prediction: 3.0, Recommendation: model.RecSell, CompanyInfo: &model.CompanyInfo{Name: "B"}},
	}, key, time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(c))
	return store
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), &fakeRefresher{}, nil, nil, -5, nil)
	require.NoError(t, s.RegisterAll("0 0 8 * * 1-5", "0 0 12 * * 1-5", "0 30 16 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 3)

	s = NewScheduler(context.Background(), &fakeRefresher{}, nil, nil, -5, nil)
	err := s.RegisterAll("0 0 8 * * 1-5", "not a cron", "0 30 16 * * 1-5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register in task")
}

func TestHandleCommand_TopAndStatus(t *testing.T) {
	store := seededStore(t)
	s := NewScheduler(context.Background(), &fakeRefresher{}, store, []string{"AAA", "BBB"}, -5, nil)
	s.Recorder = &fakeRecorder{runs: []recorder.RunRecord{{SessionKey: "261016-2in", Attempted: 2, Succeeded: 2}}}

	top := s.HandleCommand(context.Background(), "/top@pulse_bot")
	assert.Contains(t, top, "Top 2 of 2")
	assert.Less(t, strings.Index(top, "AAA"), strings.Index(top, "BBB"))

	status := s.HandleCommand(context.Background(), "/STATUS")
	assert.Contains(t, status, "Cached symbols: 2")
	assert.Contains(t, status, "261016-2in  2/2")

	assert.Contains(t, s.HandleCommand(context.Background(), "hello"), "/refresh")
	assert.Contains(t, s.HandleCommand(context.Background(), "   "), "/refresh")
}

func TestHandleCommand_Refresh(t *testing.T) {
	store := seededStore(t)
	f := &fakeRefresher{}
	s := NewScheduler(context.Background(), f, store, []string{"AAA"}, -5, nil)
	s.Renderer = render.NewRenderer(nil)
	s.ReportPath = filepath.Join(t.TempDir(), "index.html")

	assert.Empty(t, s.HandleCommand(context.Background(), "/refresh"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))
	_, err := os.Stat(s.ReportPath)
	assert.NoError(t, err)

	f.err = errors.New("boom")
	assert.Contains(t, s.HandleCommand(context.Background(), "/refresh"), "refresh failed: boom")
}

func TestRunNow_RejectsOverlap(t *testing.T) {
	f := &fakeRefresher{block: make(chan struct{}), started: make(chan struct{}, 1)}
	s := NewScheduler(context.Background(), f, seededStore(t), nil, -5, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background())
		done <- err
	}()
	<-f.started

	_, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Contains(t, s.HandleCommand(context.Background(), "/refresh"), "already running")

	close(f.block)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))
}
