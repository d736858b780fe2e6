package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/model"
	"MarketPulse/internal/recorder"
)

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", WithAPIBase(srv.URL))
	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, "<b>hi</b>", got["text"])
}

func TestTelegramNotifier_NotifyRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"ok":false,"description":"bad gateway"}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("T", "1", WithAPIBase(srv.URL), WithRetry(2, time.Millisecond))
	require.NoError(t, n.Notify(context.Background(), "x"))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, -10)
	err := n.Notify(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries exhausted")
}

func TestTelegramNotifier_PollingDispatchesOwnChatOnly(t *testing.T) {
	var (
		mu      sync.Mutex
		replies []string
		served  int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if atomic.AddInt32(&served, 1) == 1 {
				assert.Equal(t, "0", r.URL.Query().Get("offset"))
				w.Write([]byte(`{"ok":true,"result":[
					{"update_id":7,"message":{"text":" /top ","chat":{"id":42}}},
					{"update_id":8,"message":{"text":"/refresh","chat":{"id":99}}},
					{"update_id":9}
				]}`))
				return
			}
			assert.Equal(t, "10", r.URL.Query().Get("offset"))
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			replies = append(replies, body["text"])
			mu.Unlock()
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	n := NewTelegramNotifier("T", "42", WithAPIBase(srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	var handled []string
	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(_ context.Context, cmd string) string {
			handled = append(handled, cmd)
			return "reply:" + cmd
		})
		close(done)
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&served) >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []string{"/top"}, handled)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"reply:/top"}, replies)
}

func snap(sym string, pred float64, rec model.Recommendation) *model.TickerSnapshot {
	return &model.TickerSnapshot{
		Symbol: sym, Prediction: pred, Recommendation: rec,
		CompanyInfo: &model.CompanyInfo{Name: sym, CurrentPrice: 10, DayChangePct: -1.5},
	}
}

func TestFormatRefreshSummary(t *testing.T) {
	start := time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC)
	run := &recorder.RunRecord{
		SessionKey: "261016-2in", StartedAt: start, FinishedAt: start.Add(2 * time.Second),
		Attempted: 3, Succeeded: 2, Failed: []string{"BAD"},
	}
	msg := FormatRefreshSummary(run, []*model.TickerSnapshot{
		snap("AAA", 7.2, model.RecBuy),
		snap("BBB", 5.1, model.RecHold),
	}, 1)

	assert.Contains(t, msg, "261016-2in")
	assert.Contains(t, msg, "Analyzed 2/3 tickers in 2s")
	assert.Contains(t, msg, "Failed: BAD")
	assert.Contains(t, msg, "1. 🟢 <b>AAA</b> 72.0 Buy $10.00 (-1.50%)")
	assert.NotContains(t, msg, "BBB")
}

func TestFormatTopPicks(t *testing.T) {
	assert.Contains(t, FormatTopPicks(nil, 3), "/refresh")

	views := []cache.SymbolView{
		{Symbol: "AAA", LatestKey: "261015-3post", Latest: snap("AAA", 3, model.RecSell)},
		{Symbol: "BBB", LatestKey: "261016-1pre", Latest: snap("BBB", 8.5, model.RecStrongBuy)},
	}
	msg := FormatTopPicks(views, 5)
	assert.Contains(t, msg, "Top 2 of 2")
	assert.Contains(t, msg, "261016-1pre")
	assert.Less(t, strings.Index(msg, "BBB"), strings.Index(msg, "AAA"))
}

func TestFormatStatus(t *testing.T) {
	assert.Contains(t, FormatStatus(nil, 0, ""), "No recorded runs")
	msg := FormatStatus([]recorder.RunRecord{{SessionKey: "261016-2in", Attempted: 2, Succeeded: 2}}, 30, "2026-10-16 10:00 UTC")
	assert.Contains(t, msg, "Cached symbols: 30")
	assert.Contains(t, msg, "261016-2in  2/2")
}
