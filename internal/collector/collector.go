package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"MarketPulse/internal/logger"
	"MarketPulse/internal/model"
	"MarketPulse/internal/strategy"
	"MarketPulse/internal/trace"
)

// MockFetcher returns controllable fixed data for development and testing.
// Missing map entries yield empty records; Err* fields force failures.
type MockFetcher struct {
	Quotes          map[string]*model.Quote
	Profiles        map[string]*model.CompanyProfile
	Recommendations map[string][]model.RecommendationTrend

	QuoteErr   error
	ProfileErr error
	RecErr     error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuote(_ context.Context, symbol string) (*model.Quote, error) {
	if m.QuoteErr != nil {
		return nil, m.QuoteErr
	}
	if q, ok := m.Quotes[symbol]; ok {
		c := *q
		return &c, nil
	}
	return &model.Quote{}, nil
}

func (m *MockFetcher) FetchProfile(_ context.Context, symbol string) (*model.CompanyProfile, error) {
	if m.ProfileErr != nil {
		return nil, m.ProfileErr
	}
	if p, ok := m.Profiles[symbol]; ok {
		c := *p
		return &c, nil
	}
	return &model.CompanyProfile{}, nil
}

func (m *MockFetcher) FetchRecommendations(_ context.Context, symbol string) ([]model.RecommendationTrend, error) {
	if m.RecErr != nil {
		return nil, m.RecErr
	}
	return m.Recommendations[symbol], nil
}

// Analyzer produces a scored snapshot for one symbol.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (*model.TickerSnapshot, error)
}

// Collector orchestrates data fetching and scoring for one symbol at a time.
type Collector struct {
	Fetcher Fetcher
	log     *zap.Logger
	now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, log *zap.Logger) *Collector {
	return &Collector{Fetcher: fetcher, log: logger.OrNop(log), now: time.Now}
}

// Fetch issues the quote, profile and analyst requests concurrently and waits
// for all of them. Quote and profile failures fail the symbol; analyst
// failures are logged and leave Recommendation nil.
func (c *Collector) Fetch(ctx context.Context, symbol string) (*model.RawTickerData, error) {
	raw := &model.RawTickerData{Symbol: symbol}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := c.Fetcher.FetchQuote(gctx, symbol)
		if err != nil {
			return fmt.Errorf("fetch quote: %w", err)
		}
		raw.Quote = q
		return nil
	})
	g.Go(func() error {
		p, err := c.Fetcher.FetchProfile(gctx, symbol)
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		raw.Profile = p
		return nil
	})
	g.Go(func() error {
		recs, err := c.Fetcher.FetchRecommendations(gctx, symbol)
		if err != nil {
			c.log.Warn("analyst recommendations unavailable", zap.String("symbol", symbol), zap.Error(err))
			return nil
		}
		raw.Recommendation = latestPeriod(recs)
		return nil
	})
	if err := g.Wait(); err != nil {
		if !errors.Is(err, ErrProviderFetch) {
			err = fmt.Errorf("%w: %w", ErrProviderFetch, err)
		}
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}
	raw.FetchedAt = c.now()
	return raw, nil
}

// Analyze fetches and scores symbol.
func (c *Collector) Analyze(ctx context.Context, symbol string) (*model.TickerSnapshot, error) {
	ctx, span := trace.StartSpan(ctx, "collector.Analyze", "symbol", symbol, "provider", c.Fetcher.Name())
	defer span.End()

	raw, err := c.Fetch(ctx, symbol)
	if err != nil {
		trace.RecordError(span, err)
		return nil, err
	}
	snap, err := strategy.Evaluate(raw)
	if err != nil {
		trace.RecordError(span, err)
		return nil, err
	}
	c.log.Debug("analyzed",
		zap.String("symbol", symbol),
		zap.Float64("prediction", snap.Prediction),
		zap.String("recommendation", string(snap.Recommendation)),
	)
	return snap, nil
}

// latestPeriod picks the most recent rating period. Periods are ISO dates, so
// string order is date order; ties keep the earlier list position.
func latestPeriod(recs []model.RecommendationTrend) *model.RecommendationTrend {
	if len(recs) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(recs); i++ {
		if recs[i].Period > recs[best].Period {
			best = i
		}
	}
	r := recs[best]
	return &r
}
