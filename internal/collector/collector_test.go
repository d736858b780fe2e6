package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketPulse/internal/model"
	"MarketPulse/internal/strategy"
)

func acmeFetcher() *MockFetcher {
	return &MockFetcher{
		Quotes: map[string]*model.Quote{
			"ACME": {Current: 100, ChangePercent: 2, Low: 98, High: 102, Timestamp: 1760000000},
		},
		Profiles: map[string]*model.CompanyProfile{
			"ACME": {Name: "Acme", Ticker: "ACME", MarketCapitalization: 50},
		},
	}
}

func TestCollector_AnalyzeWithoutAnalysts(t *testing.T) {
	c := NewCollector(acmeFetcher(), nil)
	snap, err := c.Analyze(context.Background(), "ACME")
	require.NoError(t, err)
	assert.InDelta(t, 5.06, snap.Prediction, 1e-9)
	assert.Equal(t, model.RecHold, snap.Recommendation)
	assert.Nil(t, snap.AnalystRecommendations)
}

func TestCollector_UsesLatestRatingPeriod(t *testing.T) {
	f := acmeFetcher()
	f.Recommendations = map[string][]model.RecommendationTrend{
		"ACME": {
			{Period: "2026-08-01", StrongSell: 9},
			{Period: "2026-10-01", StrongBuy: 4},
			{Period: "2026-09-01", Hold: 2},
		},
	}
	snap, err := NewCollector(f, nil).Analyze(context.Background(), "ACME")
	require.NoError(t, err)
	require.NotNil(t, snap.AnalystRecommendations)
	assert.Equal(t, "2026-10-01", snap.AnalystRecommendations.Period)
	assert.Equal(t, 10.0, snap.AnalystRecommendations.ConsensusScore)
	assert.InDelta(t, (5.06+10)/2, snap.Prediction, 1e-9)
}

func TestCollector_AnalystFailureIsTolerated(t *testing.T) {
	f := acmeFetcher()
	f.RecErr = errors.New("403 forbidden")
	snap, err := NewCollector(f, nil).Analyze(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Nil(t, snap.AnalystRecommendations)
}

func TestCollector_QuoteOrProfileFailure(t *testing.T) {
	f := acmeFetcher()
	f.QuoteErr = errors.New("timeout")
	_, err := NewCollector(f, nil).Analyze(context.Background(), "ACME")
	assert.ErrorIs(t, err, ErrProviderFetch)

	f = acmeFetcher()
	f.ProfileErr = errors.New("timeout")
	_, err = NewCollector(f, nil).Analyze(context.Background(), "ACME")
	assert.ErrorIs(t, err, ErrProviderFetch)
}

func TestCollector_MissingData(t *testing.T) {
	_, err := NewCollector(acmeFetcher(), nil).Analyze(context.Background(), "NOPE")
	assert.ErrorIs(t, err, strategy.ErrMissingData)
	assert.NotErrorIs(t, err, ErrProviderFetch)
}

func TestLatestPeriod(t *testing.T) {
	assert.Nil(t, latestPeriod(nil))
	got := latestPeriod([]model.RecommendationTrend{{Period: "", Buy: 1}, {Period: "", Buy: 2}})
	assert.Equal(t, 1, got.Buy)
}
