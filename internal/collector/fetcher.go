package collector

import (
	"context"

	"MarketPulse/internal/model"
)

// Fetcher defines the interface for fetching per-symbol market data.
type Fetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*model.Quote, error)
	FetchProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error)
	// FetchRecommendations returns rating periods, most recent first.
	FetchRecommendations(ctx context.Context, symbol string) ([]model.RecommendationTrend, error)
	Name() string
}
