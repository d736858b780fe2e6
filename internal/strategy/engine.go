package strategy

import (
	"errors"
	"fmt"

	"MarketPulse/internal/calculator"
	"MarketPulse/internal/model"
)

// ErrMissingData is returned when the quote or profile is absent or empty.
var ErrMissingData = errors.New("missing required market data")

// Evaluate turns the raw provider data for one ticker into a scored snapshot.
// Analyst data is optional.
func Evaluate(raw *model.RawTickerData) (*model.TickerSnapshot, error) {
	if raw == nil {
		return nil, ErrMissingData
	}
	if raw.Quote.IsEmpty() {
		return nil, fmt.Errorf("%s: quote: %w", raw.Symbol, ErrMissingData)
	}
	if raw.Profile.IsEmpty() {
		return nil, fmt.Errorf("%s: company profile: %w", raw.Symbol, ErrMissingData)
	}

	q := raw.Quote
	trends := calculator.CalculateTrends(q)
	analyst := calculator.BuildAnalystRecommendations(raw.Recommendation)
	prediction := CompositePrediction(trends.Momentum, analyst)

	name := raw.Profile.Name
	if name == "" {
		name = raw.Symbol
	}

	return &model.TickerSnapshot{
		Symbol:                 raw.Symbol,
		Prediction:             prediction,
		Recommendation:         MapRecommendation(prediction),
		Trends:                 trends,
		RiskMetrics:            calculator.CalculateRiskMetrics(trends),
		AnalystRecommendations: analyst,
		TechnicalIndicators: model.TechnicalIndicators{
			RSI:           calculator.FormatRSI(trends.Momentum),
			MACDSignal:    calculator.MACDSignalFor(trends.Momentum),
			TrendStrength: calculator.TrendStrength(trends.Momentum),
		},
		CompanyInfo: &model.CompanyInfo{
			Name:         name,
			CurrentPrice: q.Current,
			DayChangePct: q.ChangePercent,
			MarketCap:    calculator.FormatMarketCap(raw.Profile.MarketCapitalization),
			DayRange:     model.DayRange{Low: q.Low, High: q.High},
			Industry:     raw.Profile.Industry,
			Exchange:     raw.Profile.Exchange,
			Currency:     raw.Profile.Currency,
		},
	}, nil
}
