package calculator

import (
	"fmt"
	"math"

	"MarketPulse/internal/model"
)

// Placeholder band multipliers around the current price.
const (
	SupportFactor    = 0.95
	ResistanceFactor = 1.05
)

// CalculateTrends derives the trend block from a quote. These are
// single-quote placeholders, not textbook indicators.
func CalculateTrends(q *model.Quote) model.Trends {
	dp := q.ChangePercent
	return model.Trends{
		PriceChangePct: dp,
		Volatility:     math.Abs(dp) / 100,
		Momentum:       dp / 100,
		Support:        q.Current * SupportFactor,
		Resistance:     q.Current * ResistanceFactor,
	}
}

// CalculateRiskMetrics summarises volatility and momentum magnitude.
func CalculateRiskMetrics(t model.Trends) model.RiskMetrics {
	momentumRisk := math.Abs(t.Momentum)
	return model.RiskMetrics{
		VolatilityRisk: t.Volatility,
		MomentumRisk:   momentumRisk,
		OverallRisk:    (t.Volatility + momentumRisk) / 2,
	}
}

// ApproximateRSI maps momentum onto an RSI-like value: 50 + momentum*50.
func ApproximateRSI(momentum float64) float64 {
	return 50 + momentum*50
}

// FormatRSI renders the RSI approximation with two decimals.
func FormatRSI(momentum float64) string {
	return fmt.Sprintf("%.2f", ApproximateRSI(momentum))
}

// MACDSignalFor returns Bullish for positive momentum, Bearish otherwise.
func MACDSignalFor(momentum float64) model.MACDSignal {
	if momentum > 0 {
		return model.MACDBullish
	}
	return model.MACDBearish
}

// TrendStrength is the absolute momentum in percent.
func TrendStrength(momentum float64) float64 {
	return math.Abs(momentum * 100)
}
