package calculator

import "MarketPulse/internal/model"

// Rating bucket weights on the 0-10 consensus scale.
const (
	WeightStrongBuy  = 10.0
	WeightBuy        = 7.5
	WeightHold       = 5.0
	WeightSell       = 2.5
	WeightStrongSell = 0.0

	// NeutralConsensus is returned when there are no ratings.
	NeutralConsensus = 5.0
)

// CalculateConsensusScore returns the weighted average of the rating counts.
// Returns NeutralConsensus when the breakdown is empty.
func CalculateConsensusScore(b model.RatingBreakdown) float64 {
	total := b.Total()
	if total == 0 {
		return NeutralConsensus
	}
	weighted := float64(b.StrongBuy)*WeightStrongBuy +
		float64(b.Buy)*WeightBuy +
		float64(b.Hold)*WeightHold +
		float64(b.Sell)*WeightSell +
		float64(b.StrongSell)*WeightStrongSell
	return weighted / float64(total)
}

// BuildAnalystRecommendations scores a provider recommendation period.
// Returns nil when no period is available.
func BuildAnalystRecommendations(rec *model.RecommendationTrend) *model.AnalystRecommendations {
	if rec == nil {
		return nil
	}
	b := model.RatingBreakdown{
		StrongBuy:  rec.StrongBuy,
		Buy:        rec.Buy,
		Hold:       rec.Hold,
		Sell:       rec.Sell,
		StrongSell: rec.StrongSell,
	}
	return &model.AnalystRecommendations{
		ConsensusScore: CalculateConsensusScore(b),
		Breakdown:      b,
		Total:          b.Total(),
		Period:         rec.Period,
	}
}
