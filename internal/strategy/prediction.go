package strategy

import (
	"MarketPulse/internal/model"
)

// Prediction scale.
const (
	BaseScore      = 5.0
	MomentumWeight = 3.0
	MinPrediction  = 1.0
	MaxPrediction  = 10.0
)

// rawPrediction is the unclamped composite score: the momentum adjustment is
// applied first, then the analyst consensus is averaged in when present.
func rawPrediction(momentum float64, analyst *model.AnalystRecommendations) float64 {
	score := BaseScore + momentum*MomentumWeight
	if analyst != nil {
		score = (score + analyst.ConsensusScore) / 2
	}
	return score
}

// clampPrediction bounds a score to [MinPrediction, MaxPrediction].
func clampPrediction(score float64) float64 {
	if score < MinPrediction {
		return MinPrediction
	}
	if score > MaxPrediction {
		return MaxPrediction
	}
	return score
}

// CompositePrediction returns the clamped prediction score.
func CompositePrediction(momentum float64, analyst *model.AnalystRecommendations) float64 {
	return clampPrediction(rawPrediction(momentum, analyst))
}

// recommendationBands are checked top-down. The upper two bands include their
// lower bound, the next two exclude it.
var recommendationBands = []struct {
	Bound     float64
	Inclusive bool
	Label     model.Recommendation
}{
	{8, true, model.RecStrongBuy},
	{6, true, model.RecBuy},
	{4, false, model.RecHold},
	{2, false, model.RecSell},
}

// MapRecommendation maps a prediction score to its label.
func MapRecommendation(score float64) model.Recommendation {
	for _, b := range recommendationBands {
		if score > b.Bound || (b.Inclusive && score == b.Bound) {
			return b.Label
		}
	}
	return model.RecStrongSell
}
