package model

// Recommendation is the discrete label derived from the prediction score.
type Recommendation string

const (
	RecStrongBuy  Recommendation = "Strong Buy"
	RecBuy        Recommendation = "Buy"
	RecHold       Recommendation = "Hold"
	RecSell       Recommendation = "Sell"
	RecStrongSell Recommendation = "Strong Sell"
)

// Recommendations lists the labels from strongest to weakest.
var Recommendations = []Recommendation{RecStrongBuy, RecBuy, RecHold, RecSell, RecStrongSell}

// CSSClass returns the lowercase, dash-separated form used by the report.
func (r Recommendation) CSSClass() string {
	switch r {
	case RecStrongBuy:
		return "strong-buy"
	case RecBuy:
		return "buy"
	case RecHold:
		return "hold"
	case RecSell:
		return "sell"
	case RecStrongSell:
		return "strong-sell"
	}
	return ""
}

// MACDSignal is the simplified momentum direction.
type MACDSignal string

const (
	MACDBullish MACDSignal = "Bullish"
	MACDBearish MACDSignal = "Bearish"
)

// Trends holds the derived price trend metrics.
type Trends struct {
	PriceChangePct float64 `json:"priceChangePct"`
	Volatility     float64 `json:"volatility"`
	Momentum       float64 `json:"momentum"`
	Support        float64 `json:"support"`
	Resistance     float64 `json:"resistance"`
}

// RiskMetrics is informational only and does not feed the prediction.
type RiskMetrics struct {
	VolatilityRisk float64 `json:"volatilityRisk"`
	MomentumRisk   float64 `json:"momentumRisk"`
	OverallRisk    float64 `json:"overallRisk"`
}

// RatingBreakdown counts analyst ratings per bucket.
type RatingBreakdown struct {
	StrongBuy  int `json:"strongBuy"`
	Buy        int `json:"buy"`
	Hold       int `json:"hold"`
	Sell       int `json:"sell"`
	StrongSell int `json:"strongSell"`
}

// Total returns the sum of all buckets.
func (b RatingBreakdown) Total() int {
	return b.StrongBuy + b.Buy + b.Hold + b.Sell + b.StrongSell
}

// AnalystRecommendations is the scored analyst aggregate for the latest period.
type AnalystRecommendations struct {
	ConsensusScore float64         `json:"consensusScore"`
	Breakdown      RatingBreakdown `json:"breakdown"`
	Total          int             `json:"total"`
	Period         string          `json:"period,omitempty"`
}

// TechnicalIndicators holds the simplified indicator set.
// RSI is kept as a two-decimal string.
type TechnicalIndicators struct {
	RSI           string     `json:"rsi"`
	MACDSignal    MACDSignal `json:"macdSignal"`
	TrendStrength float64    `json:"trendStrength"`
}

// DayRange is the intraday low/high.
type DayRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// CompanyInfo is the display block of a snapshot.
type CompanyInfo struct {
	Name         string   `json:"name"`
	CurrentPrice float64  `json:"currentPrice"`
	DayChangePct float64  `json:"dayChangePct"`
	MarketCap    string   `json:"marketCap"`
	DayRange     DayRange `json:"dayRange"`
	Industry     string   `json:"industry,omitempty"`
	Exchange     string   `json:"exchange,omitempty"`
	Currency     string   `json:"currency,omitempty"`
}

// TickerSnapshot is one scored record for a ticker.
type TickerSnapshot struct {
	Symbol                 string                  `json:"symbol"`
	Prediction             float64                 `json:"prediction"`
	Recommendation         Recommendation          `json:"recommendation"`
	Trends                 Trends                  `json:"trends"`
	RiskMetrics            RiskMetrics             `json:"riskMetrics"`
	AnalystRecommendations *AnalystRecommendations `json:"analystRecommendations"`
	TechnicalIndicators    TechnicalIndicators     `json:"technicalIndicators"`
	CompanyInfo            *CompanyInfo            `json:"companyInfo,omitempty"`
}

// Clone returns a deep copy.
func (s *TickerSnapshot) Clone() *TickerSnapshot {
	if s == nil {
		return nil
	}
	c := *s
	if s.AnalystRecommendations != nil {
		ar := *s.AnalystRecommendations
		c.AnalystRecommendations = &ar
	}
	if s.CompanyInfo != nil {
		ci := *s.CompanyInfo
		c.CompanyInfo = &ci
	}
	return &c
}
