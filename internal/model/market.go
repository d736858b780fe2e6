package model

import "time"

// Quote is the real-time quote record returned by the provider.
type Quote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// IsEmpty reports whether the provider answered with a zero quote,
// which is what Finnhub returns for unknown symbols.
func (q *Quote) IsEmpty() bool {
	return q == nil || (q.Current == 0 && q.Timestamp == 0)
}

// Time returns the quote timestamp.
func (q *Quote) Time() time.Time {
	return time.Unix(q.Timestamp, 0)
}

// CompanyProfile holds the subset of the provider's company profile we use.
// MarketCapitalization is in provider units.
type CompanyProfile struct {
	Name                 string  `json:"name"`
	Ticker               string  `json:"ticker"`
	MarketCapitalization float64 `json:"marketCapitalization"`
	Currency             string  `json:"currency"`
	Exchange             string  `json:"exchange"`
	Industry             string  `json:"finnhubIndustry"`
	WebURL               string  `json:"weburl"`
	Logo                 string  `json:"logo"`
}

// IsEmpty reports whether the profile carries no usable data.
func (p *CompanyProfile) IsEmpty() bool {
	return p == nil || (p.Name == "" && p.Ticker == "")
}

// RecommendationTrend is one reporting period of analyst rating counts.
type RecommendationTrend struct {
	Period     string `json:"period"`
	Symbol     string `json:"symbol"`
	StrongBuy  int    `json:"strongBuy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strongSell"`
}

// Total returns the number of ratings in the period.
func (r RecommendationTrend) Total() int {
	return r.StrongBuy + r.Buy + r.Hold + r.Sell + r.StrongSell
}

// RawTickerData bundles everything fetched for one symbol.
// Recommendation is nil when the provider has no analyst coverage.
type RawTickerData struct {
	Symbol         string
	Quote          *Quote
	Profile        *CompanyProfile
	Recommendation *RecommendationTrend
	FetchedAt      time.Time
}
