package render

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/model"
)

const (
	// rsiSignalDelta is the minimum RSI move between snapshots worth flagging.
	rsiSignalDelta = 5.0
	// levelProximity is how close to support or resistance counts as "near".
	levelProximity = 0.02
)

// Signal is one icon in the row summary.
type Signal struct {
	Kind  string
	Class string
	Title string
	Icon  string
}

// Bar is one segment of the analyst distribution bar.
type Bar struct {
	Class string
	Style template.CSS
}

// AnalystView is the analyst block of a row.
type AnalystView struct {
	Consensus  string
	StrongBuy  int
	Buy        int
	Hold       int
	Sell       int
	StrongSell int
	Bars       []Bar
}

// Row is one stock line of the report.
type Row struct {
	Symbol         string
	Name           string
	Score          string
	Recommendation model.Recommendation
	RecClass       string
	Breakdown      string
	Signals        []Signal

	Price          string
	DayChange      string
	DayChangeClass string
	MarketCap      string
	DayRange       string

	Analyst *AnalystView

	RSI         string
	MACD        model.MACDSignal
	MACDClass   string
	Support     string
	Resistance  string
	Explanation string
}

func money(v float64) string { return fmt.Sprintf("$%.2f", v) }

func newRow(v cache.SymbolView) Row {
	s := v.Latest
	ci := s.CompanyInfo
	row := Row{
		Symbol:         v.Symbol,
		Name:           ci.Name,
		Score:          fmt.Sprintf("%.1f", s.Prediction*10),
		Recommendation: s.Recommendation,
		RecClass:       s.Recommendation.CSSClass(),
		Breakdown:      "-",
		Signals:        signals(s, v.Previous),
		Price:          "N/A",
		DayChange:      "N/A",
		DayChangeClass: "negative",
		MarketCap:      ci.MarketCap,
		DayRange:       "N/A",
		RSI:            s.TechnicalIndicators.RSI,
		MACD:           s.TechnicalIndicators.MACDSignal,
		MACDClass:      "negative",
		Support:        money(s.Trends.Support),
		Resistance:     money(s.Trends.Resistance),
		Explanation:    explanation(s),
	}
	if row.Name == "" {
		row.Name = v.Symbol
	}
	if row.MarketCap == "" {
		row.MarketCap = "N/A"
	}
	if ci.CurrentPrice > 0 {
		row.Price = money(ci.CurrentPrice)
	}
	if ci.DayChangePct != 0 {
		row.DayChange = fmt.Sprintf("%+.2f%%", ci.DayChangePct)
		if ci.DayChangePct > 0 {
			row.DayChangeClass = "positive"
		}
	}
	if ci.DayRange.Low > 0 && ci.DayRange.High > 0 {
		row.DayRange = money(ci.DayRange.Low) + " - " + money(ci.DayRange.High)
	}
	if s.TechnicalIndicators.MACDSignal == model.MACDBullish {
		row.MACDClass = "positive"
	}
	if ar := s.AnalystRecommendations; ar != nil {
		b := ar.Breakdown
		row.Breakdown = fmt.Sprintf("%d/%d/%d/%d", b.StrongBuy, b.Buy, b.Hold, b.Sell)
		row.Analyst = &AnalystView{
			Consensus:  fmt.Sprintf("%.1f", ar.ConsensusScore),
			StrongBuy:  b.StrongBuy,
			Buy:        b.Buy,
			Hold:       b.Hold,
			Sell:       b.Sell,
			StrongSell: b.StrongSell,
			Bars:       bars(b),
		}
	}
	return row
}

func bars(b model.RatingBreakdown) []Bar {
	total := b.Total()
	if total == 0 {
		return nil
	}
	seg := func(class string, n int) Bar {
		return Bar{Class: class, Style: template.CSS(fmt.Sprintf("width: %.1f%%", float64(n)/float64(total)*100))}
	}
	return []Bar{
		seg(model.RecStrongBuy.CSSClass(), b.StrongBuy),
		seg(model.RecBuy.CSSClass(), b.Buy),
		seg(model.RecHold.CSSClass(), b.Hold),
		seg(model.RecSell.CSSClass(), b.Sell),
		seg(model.RecStrongSell.CSSClass(), b.StrongSell),
	}
}

// signals compares the latest snapshot with the previous one and with its
// own support and resistance levels.
func signals(cur, prev *model.TickerSnapshot) []Signal {
	var out []Signal

	if prev != nil {
		cm, pm := cur.TechnicalIndicators.MACDSignal, prev.TechnicalIndicators.MACDSignal
		if cm != "" && pm != "" && cm != pm {
			class := "negative"
			if cm == model.MACDBullish {
				class = "positive"
			}
			out = append(out, Signal{Kind: "macd", Class: class, Icon: "📶",
				Title: fmt.Sprintf("MACD Signal changed to: %s", cm)})
		}

		cr, err1 := strconv.ParseFloat(cur.TechnicalIndicators.RSI, 64)
		pr, err2 := strconv.ParseFloat(prev.TechnicalIndicators.RSI, 64)
		if err1 == nil && err2 == nil {
			if delta := cr - pr; math.Abs(delta) > rsiSignalDelta {
				class := ""
				switch {
				case cr > 70:
					class = "negative"
				case cr < 30:
					class = "positive"
				}
				out = append(out, Signal{Kind: "rsi", Class: class, Icon: "📈",
					Title: fmt.Sprintf("RSI changed by %.1f to %s", delta, cur.TechnicalIndicators.RSI)})
			}
		}
	}

	if cur.CompanyInfo != nil && cur.CompanyInfo.CurrentPrice > 0 {
		price := cur.CompanyInfo.CurrentPrice
		if sup := cur.Trends.Support; sup > 0 && (price-sup)/sup < levelProximity {
			out = append(out, Signal{Kind: "support", Class: "support", Icon: "⬇",
				Title: fmt.Sprintf("Price near support level (%s)", money(sup))})
		}
		if res := cur.Trends.Resistance; res > 0 && (res-price)/res < levelProximity {
			out = append(out, Signal{Kind: "resistance", Class: "resistance", Icon: "⬆",
				Title: fmt.Sprintf("Price near resistance level (%s)", money(res))})
		}
	}
	return out
}

// RiskLevel buckets the overall risk metric.
func RiskLevel(overall float64) string {
	switch {
	case overall > 0.7:
		return "high"
	case overall > 0.3:
		return "moderate"
	}
	return "low"
}

func explanation(s *model.TickerSnapshot) string {
	parts := []string{
		fmt.Sprintf("Technical Analysis: %s trend with RSI at %s", s.TechnicalIndicators.MACDSignal, s.TechnicalIndicators.RSI),
	}
	if pc := s.Trends.PriceChangePct; math.Abs(pc) > 2 {
		if pc > 0 {
			parts = append(parts, fmt.Sprintf("Strong positive price movement of %.2f%%", pc))
		} else {
			parts = append(parts, fmt.Sprintf("Price decline of %.2f%%", math.Abs(pc)))
		}
	}
	parts = append(parts,
		fmt.Sprintf("Risk level is %s based on volatility and momentum metrics", RiskLevel(s.RiskMetrics.OverallRisk)),
		fmt.Sprintf("Trading between support (%s) and resistance (%s)", money(s.Trends.Support), money(s.Trends.Resistance)),
	)
	mc := "N/A"
	if s.CompanyInfo != nil && s.CompanyInfo.MarketCap != "" {
		mc = s.CompanyInfo.MarketCap
	}
	parts = append(parts, fmt.Sprintf("%s stock with %s%% trend strength", mc,
		strconv.FormatFloat(math.Round(s.TechnicalIndicators.TrendStrength*100)/100, 'f', -1, 64)))
	return strings.Join(parts, ". ") + "."
}
