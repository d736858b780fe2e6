package mockdata

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/logger"
	"MarketPulse/internal/model"
)

// ErrNoSourceData is returned when the real cache has nothing to age.
var ErrNoSourceData = errors.New("real cache is empty, run refresh first")

const (
	minDropPct = 0.5
	maxDropPct = 2.5

	rsiStep             = 1.5
	trendStrengthFactor = 0.9
	predictionFactor    = 0.97
	dayRangeSpread      = 0.005
)

var marketCapPattern = regexp.MustCompile(`^\$([0-9]+(?:\.[0-9]+)?)([TBM])$`)

// Generator builds a two-entry history per symbol from the real cache so the
// report's change signals can be exercised without a second live fetch.
type Generator struct {
	Source *cache.Store
	Target *cache.Store

	log   *zap.Logger
	now   func() time.Time
	float func() float64
}

// NewGenerator creates a Generator reading source and writing target.
func NewGenerator(source, target *cache.Store, log *zap.Logger) *Generator {
	return &Generator{
		Source: source,
		Target: target,
		log:    logger.OrNop(log),
		now:    time.Now,
		float:  rand.Float64,
	}
}

// Generate writes the mock cache and returns it.
func (g *Generator) Generate() (*model.CacheFile, error) {
	src := g.Source.Load()
	if src.IsEmpty() {
		return nil, ErrNoSourceData
	}

	out := model.NewCacheFile()
	out.Data.LastGenerationDate = src.Data.LastGenerationDate
	out.FetchTimestamp = g.now().UTC().Format(time.RFC3339)

	for sym, hist := range src.Data.Symbols {
		keys := cache.SortedKeys(hist)
		if len(keys) == 0 {
			continue
		}
		latestKey := keys[len(keys)-1]
		latest := hist[latestKey]
		if latest == nil || latest.CompanyInfo == nil {
			continue
		}
		key, err := cache.ParseSessionKey(latestKey)
		if err != nil {
			g.log.Warn("skipping symbol with unparsable key", zap.String("symbol", sym), zap.Error(err))
			continue
		}
		out.Data.Symbols[sym] = model.SymbolHistory{
			key.PreviousDay().String(): Age(latest, g.dropPct()),
			latestKey:                  latest,
		}
	}
	if len(out.Data.Symbols) == 0 {
		return nil, ErrNoSourceData
	}

	if err := g.Target.Save(out); err != nil {
		return nil, fmt.Errorf("save mock cache: %w", err)
	}
	g.log.Info("mock data generated", zap.String("path", g.Target.Path()), zap.Int("symbols", len(out.Data.Symbols)))
	return out, nil
}

func (g *Generator) dropPct() float64 {
	return minDropPct + g.float()*(maxDropPct-minDropPct)
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Age returns a copy of s as it might have looked a day earlier after a price
// drop of dropPct percent.
func Age(s *model.TickerSnapshot, dropPct float64) *model.TickerSnapshot {
	h := s.Clone()
	adj := -dropPct

	if ci := h.CompanyInfo; ci != nil {
		ci.CurrentPrice = round(ci.CurrentPrice*(1+adj/100), 2)
		ci.DayChangePct = round(adj, 4)
		ci.MarketCap = scaleMarketCap(ci.MarketCap, adj)
		ci.DayRange.Low = round(ci.CurrentPrice*(1-dayRangeSpread), 2)
		ci.DayRange.High = round(ci.CurrentPrice*(1+dayRangeSpread), 2)
	}

	if rsi, err := strconv.ParseFloat(h.TechnicalIndicators.RSI, 64); err == nil {
		h.TechnicalIndicators.RSI = fmt.Sprintf("%.2f", rsi-rsiStep)
	}
	h.TechnicalIndicators.MACDSignal = model.MACDBearish
	h.TechnicalIndicators.TrendStrength = round(h.TechnicalIndicators.TrendStrength*trendStrengthFactor, 4)

	h.Prediction = round(h.Prediction*predictionFactor, 2)
	h.Recommendation = Weaken(h.Recommendation)
	return h
}

// Weaken moves a recommendation one step toward Strong Sell.
func Weaken(r model.Recommendation) model.Recommendation {
	for i, rec := range model.Recommendations {
		if rec == r && i+1 < len(model.Recommendations) {
			return model.Recommendations[i+1]
		}
	}
	return r
}

// scaleMarketCap applies pct to a formatted market cap, keeping its unit.
func scaleMarketCap(mc string, pct float64) string {
	m := marketCapPattern.FindStringSubmatch(mc)
	if m == nil {
		return mc
	}
	v, err := decimal.NewFromString(m[1])
	if err != nil {
		return mc
	}
	scaled := v.Mul(decimal.NewFromFloat(1 + pct/100))
	return "$" + scaled.StringFixed(1) + m[2]
}
