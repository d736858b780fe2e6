package mockdata

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/model"
)

func snapshot() *model.TickerSnapshot {
	return &model.TickerSnapshot{
		Symbol:         "ACME",
		Prediction:     5.06,
		Recommendation: model.RecHold,
		TechnicalIndicators: model.TechnicalIndicators{
			RSI: "51.00", MACDSignal: model.MACDBullish, TrendStrength: 2,
		},
		CompanyInfo: &model.CompanyInfo{
			Name: "Acme", CurrentPrice: 100, DayChangePct: 2, MarketCap: "$50.0B",
			DayRange: model.DayRange{Low: 98, High: 102},
		},
	}
}

func TestAge(t *testing.T) {
	src := snapshot()
	aged := Age(src, 2)

	assert.Equal(t, 98.0, aged.CompanyInfo.CurrentPrice)
	assert.Equal(t, -2.0, aged.CompanyInfo.DayChangePct)
	assert.Equal(t, "$49.0B", aged.CompanyInfo.MarketCap)
	assert.Equal(t, 97.51, aged.CompanyInfo.DayRange.Low)
	assert.Equal(t, 98.49, aged.CompanyInfo.DayRange.High)
	assert.Equal(t, "49.50", aged.TechnicalIndicators.RSI)
	assert.Equal(t, model.MACDBearish, aged.TechnicalIndicators.MACDSignal)
	assert.Equal(t, 1.8, aged.TechnicalIndicators.TrendStrength)
	assert.Equal(t, 4.91, aged.Prediction)
	assert.Equal(t, model.RecSell, aged.Recommendation)

	// source untouched
	assert.Equal(t, 100.0, src.CompanyInfo.CurrentPrice)
	assert.Equal(t, model.MACDBullish, src.TechnicalIndicators.MACDSignal)
}

func TestAge_KeepsNAMarketCap(t *testing.T) {
	s := snapshot()
	s.CompanyInfo.MarketCap = "N/A"
	assert.Equal(t, "N/A", Age(s, 1).CompanyInfo.MarketCap)
}

func TestWeaken(t *testing.T) {
	assert.Equal(t, model.RecBuy, Weaken(model.RecStrongBuy))
	assert.Equal(t, model.RecHold, Weaken(model.RecBuy))
	assert.Equal(t, model.RecSell, Weaken(model.RecHold))
	assert.Equal(t, model.RecStrongSell, Weaken(model.RecSell))
	assert.Equal(t, model.RecStrongSell, Weaken(model.RecStrongSell))
}

func TestScaleMarketCap(t *testing.T) {
	assert.Equal(t, "$1.5T", scaleMarketCap("$1.5T", 0))
	assert.Equal(t, "$495.0M", scaleMarketCap("$500.0M", -1))
	assert.Equal(t, "garbage", scaleMarketCap("garbage", -1))
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	src := cache.NewStore(filepath.Join(dir, "stock_data.json"), nil)
	dst := cache.NewStore(filepath.Join(dir, "stock_data_mock.json"), nil)

	c := model.NewCacheFile()
	older := cache.SessionKey{Year: 2026, Month: time.October, Day: 14, Phase: cache.PhaseIn}
	latest := cache.SessionKey{Year: 2026, Month: time.November, Day: 1, Phase: cache.PhasePre}
	gen := time.Date(2026, time.November, 1, 12, 0, 0, 0, time.UTC)
	cache.Merge(c, map[string]*model.TickerSnapshot{"ACME": snapshot()}, older, gen)
	cache.Merge(c, map[string]*model.TickerSnapshot{"ACME": snapshot()}, latest, gen)
	require.NoError(t, src.Save(c))

	g := NewGenerator(src, dst, nil)
	g.float = func() float64 { return 0.75 } // 0.5 + 0.75*2 = 2% drop
	out, err := g.Generate()
	require.NoError(t, err)

	loaded := dst.Load()
	require.Contains(t, loaded.Data.Symbols, "ACME")
	hist := loaded.Data.Symbols["ACME"]
	assert.Equal(t, []string{"261031-1pre", "261101-1pre"}, cache.SortedKeys(hist))
	assert.Equal(t, 98.0, hist["261031-1pre"].CompanyInfo.CurrentPrice)
	assert.Equal(t, 100.0, hist["261101-1pre"].CompanyInfo.CurrentPrice)
	assert.Equal(t, c.Data.LastGenerationDate, loaded.Data.LastGenerationDate)
	assert.Len(t, out.Data.Symbols, 1)

	views := cache.LatestPerSymbol(loaded)
	require.Len(t, views, 1)
	assert.Equal(t, model.MACDBearish, views[0].Previous.TechnicalIndicators.MACDSignal)
}

func TestGenerate_DropRange(t *testing.T) {
	g := NewGenerator(nil, nil, nil)
	for i := 0; i < 200; i++ {
		d := g.dropPct()
		assert.GreaterOrEqual(t, d, minDropPct)
		assert.Less(t, d, maxDropPct)
	}
}

func TestGenerate_EmptySource(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(
		cache.NewStore(filepath.Join(dir, "missing.json"), nil),
		cache.NewStore(filepath.Join(dir, "mock.json"), nil),
		nil,
	)
	_, err := g.Generate()
	assert.ErrorIs(t, err, ErrNoSourceData)
}
