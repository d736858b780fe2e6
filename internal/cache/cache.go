package cache

import (
	"sort"
	"time"

	"MarketPulse/internal/model"
)

// GenerationDateLayout formats lastGenerationDate.
const GenerationDateLayout = "2006-01-02 15:04 MST"

// Merge writes each snapshot under key in its symbol's history, overwriting
// any entry already stored for that key. Symbols absent from snapshots keep
// their history untouched.
func Merge(c *model.CacheFile, snapshots map[string]*model.TickerSnapshot, key SessionKey, generatedAt time.Time) {
	if c.Data.Symbols == nil {
		c.Data.Symbols = make(map[string]model.SymbolHistory)
	}
	k := key.String()
	for sym, snap := range snapshots {
		if snap == nil {
			continue
		}
		hist, ok := c.Data.Symbols[sym]
		if !ok || hist == nil {
			hist = make(model.SymbolHistory)
			c.Data.Symbols[sym] = hist
		}
		hist[k] = snap
	}
	c.Data.LastGenerationDate = generatedAt.Format(GenerationDateLayout)
	c.FetchTimestamp = generatedAt.UTC().Format(time.RFC3339)
}

// SymbolView is the latest snapshot of one symbol plus the one before it.
type SymbolView struct {
	Symbol      string
	LatestKey   string
	Latest      *model.TickerSnapshot
	PreviousKey string
	Previous    *model.TickerSnapshot
}

// SortedKeys returns the history keys in ascending order.
func SortedKeys(h model.SymbolHistory) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LatestPerSymbol picks the lexicographically greatest key of every symbol as
// its latest entry and the key before it, if any, as previous. Symbols whose
// latest entry has no company info are dropped. Views are ordered by symbol.
func LatestPerSymbol(c *model.CacheFile) []SymbolView {
	if c == nil {
		return nil
	}
	views := make([]SymbolView, 0, len(c.Data.Symbols))
	for sym, hist := range c.Data.Symbols {
		keys := SortedKeys(hist)
		if len(keys) == 0 {
			continue
		}
		v := SymbolView{Symbol: sym, LatestKey: keys[len(keys)-1]}
		v.Latest = hist[v.LatestKey]
		if v.Latest == nil || v.Latest.CompanyInfo == nil {
			continue
		}
		if v.Latest.Symbol == "" {
			latest := *v.Latest
			latest.Symbol = sym
			v.Latest = &latest
		}
		if len(keys) > 1 {
			v.PreviousKey = keys[len(keys)-2]
			v.Previous = hist[v.PreviousKey]
		}
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Symbol < views[j].Symbol })
	return views
}
