package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// SymbolHistory maps a date/session key to the snapshot captured then.
type SymbolHistory map[string]*TickerSnapshot

// CacheData is the "data" object of the cache file. On disk the symbol
// histories sit next to lastGenerationDate in a single flat object.
type CacheData struct {
	LastGenerationDate string
	Symbols            map[string]SymbolHistory

	// Skipped lists the entries dropped while decoding, as "SYM" for a whole
	// symbol or "SYM/key" for a single history entry. Never written back.
	Skipped []string
}

const (
	lastGenerationDateKey = "lastGenerationDate"
	historySymbolKey      = "symbol"
)

func (d CacheData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Symbols)+1)
	out[lastGenerationDateKey] = d.LastGenerationDate
	for sym, hist := range d.Symbols {
		out[sym] = hist
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes every symbol and every history entry on its own, so
// one malformed entry costs only that entry. The "symbol" field some writers
// put inside a history object is ignored.
func (d *CacheData) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.Symbols = make(map[string]SymbolHistory, len(raw))
	d.Skipped = nil
	for sym, val := range raw {
		if sym == lastGenerationDateKey {
			if err := json.Unmarshal(val, &d.LastGenerationDate); err != nil {
				d.Skipped = append(d.Skipped, sym)
			}
			continue
		}
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(val, &entries); err != nil {
			d.Skipped = append(d.Skipped, sym)
			continue
		}
		hist := make(SymbolHistory, len(entries))
		for key, entry := range entries {
			if key == historySymbolKey {
				continue
			}
			var snap *TickerSnapshot
			if err := json.Unmarshal(entry, &snap); err != nil || snap == nil {
				d.Skipped = append(d.Skipped, fmt.Sprintf("%s/%s", sym, key))
				continue
			}
			hist[key] = snap
		}
		if len(hist) > 0 {
			d.Symbols[sym] = hist
		}
	}
	sort.Strings(d.Skipped)
	return nil
}

// CacheFile is the on-disk snapshot cache.
type CacheFile struct {
	FetchTimestamp string    `json:"fetchTimestamp"`
	Data           CacheData `json:"data"`
}

// NewCacheFile returns an empty cache.
func NewCacheFile() *CacheFile {
	return &CacheFile{Data: CacheData{Symbols: make(map[string]SymbolHistory)}}
}

// IsEmpty reports whether the cache holds no symbol history at all.
func (c *CacheFile) IsEmpty() bool {
	return c == nil || len(c.Data.Symbols) == 0
}
