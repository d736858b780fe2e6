package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/model"
	"MarketPulse/internal/recorder"
)

var recIcon = map[model.Recommendation]string{
	model.RecStrongBuy:  "🟢🟢",
	model.RecBuy:        "🟢",
	model.RecHold:       "⚪",
	model.RecSell:       "🔴",
	model.RecStrongSell: "🔴🔴",
}

func pickLine(b *strings.Builder, rank int, s *model.TickerSnapshot) {
	name := s.Symbol
	price := ""
	if ci := s.CompanyInfo; ci != nil {
		price = fmt.Sprintf(" $%.2f (%+.2f%%)", ci.CurrentPrice, ci.DayChangePct)
	}
	fmt.Fprintf(b, "%d. %s <b>%s</b> %.1f %s%s\n",
		rank, recIcon[s.Recommendation], html.EscapeString(name), s.Prediction*10, s.Recommendation, price)
}

// FormatRefreshSummary formats a finished run with its top picks.
// snaps must already be ordered by prediction, highest first.
func FormatRefreshSummary(run *recorder.RunRecord, snaps []*model.TickerSnapshot, topN int) string {
	var b strings.Builder

	mode := ""
	if run.TestMode {
		mode = " (test)"
	}
	fmt.Fprintf(&b, "📊 <b>MarketPulse refresh</b>%s | %s\n\n", mode, run.SessionKey)
	fmt.Fprintf(&b, "Analyzed %d/%d tickers in %s\n", run.Succeeded, run.Attempted,
		run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	if len(run.Failed) > 0 {
		fmt.Fprintf(&b, "⚠️ Failed: %s\n", html.EscapeString(strings.Join(run.Failed, ", ")))
	}

	if len(snaps) > 0 && topN > 0 {
		b.WriteString("\n🏆 <b>Top picks:</b>\n")
		for i, s := range snaps {
			if i == topN {
				break
			}
			pickLine(&b, i+1, s)
		}
	}
	return b.String()
}

// FormatTopPicks formats the n highest-scored latest snapshots from the cache.
func FormatTopPicks(views []cache.SymbolView, n int) string {
	if len(views) == 0 {
		return "No cached data yet. Send /refresh first."
	}
	snaps := make([]*model.TickerSnapshot, 0, len(views))
	for _, v := range views {
		snaps = append(snaps, v.Latest)
	}
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].Prediction > snaps[j].Prediction })

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 <b>Top %d of %d</b> (session %s)\n\n", min(n, len(snaps)), len(snaps), latestKey(views))
	for i, s := range snaps {
		if i == n {
			break
		}
		pickLine(&b, i+1, s)
	}
	return b.String()
}

// FormatStatus formats recent run history.
func FormatStatus(runs []recorder.RunRecord, cacheSymbols int, lastGenerated string) string {
	var b strings.Builder
	b.WriteString("📦 <b>MarketPulse status</b>\n\n")
	fmt.Fprintf(&b, "Cached symbols: %d\n", cacheSymbols)
	if lastGenerated != "" {
		fmt.Fprintf(&b, "Last generated: %s\n", lastGenerated)
	}
	if len(runs) == 0 {
		b.WriteString("No recorded runs.\n")
		return b.String()
	}
	b.WriteString("\nRecent runs:\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "  %s  %d/%d  %s\n", r.SessionKey, r.Succeeded, r.Attempted, r.StartedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

func latestKey(views []cache.SymbolView) string {
	k := ""
	for _, v := range views {
		if v.LatestKey > k {
			k = v.LatestKey
		}
	}
	return k
}
