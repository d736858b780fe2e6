package calculator

import "fmt"

// FormatMarketCap formats a market capitalization given in billions.
// Values <= 0 are treated as absent.
func FormatMarketCap(marketCap float64) string {
	switch {
	case marketCap <= 0:
		return "N/A"
	case marketCap >= 1000:
		return fmt.Sprintf("$%.1fT", marketCap/1000)
	case marketCap >= 1:
		return fmt.Sprintf("$%.1fB", marketCap)
	default:
		return fmt.Sprintf("$%.1fM", marketCap*1000)
	}
}
