package tokens

import "fmt"

// FormatCount renders a token count for the UI: plain below 1000, then
// one-decimal K and M suffixes.
func FormatCount(count int) string {
	switch {
	case count < 1_000:
		return fmt.Sprintf("%d", count)
	case count < 1_000_000:
		return fmt.Sprintf("%.1fK", float64(count)/1_000)
	default:
		return fmt.Sprintf("%.1fM", float64(count)/1_000_000)
	}
}
