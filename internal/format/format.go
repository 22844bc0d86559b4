// Package format provides shared formatting utilities.
package format

import (
	"fmt"
	"time"
)

// Percent formats part/total as a percentage string (e.g., "71.4%").
func Percent(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}

// Rate returns part/total as a fraction in [0,1]. Returns 0 for an empty total.
func Rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

// Millis formats a duration as whole milliseconds (e.g., "46ms").
func Millis(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}
