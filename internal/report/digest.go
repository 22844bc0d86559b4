package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/setevik/rfkpi/internal/store"
)

// DigestSummary holds aggregated run statistics for a digest period.
type DigestSummary struct {
	InstanceID string
	Since      time.Time
	Until      time.Time

	Runs   int
	Passed int
	Failed int

	// FailureBreakdown counts failed checks by verdict name across all runs.
	FailureBreakdown map[string]int
}

// BuildDigest aggregates a list of stored runs into a DigestSummary.
func BuildDigest(instanceID string, runs []*store.Run, since, until time.Time) *DigestSummary {
	d := &DigestSummary{
		InstanceID:       instanceID,
		Since:            since,
		Until:            until,
		FailureBreakdown: make(map[string]int),
	}

	for _, run := range runs {
		d.Runs++
		if run.Passed {
			d.Passed++
			continue
		}
		d.Failed++
		for _, v := range run.Verdicts {
			if v.Failed() {
				d.FailureBreakdown[v.Name]++
			}
		}
	}

	return d
}

// FormatDigest formats a DigestSummary as human-readable text.
func FormatDigest(d *DigestSummary) string {
	var b strings.Builder

	dateRange := fmt.Sprintf("%s - %s",
		d.Since.Local().Format("Jan 02"),
		d.Until.Local().Format("Jan 02"))

	fmt.Fprintf(&b, "=== %s ===\n", d.InstanceID)
	fmt.Fprintf(&b, "Period: %s\n\n", dateRange)

	fmt.Fprintf(&b, "Runs:   %d\n", d.Runs)
	fmt.Fprintf(&b, "Passed: %d\n", d.Passed)
	fmt.Fprintf(&b, "Failed: %d", d.Failed)
	if d.Failed > 0 && len(d.FailureBreakdown) > 0 {
		fmt.Fprintf(&b, " (%s)", formatBreakdown(d.FailureBreakdown))
	}
	b.WriteString("\n")

	return b.String()
}

// formatBreakdown turns a map[string]int into "rsrp x2, call_setup x1"
// sorted by count descending.
func formatBreakdown(m map[string]int) string {
	type entry struct {
		name  string
		count int
	}

	entries := make([]entry, 0, len(m))
	for name, count := range m {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s ×%d", e.name, e.count)
	}
	return strings.Join(parts, ", ")
}
