// Package report renders KPI evaluation results for stdout and digest output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/setevik/rfkpi/internal/kpi"
)

// Format renders a report as human-readable text.
func Format(instanceID, source string, rep *kpi.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== %s: %s ===\n", instanceID, source)
	fmt.Fprintf(&b, "Lines:    %d parsed, %d malformed\n", rep.LineCount, rep.MalformedCount)
	fmt.Fprintf(&b, "Extracted: %d RF samples, %d handover attempts\n\n", rep.SampleCount, rep.AttemptCount)

	for _, v := range rep.Verdicts {
		fmt.Fprintf(&b, "[%s] %s\n", v.Outcome, v.Summary)
	}

	failed := 0
	for _, v := range rep.Verdicts {
		if v.Failed() {
			failed++
		}
	}

	b.WriteString("\n")
	if failed > 0 {
		fmt.Fprintf(&b, "Result: FAILED (%d of %d checks)\n", failed, len(rep.Verdicts))
	} else {
		fmt.Fprintf(&b, "Result: PASSED (%d checks)\n", len(rep.Verdicts))
	}

	return b.String()
}

// jsonReport is the wire shape for -json output.
type jsonReport struct {
	Instance string `json:"instance"`
	Source   string `json:"source"`
	Passed   bool   `json:"passed"`
	*kpi.Report
}

// WriteJSON renders a report as indented JSON.
func WriteJSON(w io.Writer, instanceID, source string, rep *kpi.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Instance: instanceID,
		Source:   source,
		Passed:   !rep.Failed(),
		Report:   rep,
	})
}
