// Package kpi evaluates extracted measurements against configured
// thresholds and produces pass/fail verdicts.
package kpi

import (
	"fmt"
	"strings"
	"time"

	"github.com/setevik/rfkpi/internal/extractor"
	"github.com/setevik/rfkpi/internal/format"
	"github.com/setevik/rfkpi/internal/loader"
)

// Thresholds is the KPI configuration record. It is passed explicitly
// into each evaluation; there is no package-level threshold state.
type Thresholds struct {
	RSRPMin                int     // dBm
	RSRQMin                int     // dB
	SINRMin                int     // dB
	CallSetupMaxMS         int64   // milliseconds
	HandoverDurationMaxMS  int64   // milliseconds
	HandoverSuccessRateMin float64 // fraction in [0,1]
	// MaxViolationRatio is the allowed fraction of RF samples below a
	// signal threshold before the verdict fails.
	MaxViolationRatio float64
}

// DefaultThresholds returns the standard 3GPP-derived acceptance thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RSRPMin:                -110,
		RSRQMin:                -15,
		SINRMin:                0,
		CallSetupMaxMS:         2000,
		HandoverDurationMaxMS:  100,
		HandoverSuccessRateMin: 0.95,
		MaxViolationRatio:      0.20,
	}
}

// Outcome is the result of a single KPI check.
type Outcome string

const (
	OutcomePass   Outcome = "PASS"
	OutcomeFail   Outcome = "FAIL"
	OutcomeNoData Outcome = "NO DATA"
)

// Verdict is one threshold comparison with a human-readable summary.
type Verdict struct {
	Name    string  `json:"name"`
	Outcome Outcome `json:"outcome"`
	Summary string  `json:"summary"`
}

// Failed reports whether this verdict failed. NO DATA is not a failure.
func (v Verdict) Failed() bool {
	return v.Outcome == OutcomeFail
}

// Report bundles all verdicts for one analyzed log.
type Report struct {
	LineCount      int       `json:"line_count"`
	MalformedCount int       `json:"malformed_count"`
	SampleCount    int       `json:"sample_count"`
	AttemptCount   int       `json:"attempt_count"`
	Verdicts       []Verdict `json:"verdicts"`
}

// Failed reports whether any verdict in the report failed.
func (r *Report) Failed() bool {
	for _, v := range r.Verdicts {
		if v.Failed() {
			return true
		}
	}
	return false
}

// Evaluate runs all extractions over the log and checks every KPI against
// the given thresholds.
func Evaluate(log *loader.Log, t Thresholds) *Report {
	samples := extractor.RFSamples(log.Lines)
	setup := extractor.CallSetup(log.Lines)
	attempts := extractor.Handovers(log.Lines)

	rep := &Report{
		LineCount:      len(log.Lines),
		MalformedCount: log.Malformed,
		SampleCount:    len(samples),
		AttemptCount:   len(attempts),
	}
	rep.Verdicts = append(rep.Verdicts, EvaluateRF(samples, t)...)
	rep.Verdicts = append(rep.Verdicts, EvaluateCallSetup(setup, t))
	rep.Verdicts = append(rep.Verdicts, EvaluateHandovers(attempts, t)...)
	return rep
}

// EvaluateRF checks the below-threshold fraction for each of the three
// signal measurements.
func EvaluateRF(samples []extractor.RFSample, t Thresholds) []Verdict {
	rsrp := make([]int, len(samples))
	rsrq := make([]int, len(samples))
	sinr := make([]int, len(samples))
	for i, s := range samples {
		rsrp[i] = s.RSRP
		rsrq[i] = s.RSRQ
		sinr[i] = s.SINR
	}

	return []Verdict{
		evaluateSignal("rsrp", "RSRP", "dBm", rsrp, t.RSRPMin, t.MaxViolationRatio),
		evaluateSignal("rsrq", "RSRQ", "dB", rsrq, t.RSRQMin, t.MaxViolationRatio),
		evaluateSignal("sinr", "SINR", "dB", sinr, t.SINRMin, t.MaxViolationRatio),
	}
}

// evaluateSignal applies the allowed-violation-fraction rule: the verdict
// passes when at most maxRatio of the samples fall below min.
func evaluateSignal(name, label, unit string, values []int, min int, maxRatio float64) Verdict {
	if len(values) == 0 {
		return Verdict{
			Name:    name,
			Outcome: OutcomeNoData,
			Summary: fmt.Sprintf("%s: no samples", label),
		}
	}

	below := 0
	for _, v := range values {
		if v < min {
			below++
		}
	}

	outcome := OutcomePass
	if format.Rate(below, len(values)) > maxRatio {
		outcome = OutcomeFail
	}

	return Verdict{
		Name:    name,
		Outcome: outcome,
		Summary: fmt.Sprintf("%s: %d/%d samples below %d %s (%s), limit %.0f%%",
			label, below, len(values), min, unit,
			format.Percent(below, len(values)), maxRatio*100),
	}
}

// EvaluateCallSetup checks call setup latency against the threshold.
// A log with no request/complete pair yields NO DATA, not a failure.
func EvaluateCallSetup(ev *extractor.CallSetupEvent, t Thresholds) Verdict {
	if ev == nil {
		return Verdict{
			Name:    "call_setup",
			Outcome: OutcomeNoData,
			Summary: "call setup: no request/complete pair",
		}
	}

	d := ev.Duration()
	outcome := OutcomePass
	if d > time.Duration(t.CallSetupMaxMS)*time.Millisecond {
		outcome = OutcomeFail
	}

	return Verdict{
		Name:    "call_setup",
		Outcome: outcome,
		Summary: fmt.Sprintf("call setup: %s, limit %dms", format.Millis(d), t.CallSetupMaxMS),
	}
}

// EvaluateHandovers checks the handover success rate and the duration of
// the slowest successful handover.
func EvaluateHandovers(attempts []extractor.HandoverAttempt, t Thresholds) []Verdict {
	return []Verdict{
		evaluateHandoverRate(attempts, t),
		evaluateHandoverDuration(attempts, t),
	}
}

func evaluateHandoverRate(attempts []extractor.HandoverAttempt, t Thresholds) Verdict {
	if len(attempts) == 0 {
		return Verdict{
			Name:    "handover_success_rate",
			Outcome: OutcomeNoData,
			Summary: "handover success rate: no attempts",
		}
	}

	succeeded := 0
	var unmatched []string
	for _, a := range attempts {
		if a.Status == extractor.StatusSuccess {
			succeeded++
			continue
		}
		target := a.TargetCell
		if target == "" {
			target = "unknown"
		}
		unmatched = append(unmatched, target)
	}

	outcome := OutcomePass
	if format.Rate(succeeded, len(attempts)) < t.HandoverSuccessRateMin {
		outcome = OutcomeFail
	}

	summary := fmt.Sprintf("handover success rate: %d/%d (%s), minimum %.1f%%",
		succeeded, len(attempts),
		format.Percent(succeeded, len(attempts)),
		t.HandoverSuccessRateMin*100)
	if len(unmatched) > 0 {
		summary += fmt.Sprintf("; unmatched targets: %s", strings.Join(unmatched, ", "))
	}

	return Verdict{
		Name:    "handover_success_rate",
		Outcome: outcome,
		Summary: summary,
	}
}

func evaluateHandoverDuration(attempts []extractor.HandoverAttempt, t Thresholds) Verdict {
	var slowest time.Duration
	completed := 0
	for i := range attempts {
		if d, ok := attempts[i].Duration(); ok {
			completed++
			if d > slowest {
				slowest = d
			}
		}
	}

	if completed == 0 {
		return Verdict{
			Name:    "handover_duration",
			Outcome: OutcomeNoData,
			Summary: "handover duration: no completed handovers",
		}
	}

	outcome := OutcomePass
	if slowest > time.Duration(t.HandoverDurationMaxMS)*time.Millisecond {
		outcome = OutcomeFail
	}

	return Verdict{
		Name:    "handover_duration",
		Outcome: outcome,
		Summary: fmt.Sprintf("handover duration: slowest %s of %d completed, limit %dms",
			format.Millis(slowest), completed, t.HandoverDurationMaxMS),
	}
}
