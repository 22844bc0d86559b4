// Package extractor derives RF samples, call-setup timing, and handover
// attempts from parsed protocol log lines.
package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/setevik/rfkpi/internal/logline"
)

// RFSample is one RSRP/RSRQ/SINR measurement taken from a Measurement
// Report line.
type RFSample struct {
	Timestamp time.Time
	RSRP      int // dBm
	RSRQ      int // dB
	SINR      int // dB
}

// HandoverStatus is the final outcome of a handover attempt.
type HandoverStatus string

const (
	StatusSuccess HandoverStatus = "SUCCESS"
	StatusFailure HandoverStatus = "FAILURE"
)

// HandoverAttempt is one handover reconstructed from a Command line and,
// when the handover succeeded, its matching Complete line.
type HandoverAttempt struct {
	ID           string
	SourceCell   string
	TargetCell   string
	CommandTime  time.Time
	CompleteTime time.Time // zero if the attempt never completed
	Status       HandoverStatus
}

// Duration returns the command-to-complete latency. The second return is
// false for failed attempts, which have no duration.
func (a *HandoverAttempt) Duration() (time.Duration, bool) {
	if a.Status != StatusSuccess {
		return 0, false
	}
	return a.CompleteTime.Sub(a.CommandTime), true
}

// CallSetupEvent is a paired RRC Connection Request / Setup Complete.
type CallSetupEvent struct {
	RequestTime  time.Time
	CompleteTime time.Time
}

// Duration returns the request-to-complete call setup latency.
func (e *CallSetupEvent) Duration() time.Duration {
	return e.CompleteTime.Sub(e.RequestTime)
}

// RFSamples extracts one RFSample per 5G_NR Measurement Report line, in
// encounter order. Lines missing any of the three values are skipped
// entirely; no partial samples are produced.
func RFSamples(lines []logline.Line) []RFSample {
	var samples []RFSample
	for _, line := range lines {
		if line.Layer != logline.LayerNR || !strings.Contains(line.Message, "Measurement Report") {
			continue
		}

		rsrp, okRSRP := extractValue(rsrpRe, line.Message)
		rsrq, okRSRQ := extractValue(rsrqRe, line.Message)
		sinr, okSINR := extractValue(sinrRe, line.Message)
		if !okRSRP || !okRSRQ || !okSINR {
			continue
		}

		samples = append(samples, RFSample{
			Timestamp: line.Timestamp,
			RSRP:      rsrp,
			RSRQ:      rsrq,
			SINR:      sinr,
		})
	}
	return samples
}

// CallSetup scans RRC lines for the first Connection Request and the next
// Setup Complete after it. Returns nil if no such pair exists; only one
// setup event is modeled per log.
func CallSetup(lines []logline.Line) *CallSetupEvent {
	var requestTime time.Time
	var haveRequest bool

	for _, line := range lines {
		if line.Layer != logline.LayerRRC {
			continue
		}

		if !haveRequest {
			if strings.Contains(line.Message, "Connection Request") {
				requestTime = line.Timestamp
				haveRequest = true
			}
			continue
		}

		if strings.Contains(line.Message, "Setup Complete") {
			return &CallSetupEvent{
				RequestTime:  requestTime,
				CompleteTime: line.Timestamp,
			}
		}
	}
	return nil
}

// Handovers reconstructs handover attempts from paired Command/Complete
// lines, correlated by target cell id. Every Command line produces
// exactly one attempt. A Command for a target that already has an open
// attempt finalizes the prior one as FAILURE (last-command-wins); a
// Complete without an open attempt for its target is ignored. Attempts
// still open at end of scan remain FAILURE with no duration.
func Handovers(lines []logline.Line) []HandoverAttempt {
	var attempts []HandoverAttempt
	open := make(map[string]int) // target cell -> index into attempts

	for _, line := range lines {
		if line.Layer != logline.LayerRRC {
			continue
		}

		if isHandoverCommand(line.Message) {
			target := extractCell(targetCellRe, line.Message)

			// Last-command-wins: a prior open attempt for this target is
			// implicitly finalized as FAILURE.
			attempts = append(attempts, HandoverAttempt{
				ID:          uuid.NewString(),
				SourceCell:  extractCell(sourceCellRe, line.Message),
				TargetCell:  target,
				CommandTime: line.Timestamp,
				Status:      StatusFailure,
			})
			open[target] = len(attempts) - 1
			continue
		}

		if strings.Contains(line.Message, "Reconfiguration Complete") {
			target := extractCell(targetCellRe, line.Message)
			if target == "" {
				// A Complete without a target id cannot be correlated.
				continue
			}
			idx, ok := open[target]
			if !ok {
				// No open attempt for this target: do not create a
				// floating success.
				continue
			}
			attempts[idx].CompleteTime = line.Timestamp
			attempts[idx].Status = StatusSuccess
			delete(open, target)
		}
	}

	return attempts
}

func isHandoverCommand(msg string) bool {
	for _, re := range handoverCommandPatterns {
		if re.MatchString(msg) {
			return true
		}
	}
	return false
}

// extractValue pulls an integer submatch from a measurement pattern.
func extractValue(re *regexp.Regexp, msg string) (int, bool) {
	m := re.FindStringSubmatch(msg)
	if len(m) != 2 {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// extractCell pulls a cell id from a command/complete line. Returns ""
// when the line carries no parseable id.
func extractCell(re *regexp.Regexp, msg string) string {
	if m := re.FindStringSubmatch(msg); len(m) == 2 {
		return m[1]
	}
	return ""
}
