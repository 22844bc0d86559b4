package extractor

import "regexp"

// RF measurement value patterns.
// Example: "Measurement Report: RSRP=-85dBm, RSRQ=-10dB, SINR=18dB"
var (
	rsrpRe = regexp.MustCompile(`RSRP=(-?\d+)dBm`)
	rsrqRe = regexp.MustCompile(`RSRQ=(-?\d+)dB`)
	sinrRe = regexp.MustCompile(`SINR=(-?\d+)dB`)
)

// Handover command patterns. QXDM phrasing varies between firmware
// versions, so several forms are accepted.
// Example: "RRC Reconfiguration (Handover Command) - Source Cell: 123, Target Cell: 456"
var handoverCommandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Handover Command`),
	regexp.MustCompile(`Reconfiguration \(Handover\)`),
}

// Cell identifier patterns on command/complete lines.
// Example: "RRC Reconfiguration Complete - Target Cell: 456"
var (
	sourceCellRe = regexp.MustCompile(`Source Cell: (\d+)`)
	targetCellRe = regexp.MustCompile(`Target Cell: (\d+)`)
)
