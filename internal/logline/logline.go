// Package logline defines the core data model for parsed protocol log lines.
package logline

import "time"

// Layer identifies the protocol layer a log line belongs to.
type Layer string

const (
	LayerRRC Layer = "RRC"
	LayerNAS Layer = "NAS"
	LayerNR  Layer = "5G_NR"
)

// Label returns a human-readable label for the layer.
func (l Layer) Label() string {
	switch l {
	case LayerRRC:
		return "Radio Resource Control"
	case LayerNAS:
		return "Non-Access Stratum"
	case LayerNR:
		return "5G New Radio"
	default:
		return string(l)
	}
}

// Line is a single parsed protocol log line. Immutable once parsed.
type Line struct {
	Timestamp time.Time
	Layer     Layer
	Message   string
}
