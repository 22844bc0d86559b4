package logline

import "testing"

func TestLayerLabel(t *testing.T) {
	tests := []struct {
		layer Layer
		want  string
	}{
		{LayerRRC, "Radio Resource Control"},
		{LayerNAS, "Non-Access Stratum"},
		{LayerNR, "5G New Radio"},
		{Layer("LTE"), "LTE"},
	}

	for _, tt := range tests {
		if got := tt.layer.Label(); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.layer, got, tt.want)
		}
	}
}
