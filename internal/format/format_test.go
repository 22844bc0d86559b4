package format

import (
	"testing"
	"time"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		part, total int
		want        string
	}{
		{0, 1, "0.0%"},
		{1, 17, "5.9%"},
		{5, 7, "71.4%"},
		{7, 7, "100.0%"},
		{0, 0, "0.0%"},
	}

	for _, tt := range tests {
		if got := Percent(tt.part, tt.total); got != tt.want {
			t.Errorf("Percent(%d, %d) = %q, want %q", tt.part, tt.total, got, tt.want)
		}
	}
}

func TestRate(t *testing.T) {
	if got := Rate(5, 7); got < 0.714 || got > 0.715 {
		t.Errorf("Rate(5, 7) = %v", got)
	}
	if got := Rate(0, 0); got != 0 {
		t.Errorf("Rate(0, 0) = %v, want 0", got)
	}
	if got := Rate(7, 7); got != 1.0 {
		t.Errorf("Rate(7, 7) = %v, want 1.0", got)
	}
}

func TestMillis(t *testing.T) {
	if got := Millis(46 * time.Millisecond); got != "46ms" {
		t.Errorf("Millis = %q, want 46ms", got)
	}
	if got := Millis(2 * time.Second); got != "2000ms" {
		t.Errorf("Millis = %q, want 2000ms", got)
	}
}
