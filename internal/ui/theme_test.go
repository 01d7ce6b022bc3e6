package ui

import (
	"strings"
	"testing"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		p            float64
		width        int
		full, spaces int
	}{
		{0, 10, 0, 10},
		{0.5, 10, 5, 5},
		{0.96, 10, 10, 0},
		{1.7, 4, 4, 0},
		{-1, 4, 0, 4},
	}
	for _, tt := range tests {
		bar := ProgressBar(tt.p, tt.width)
		if got := strings.Count(bar, "█"); got != tt.full {
			t.Errorf("ProgressBar(%v, %d) filled = %d, want %d", tt.p, tt.width, got, tt.full)
		}
		if got := strings.Count(bar, "░"); got != tt.spaces {
			t.Errorf("ProgressBar(%v, %d) empty = %d, want %d", tt.p, tt.width, got, tt.spaces)
		}
	}
	if ProgressBar(0.5, 0) != "" {
		t.Fatal("zero width must render nothing")
	}
}

func TestHeading(t *testing.T) {
	if got := Heading(" 🎯 ", "Ciljevi"); !strings.Contains(got, "🎯 Ciljevi") {
		t.Fatalf("heading = %q", got)
	}
	if got := LabelValue("XP", 120); !strings.Contains(got, "XP:") || !strings.Contains(got, "120") {
		t.Fatalf("label = %q", got)
	}
}
