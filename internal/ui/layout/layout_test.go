package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"hello", 0, ""},
		{"hello", -1, ""},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in, tt.n); got != tt.want {
			t.Errorf("Clamp(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestSizeThresholds(t *testing.T) {
	if !IsTooSmall(MinWidth-1, MinHeight) || !IsTooSmall(MinWidth, MinHeight-1) {
		t.Error("below minimum should be too small")
	}
	if IsTooSmall(MinWidth, MinHeight) {
		t.Error("minimum size should fit")
	}
	if !IsCompactWidth(CompactWidthThreshold-1) || IsCompactWidth(CompactWidthThreshold) {
		t.Error("compact width threshold misplaced")
	}
	if !IsCompactHeight(CompactHeightThreshold-1) || IsCompactHeight(CompactHeightThreshold) {
		t.Error("compact height threshold misplaced")
	}
}

func TestRenderHeaderShowsTitleAndStatus(t *testing.T) {
	h := RenderHeader("Learn", "Page 2/5", 100)
	if !strings.Contains(h, "Learn") || !strings.Contains(h, "Page 2/5") {
		t.Errorf("header missing title or status: %q", h)
	}
}

func TestRenderFrameFillsHeight(t *testing.T) {
	out := RenderFrame("head", "body", "foot", 80, 24)
	if got := lipgloss.Height(out); got != 24 {
		t.Errorf("frame height = %d, want 24", got)
	}
}
