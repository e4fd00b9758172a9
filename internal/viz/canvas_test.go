package viz

import (
	"strings"
	"testing"

	"github.com/piee-kun/flux-screensavers/internal/gpu"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(1, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if got := c.Grid[0][0]; got != blank|0x1|0x80 {
		t.Errorf("cell = %U, want %U", got, blank|0x1|0x80)
	}
	if got := c.Grid[0][1]; got != blank {
		t.Errorf("untouched cell = %U, want blank", got)
	}
	if c.Lit() != 2 {
		t.Errorf("Lit() = %d, want 2", c.Lit())
	}
}

func TestCanvasPaint(t *testing.T) {
	dev := gpu.NewCPUDevice(64)
	fb, err := dev.NewTexture("fb", 4, 4, gpu.FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}
	// Light the top-left pixel red and the bottom-right pixel dim gray.
	copy(fb.U8[0:4], []uint8{255, 0, 0, 255})
	copy(fb.U8[(3*4+3)*4:], []uint8{10, 10, 10, 255})

	c := NewCanvas(2, 1)
	c.Paint(fb, 0.12)

	if c.Lit() != 1 {
		t.Fatalf("Lit() = %d, want 1", c.Lit())
	}
	if got := c.Colors[0][0]; got != "#ff0000" {
		t.Errorf("color = %q, want #ff0000", got)
	}
	if c.Colors[0][1] != "" {
		t.Errorf("dim cell colored %q", c.Colors[0][1])
	}

	c.Clear()
	if c.Lit() != 0 {
		t.Errorf("Lit() after Clear = %d", c.Lit())
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != strings.Repeat(string(rune(blank)), 3) {
		t.Errorf("line = %q", lines[0])
	}
}

func TestHexHelpers(t *testing.T) {
	if got := hexColor(255, 128, -4); got != "#ff8000" {
		t.Errorf("hexColor = %s, want #ff8000", got)
	}
	r, g, b := parseHex("#0a0B0c")
	if r != 10 || g != 11 || b != 12 {
		t.Errorf("parseHex = %d,%d,%d", r, g, b)
	}
	if r, _, _ := parseHex("bogus"); r != 255 {
		t.Errorf("parseHex fallback = %d, want 255", r)
	}
}
