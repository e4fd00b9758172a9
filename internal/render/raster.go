package render

import (
	"math"

	"github.com/piee-kun/flux-screensavers/internal/gpu"
	"github.com/piee-kun/flux-screensavers/internal/settings"
)

// strokeLine draws a line of the given thickness by stamping squares along a
// DDA walk.
func strokeLine(fb *gpu.Texture, x0, y0, x1, y1 float64, thickness int, c settings.RGB, alpha float64) {
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	if steps < 1 {
		steps = 1
	}
	sx, sy := (x1-x0)/float64(steps), (y1-y0)/float64(steps)
	x, y := x0, y0
	for i := 0; i <= steps; i++ {
		stamp(fb, int(x), int(y), thickness, c, alpha)
		x += sx
		y += sy
	}
}

func stamp(fb *gpu.Texture, cx, cy, size int, c settings.RGB, alpha float64) {
	half := size / 2
	for y := cy - half; y < cy-half+size; y++ {
		for x := cx - half; x < cx-half+size; x++ {
			blend(fb, x, y, c, alpha)
		}
	}
}

func blend(fb *gpu.Texture, x, y int, c settings.RGB, alpha float64) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return
	}
	i := (y*fb.Width + x) * 4
	px := fb.U8[i : i+4]
	px[0] = mix(px[0], c.R, alpha)
	px[1] = mix(px[1], c.G, alpha)
	px[2] = mix(px[2], c.B, alpha)
	px[3] = 255
}

func mix(dst uint8, src, alpha float64) uint8 {
	return toByte(float64(dst)/255*(1-alpha) + src*alpha)
}

func toByte(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Luma returns the brightness of a framebuffer pixel in [0, 1].
func Luma(fb *gpu.Texture, x, y int) float64 {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return 0
	}
	i := (y*fb.Width + x) * 4
	return (0.2126*float64(fb.U8[i]) + 0.7152*float64(fb.U8[i+1]) + 0.0722*float64(fb.U8[i+2])) / 255
}
