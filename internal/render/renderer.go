// Package render draws the fluid into an engine's size-dependent targets.
//
// Each frame the particle velocities are splatted onto the fluid grid, a grid
// of flow lines eases toward the local velocity, and the lines are drawn into
// the framebuffer colored by heading. Debug modes draw the intermediate
// fields instead.
package render

import (
	"math"

	"github.com/piee-kun/flux-screensavers/internal/dynamo"
	"github.com/piee-kun/flux-screensavers/internal/geometry"
	"github.com/piee-kun/flux-screensavers/internal/physics"
	"github.com/piee-kun/flux-screensavers/internal/settings"
)

// FadeInDuration is how long, in clock units, the scene takes to fade in
// from the background color.
const FadeInDuration = 0.3

// Frame carries the timing of the frame being drawn.
type Frame struct {
	Delta   float64
	Elapsed float64
}

type Renderer struct {
	settings *settings.Settings
	palette  settings.Palette
}

func New(s *settings.Settings) *Renderer {
	return &Renderer{settings: s, palette: settings.PaletteFor(s.ColorMode.Preset)}
}

// Draw renders one frame and returns the number of visible flow lines.
func (r *Renderer) Draw(t *Targets, g geometry.Geometry, f *physics.Fluid, x dynamo.State, fr Frame) int {
	splat(t, f, x)
	r.clear(t)

	fade := 1.0
	if fr.Elapsed < FadeInDuration {
		fade = fr.Elapsed / FadeInDuration
	}

	switch r.settings.Mode {
	case settings.ModeDebugFluid:
		r.drawParticles(t, f, x, fade)
		return 0
	case settings.ModeDebugPressure:
		r.drawField(t, fade, func(i int) (float64, float64, float64) {
			d := math.Min(1, float64(t.Density.F32[i])/4)
			return d, d, d
		})
		return 0
	case settings.ModeDebugNoise:
		r.drawField(t, fade, func(i int) (float64, float64, float64) {
			vx, vy := float64(t.Velocity.F32[i*2]), float64(t.Velocity.F32[i*2+1])
			return 0.5 + vx/(2*f.MaxSpeed), 0.5 + vy/(2*f.MaxSpeed), 0.5
		})
		return 0
	}

	r.updateLines(t, f, fr.Delta)
	return r.drawLines(t, g, fade)
}

// splat accumulates particle velocities onto the fluid grid with a linear
// falloff. The grid is in screen orientation: row 0 is the top.
func splat(t *Targets, f *physics.Fluid, x dynamo.State) {
	vel, dens := t.Velocity, t.Density
	fw, fh := vel.Width, vel.Height
	clear(vel.F32)
	clear(dens.F32)

	radius := math.Max(1, float64(fh)*f.H*1.5/f.BoundsY)
	ri := int(math.Ceil(radius))

	for p := 0; p < f.Particles; p++ {
		px, py, vx, vy := f.Particle(x, p)
		cx := px / f.BoundsX * float64(fw)
		cy := (1 - py/f.BoundsY) * float64(fh)

		x0, y0 := int(cx), int(cy)
		for gy := y0 - ri; gy <= y0+ri; gy++ {
			if gy < 0 || gy >= fh {
				continue
			}
			for gx := x0 - ri; gx <= x0+ri; gx++ {
				if gx < 0 || gx >= fw {
					continue
				}
				d := math.Hypot(float64(gx)+0.5-cx, float64(gy)+0.5-cy)
				if d >= radius {
					continue
				}
				w := 1 - d/radius
				i := gy*fw + gx
				dens.F32[i] += float32(w)
				vel.F32[i*2] += float32(w * vx)
				vel.F32[i*2+1] += float32(w * -vy)
			}
		}
	}

	for i, w := range dens.F32 {
		if w > 0 {
			vel.F32[i*2] /= w
			vel.F32[i*2+1] /= w
		}
	}
}

// sample reads the velocity grid bilinearly at normalized coordinates.
func sample(vel []float32, fw, fh int, u, v float64) (float64, float64) {
	fx := u*float64(fw) - 0.5
	fy := v*float64(fh) - 0.5
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	tx, ty := fx-float64(x0), fy-float64(y0)

	at := func(x, y int) (float64, float64) {
		x = clampInt(x, 0, fw-1)
		y = clampInt(y, 0, fh-1)
		i := (y*fw + x) * 2
		return float64(vel[i]), float64(vel[i+1])
	}

	ax, ay := at(x0, y0)
	bx, by := at(x0+1, y0)
	cx, cy := at(x0, y0+1)
	dx, dy := at(x0+1, y0+1)

	top := func(a, b float64) float64 { return a + (b-a)*tx }
	vx := top(ax, bx) + (top(cx, dx)-top(ax, bx))*ty
	vy := top(ay, by) + (top(cy, dy)-top(ay, by))*ty
	return vx, vy
}

func (r *Renderer) updateLines(t *Targets, f *physics.Fluid, delta float64) {
	cols, rows := t.Layout.Lines.Width, t.Layout.Lines.Height
	vel := t.Velocity
	ease := 1 - math.Exp(-delta*8)
	lines := t.Lines.Data

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			u := (float64(col) + 0.5) / float64(cols)
			v := (float64(row) + 0.5) / float64(rows)
			vx, vy := sample(vel.F32, vel.Width, vel.Height, u, v)
			vx, vy = vx/f.MaxSpeed*r.settings.ViewScale, vy/f.MaxSpeed*r.settings.ViewScale

			i := (row*cols + col) * lineStride
			l := lines[i : i+lineStride]
			l[0] += float32((vx - float64(l[0])) * ease)
			l[1] += float32((vy - float64(l[1])) * ease)

			speed := math.Min(1, math.Hypot(float64(l[0]), float64(l[1])))
			l[2] = float32(r.settings.LineBeginOffset + (1-r.settings.LineBeginOffset)*speed)
			l[3] = float32(1 - r.settings.LineVariance*hash01(col, row))
		}
	}
}

func (r *Renderer) drawLines(t *Targets, g geometry.Geometry, fade float64) int {
	cols, rows := t.Layout.Lines.Width, t.Layout.Lines.Height
	sx, sy := g.Scale()
	cellW, cellH := g.LogicalWidth/float64(cols), g.LogicalHeight/float64(rows)
	reach := r.settings.LineLength / settings.DefaultLineLength * math.Max(cellW*sx, cellH*sy) * 1.5
	thickness := max(1, int(math.Round(r.settings.LineWidth*0.1*sx)))

	drawn := 0
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			i := (row*cols + col) * lineStride
			dx, dy := float64(t.Lines.Data[i]), float64(t.Lines.Data[i+1])
			opacity := float64(t.Lines.Data[i+2]) * fade
			length := math.Hypot(dx, dy) * reach * float64(t.Lines.Data[i+3])
			if length < 0.5 || opacity <= 0 {
				continue
			}

			x0 := (float64(col) + 0.5) * cellW * sx
			y0 := (float64(row) + 0.5) * cellH * sy
			n := math.Hypot(dx, dy)
			x1, y1 := x0+dx/n*length, y0+dy/n*length

			c := r.heading(dx, dy)
			strokeLine(t.Framebuffer, x0, y0, x1, y1, thickness, c, opacity)
			drawn++
		}
	}
	return drawn
}

// heading blends the palette's compass colors by line direction. Screen y
// points down, so +dy is south.
func (r *Renderer) heading(dx, dy float64) settings.RGB {
	n := math.Hypot(dx, dy)
	cos, sin := dx/n, dy/n
	weights := [4]float64{math.Max(0, -sin), math.Max(0, cos), math.Max(0, sin), math.Max(0, -cos)}
	colors := [4]settings.RGB{r.palette.North, r.palette.East, r.palette.South, r.palette.West}

	var out settings.RGB
	total := 0.0
	for k, w := range weights {
		out.R += colors[k].R * w
		out.G += colors[k].G * w
		out.B += colors[k].B * w
		total += w
	}
	out.R /= total
	out.G /= total
	out.B /= total
	return out
}

func (r *Renderer) drawParticles(t *Targets, f *physics.Fluid, x dynamo.State, fade float64) {
	fb := t.Framebuffer
	white := settings.RGB{R: 1, G: 1, B: 1}
	for p := 0; p < f.Particles; p++ {
		px, py, _, _ := f.Particle(x, p)
		cx := px / f.BoundsX * float64(fb.Width)
		cy := (1 - py/f.BoundsY) * float64(fb.Height)
		stamp(fb, int(cx), int(cy), 2, white, fade)
	}
}

func (r *Renderer) drawField(t *Targets, fade float64, color func(i int) (float64, float64, float64)) {
	fb, src := t.Framebuffer, t.Density
	for y := 0; y < fb.Height; y++ {
		gy := y * src.Height / fb.Height
		for x := 0; x < fb.Width; x++ {
			gx := x * src.Width / fb.Width
			cr, cg, cb := color(gy*src.Width + gx)
			blend(fb, x, y, settings.RGB{R: cr, G: cg, B: cb}, fade)
		}
	}
}

func (r *Renderer) clear(t *Targets) {
	bg := r.palette.Background
	px := t.Framebuffer.U8
	cr, cg, cb := toByte(bg.R), toByte(bg.G), toByte(bg.B)
	for i := 0; i < len(px); i += 4 {
		px[i], px[i+1], px[i+2], px[i+3] = cr, cg, cb, 255
	}
}

// hash01 is a stable per-cell pseudo random value in [0, 1).
func hash01(x, y int) float64 {
	h := uint32(x)*374761393 + uint32(y)*668265263
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return float64(h) / float64(math.MaxUint32+1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
