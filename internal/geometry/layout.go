package geometry

import "math"

// Extent is a two dimensional size in texels or cells.
type Extent struct {
	Width, Height int
}

func (e Extent) Area() int { return e.Width * e.Height }

// Layout is the set of size-dependent dimensions derived from a geometry.
type Layout struct {
	// Framebuffer matches the physical surface.
	Framebuffer Extent
	// Fluid is the velocity field resolution: fluidSize on the short side,
	// stretched by the aspect ratio on the long side.
	Fluid Extent
	// Lines is the grid of flow lines, spaced in logical units.
	Lines Extent
}

// NewLayout derives resource dimensions from a geometry. fluidSize and
// gridSpacing must already be validated as positive.
func NewLayout(g Geometry, fluidSize int, gridSpacing float64) Layout {
	aspect := g.Aspect()
	fluid := Extent{Width: fluidSize, Height: fluidSize}
	if aspect >= 1 {
		fluid.Width = atLeastOne(math.Round(float64(fluidSize) * aspect))
	} else {
		fluid.Height = atLeastOne(math.Round(float64(fluidSize) / aspect))
	}

	return Layout{
		Framebuffer: Extent{Width: g.PhysicalWidth, Height: g.PhysicalHeight},
		Fluid:       fluid,
		Lines: Extent{
			Width:  atLeastOne(math.Floor(g.LogicalWidth / gridSpacing)),
			Height: atLeastOne(math.Floor(g.LogicalHeight / gridSpacing)),
		},
	}
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}
