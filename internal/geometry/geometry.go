package geometry

import (
	"fmt"
	"math"
)

// Size is a logical surface size in application units.
type Size struct {
	Width, Height float64
}

type descriptorKind uint8

const (
	kindPhysical descriptorKind = iota + 1
	kindRatio
)

// Descriptor is the physical half of a surface description: either an
// explicit device-pixel size or a pixel ratio. The zero Descriptor is invalid.
type Descriptor struct {
	kind          descriptorKind
	width, height float64
	ratio         float64
}

// Physical describes a surface by its size in device pixels.
func Physical(width, height float64) Descriptor {
	return Descriptor{kind: kindPhysical, width: width, height: height}
}

// PixelRatio describes a surface by its device scale factor.
func PixelRatio(ratio float64) Descriptor {
	return Descriptor{kind: kindRatio, ratio: ratio}
}

func (d Descriptor) String() string {
	switch d.kind {
	case kindPhysical:
		return fmt.Sprintf("physical(%gx%g)", d.width, d.height)
	case kindRatio:
		return fmt.Sprintf("ratio(%g)", d.ratio)
	default:
		return "invalid"
	}
}

// Geometry is the canonical surface description an engine sizes its
// resources from.
type Geometry struct {
	LogicalWidth   float64
	LogicalHeight  float64
	PhysicalWidth  int
	PhysicalHeight int
}

// New validates a logical size and descriptor and normalizes them. Invalid
// values are reported, never clamped.
func New(logical Size, d Descriptor) (Geometry, error) {
	if err := positive("logical width", logical.Width); err != nil {
		return Geometry{}, err
	}
	if err := positive("logical height", logical.Height); err != nil {
		return Geometry{}, err
	}

	var pw, ph float64
	switch d.kind {
	case kindPhysical:
		if err := positive("physical width", d.width); err != nil {
			return Geometry{}, err
		}
		if err := positive("physical height", d.height); err != nil {
			return Geometry{}, err
		}
		pw, ph = d.width, d.height
	case kindRatio:
		if err := positive("pixel ratio", d.ratio); err != nil {
			return Geometry{}, err
		}
		pw, ph = logical.Width*d.ratio, logical.Height*d.ratio
	default:
		return Geometry{}, &Error{Field: "descriptor", Value: math.NaN(), Reason: "no physical size or pixel ratio"}
	}

	w, err := pixels("physical width", pw)
	if err != nil {
		return Geometry{}, err
	}
	h, err := pixels("physical height", ph)
	if err != nil {
		return Geometry{}, err
	}

	return Geometry{
		LogicalWidth:   logical.Width,
		LogicalHeight:  logical.Height,
		PhysicalWidth:  w,
		PhysicalHeight: h,
	}, nil
}

// Aspect is the physical width over height.
func (g Geometry) Aspect() float64 {
	return float64(g.PhysicalWidth) / float64(g.PhysicalHeight)
}

// Scale returns the effective device pixels per logical unit on each axis.
func (g Geometry) Scale() (x, y float64) {
	return float64(g.PhysicalWidth) / g.LogicalWidth, float64(g.PhysicalHeight) / g.LogicalHeight
}

// IsZero reports whether g is the zero Geometry, which no valid input produces.
func (g Geometry) IsZero() bool {
	return g == Geometry{}
}

func (g Geometry) String() string {
	return fmt.Sprintf("%gx%g@%dx%d", g.LogicalWidth, g.LogicalHeight, g.PhysicalWidth, g.PhysicalHeight)
}

func positive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &Error{Field: field, Value: v, Reason: "not finite"}
	}
	if v <= 0 {
		return &Error{Field: field, Value: v, Reason: "not positive"}
	}
	return nil
}

func pixels(field string, v float64) (int, error) {
	if math.IsInf(v, 0) || v > math.MaxInt32 {
		return 0, &Error{Field: field, Value: v, Reason: "too large"}
	}
	px := int(math.Round(v))
	if px < 1 {
		return 0, &Error{Field: field, Value: v, Reason: "rounds to zero pixels"}
	}
	return px, nil
}
