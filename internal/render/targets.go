package render

import (
	"errors"

	"github.com/piee-kun/flux-screensavers/internal/geometry"
	"github.com/piee-kun/flux-screensavers/internal/gpu"
)

// lineStride is the number of floats per flow line: smoothed direction (2),
// opacity and width.
const lineStride = 4

// Targets is the set of size-dependent resources one engine renders with.
// It is allocated and released as a unit.
type Targets struct {
	Layout      geometry.Layout
	Framebuffer *gpu.Texture // physical size, rgba8
	Velocity    *gpu.Texture // fluid grid, rg32f
	Density     *gpu.Texture // fluid grid, r32f
	Lines       *gpu.Buffer  // line grid * lineStride
}

// Allocate creates every target for a layout. On failure, anything already
// allocated is released before returning.
func Allocate(dev gpu.Device, l geometry.Layout) (*Targets, error) {
	t := &Targets{Layout: l}
	var err error

	if t.Framebuffer, err = dev.NewTexture("framebuffer", l.Framebuffer.Width, l.Framebuffer.Height, gpu.FormatRGBA8); err != nil {
		return nil, errors.Join(err, t.Release(dev))
	}
	if t.Velocity, err = dev.NewTexture("velocity", l.Fluid.Width, l.Fluid.Height, gpu.FormatRG32F); err != nil {
		return nil, errors.Join(err, t.Release(dev))
	}
	if t.Density, err = dev.NewTexture("density", l.Fluid.Width, l.Fluid.Height, gpu.FormatR32F); err != nil {
		return nil, errors.Join(err, t.Release(dev))
	}
	if t.Lines, err = dev.NewBuffer("lines", l.Lines.Area()*lineStride); err != nil {
		return nil, errors.Join(err, t.Release(dev))
	}
	return t, nil
}

// Release returns every allocated target to the device. It is safe on a
// partially allocated set.
func (t *Targets) Release(dev gpu.Device) error {
	var errs []error
	for _, r := range t.resources() {
		errs = append(errs, dev.Release(r))
	}
	t.Framebuffer, t.Velocity, t.Density, t.Lines = nil, nil, nil, nil
	return errors.Join(errs...)
}

func (t *Targets) resources() []gpu.Resource {
	var out []gpu.Resource
	if t.Framebuffer != nil {
		out = append(out, t.Framebuffer)
	}
	if t.Velocity != nil {
		out = append(out, t.Velocity)
	}
	if t.Density != nil {
		out = append(out, t.Density)
	}
	if t.Lines != nil {
		out = append(out, t.Lines)
	}
	return out
}
