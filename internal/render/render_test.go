package render

import (
	"errors"
	"testing"

	"github.com/piee-kun/flux-screensavers/internal/geometry"
	"github.com/piee-kun/flux-screensavers/internal/gpu"
	"github.com/piee-kun/flux-screensavers/internal/physics"
	"github.com/piee-kun/flux-screensavers/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, s *settings.Settings) (*gpu.CPUDevice, geometry.Geometry, *Targets) {
	t.Helper()
	g, err := geometry.New(geometry.Size{Width: 300, Height: 200}, geometry.PixelRatio(2))
	require.NoError(t, err)

	dev := gpu.NewCPUDevice(gpu.DefaultMaxTextureSize)
	tg, err := Allocate(dev, geometry.NewLayout(g, s.FluidSize, s.GridSpacing))
	require.NoError(t, err)
	return dev, g, tg
}

func TestAllocate_ReleaseRoundTrip(t *testing.T) {
	dev, _, tg := setup(t, settings.Default())
	assert.Equal(t, int64(4), dev.Live())
	assert.Equal(t, 600, tg.Framebuffer.Width)
	assert.Equal(t, 400, tg.Framebuffer.Height)

	require.NoError(t, tg.Release(dev))
	assert.Equal(t, int64(0), dev.Live())
	assert.Equal(t, int64(0), dev.LiveBytes())
}

func TestAllocate_FailureReleasesPartialSet(t *testing.T) {
	g, err := geometry.New(geometry.Size{Width: 300, Height: 200}, geometry.Physical(600, 400))
	require.NoError(t, err)

	// The framebuffer fits but the fluid grid does not.
	dev := gpu.NewCPUDevice(1000)
	_, err = Allocate(dev, geometry.NewLayout(g, 900, settings.DefaultGridSpacing))
	if !errors.Is(err, gpu.ErrTooLarge) {
		t.Fatalf("Allocate error = %v, want ErrTooLarge", err)
	}
	assert.Equal(t, int64(0), dev.Live())
	assert.Equal(t, uint64(1), dev.Allocations())
}

func TestDraw_FadeStartsAtBackground(t *testing.T) {
	s := settings.Default()
	_, g, tg := setup(t, s)
	f := physics.NewFluid(physics.DefaultFluidParams(), g.Aspect())
	x := f.DefaultState()
	half := f.Particles * 2
	for i := half; i < len(x); i += 2 {
		x[i] = f.MaxSpeed
	}

	New(s).Draw(tg, g, f, x, Frame{Delta: 1, Elapsed: 0})
	for i := 0; i < len(tg.Framebuffer.U8); i += 4 {
		if tg.Framebuffer.U8[i] != 0 || tg.Framebuffer.U8[i+1] != 0 || tg.Framebuffer.U8[i+2] != 0 {
			t.Fatalf("pixel %d not background: %v", i/4, tg.Framebuffer.U8[i:i+4])
		}
	}
}

func TestDraw_MovingFluidDrawsLines(t *testing.T) {
	s := settings.Default()
	_, g, tg := setup(t, s)
	f := physics.NewFluid(physics.DefaultFluidParams(), g.Aspect())
	x := f.DefaultState()
	half := f.Particles * 2
	for i := half; i < len(x); i += 2 {
		x[i] = f.MaxSpeed
	}

	drawn := New(s).Draw(tg, g, f, x, Frame{Delta: 1, Elapsed: 1})
	assert.Positive(t, drawn)

	lit := 0
	for y := 0; y < tg.Framebuffer.Height; y++ {
		for px := 0; px < tg.Framebuffer.Width; px++ {
			if Luma(tg.Framebuffer, px, y) > 0 {
				lit++
			}
		}
	}
	assert.Positive(t, lit)
}

func TestDraw_StillFluidDrawsNothing(t *testing.T) {
	s := settings.Default()
	_, g, tg := setup(t, s)
	f := physics.NewFluid(physics.DefaultFluidParams(), g.Aspect())

	drawn := New(s).Draw(tg, g, f, f.DefaultState(), Frame{Delta: 1, Elapsed: 1})
	assert.Zero(t, drawn)
}

func TestDraw_DebugModes(t *testing.T) {
	for _, mode := range []settings.Mode{settings.ModeDebugFluid, settings.ModeDebugPressure, settings.ModeDebugNoise} {
		t.Run(string(mode), func(t *testing.T) {
			s := settings.Default()
			s.Mode = mode
			_, g, tg := setup(t, s)
			f := physics.NewFluid(physics.DefaultFluidParams(), g.Aspect())

			drawn := New(s).Draw(tg, g, f, f.DefaultState(), Frame{Delta: 0.016, Elapsed: 1})
			assert.Zero(t, drawn)

			lit := false
			for i := 0; i < len(tg.Framebuffer.U8) && !lit; i += 4 {
				lit = tg.Framebuffer.U8[i] > 0
			}
			assert.True(t, lit, "debug view drew nothing")
		})
	}
}

func TestHeadingBlendsCompassColors(t *testing.T) {
	r := New(settings.Default())
	pal := settings.PaletteFor(settings.PresetOriginal)

	assert.Equal(t, pal.East, r.heading(1, 0))
	assert.Equal(t, pal.West, r.heading(-1, 0))
	assert.Equal(t, pal.South, r.heading(0, 1))
	assert.Equal(t, pal.North, r.heading(0, -1))
}

func TestLumaOutOfBounds(t *testing.T) {
	_, _, tg := setup(t, settings.Default())
	assert.Zero(t, Luma(tg.Framebuffer, -1, 0))
	assert.Zero(t, Luma(tg.Framebuffer, 0, tg.Framebuffer.Height))
}
