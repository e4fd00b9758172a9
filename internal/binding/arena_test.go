package binding

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/piee-kun/flux-screensavers/internal/engine"
	"github.com/piee-kun/flux-screensavers/internal/geometry"
	"github.com/piee-kun/flux-screensavers/internal/gpu"
	"github.com/piee-kun/flux-screensavers/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func small() *string {
	s := `{"particleCount": 32, "fluidSize": 16}`
	return &s
}

func newTestArena(t *testing.T) (*Arena, *gpu.CPUDevice) {
	t.Helper()
	dev := gpu.NewCPUDevice(4096)
	return NewArena(engine.WithDevice(dev)), dev
}

func TestCreateDestroy_NoLeak(t *testing.T) {
	a, dev := newTestArena(t)

	h, err := a.Create(800, 600, 1600, 1200, nil)
	require.NoError(t, err)
	require.False(t, h.IsZero())
	assert.Equal(t, 1, a.Len())

	g := a.Engine(h).Geometry()
	assert.Equal(t, 1600, g.PhysicalWidth)
	assert.Equal(t, 1200, g.PhysicalHeight)

	require.NoError(t, a.Animate(h, 0))
	require.NoError(t, a.Animate(h, 16))
	a.Destroy(h)

	assert.Equal(t, 0, a.Len())
	assert.Equal(t, int64(0), dev.Live())
}

func TestCreateWithPixelRatio_ThenEqualExplicitResize(t *testing.T) {
	a, dev := newTestArena(t)

	h, err := a.CreateWithPixelRatio(300, 200, 2.0, small())
	require.NoError(t, err)
	defer a.Destroy(h)

	allocs := dev.Allocations()
	require.NoError(t, a.Resize(h, 300, 200, 600, 400))
	assert.Equal(t, allocs, dev.Allocations())

	require.NoError(t, a.ResizeWithPixelRatio(h, 300, 200, 2.0))
	assert.Equal(t, allocs, dev.Allocations())

	require.NoError(t, a.ResizeWithPixelRatio(h, 400, 200, 2.0))
	assert.Greater(t, dev.Allocations(), allocs)
	assert.Equal(t, 800, a.Engine(h).Geometry().PhysicalWidth)
}

func TestCreate_FailureReturnsZeroHandle(t *testing.T) {
	a, dev := newTestArena(t)

	h, err := a.Create(0, 600, 0, 1200, nil)
	assert.True(t, h.IsZero())
	assert.ErrorIs(t, err, geometry.ErrInvalidGeometry)
	assert.ErrorIs(t, a.LastError(), geometry.ErrInvalidGeometry)
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, int64(0), dev.Live())

	bad := `"just a string"`
	h, err = a.CreateWithPixelRatio(100, 100, 1, &bad)
	assert.True(t, h.IsZero())
	assert.ErrorIs(t, err, settings.ErrMalformed)
	assert.ErrorIs(t, a.LastError(), settings.ErrMalformed)
}

func TestAnimate_InvalidTimestampRecorded(t *testing.T) {
	a, _ := newTestArena(t)
	h, err := a.CreateWithPixelRatio(64, 64, 1, small())
	require.NoError(t, err)
	defer a.Destroy(h)

	err = a.Animate(h, math.NaN())
	assert.ErrorIs(t, err, engine.ErrInvalidTimestamp)
	assert.True(t, errors.Is(a.LastError(), engine.ErrInvalidTimestamp))
}

func TestInvalidHandlesPanic(t *testing.T) {
	a, _ := newTestArena(t)
	h, err := a.CreateWithPixelRatio(64, 64, 1, small())
	require.NoError(t, err)

	require.PanicsWithValue(t, ErrInvalidHandle, func() { _ = a.Animate(0, 0) })
	require.PanicsWithValue(t, ErrInvalidHandle, func() { _ = a.Animate(h+1000, 0) })

	a.Destroy(h)
	require.PanicsWithValue(t, ErrInvalidHandle, func() { a.Destroy(h) })
	require.PanicsWithValue(t, ErrInvalidHandle, func() { _ = a.Resize(h, 10, 10, 10, 10) })
}

func TestArenaUsableAfterRecoveredMisuse(t *testing.T) {
	a, dev := newTestArena(t)
	h, err := a.CreateWithPixelRatio(64, 64, 1, small())
	require.NoError(t, err)
	a.Destroy(h)

	for _, misuse := range []func(){
		func() { a.Destroy(h) },
		func() { a.Destroy(0) },
		func() { _ = a.Animate(h, 0) },
		func() { _ = a.ResizeWithPixelRatio(h, 10, 10, 1) },
	} {
		require.PanicsWithValue(t, ErrInvalidHandle, misuse)
	}

	done := make(chan int, 1)
	go func() { done <- a.Len() }()
	select {
	case n := <-done:
		assert.Equal(t, 0, n)
	case <-time.After(2 * time.Second):
		t.Fatal("Len blocked after a recovered invalid-handle panic")
	}

	h2, err := a.CreateWithPixelRatio(64, 64, 1, small())
	require.NoError(t, err)
	require.NoError(t, a.Animate(h2, 0))
	a.Destroy(h2)
	assert.Equal(t, 0, a.Len())
	assert.Zero(t, dev.Live())
}

func TestStaleHandleAfterSlotReuse(t *testing.T) {
	a, _ := newTestArena(t)
	h1, err := a.CreateWithPixelRatio(64, 64, 1, small())
	require.NoError(t, err)
	a.Destroy(h1)

	h2, err := a.CreateWithPixelRatio(64, 64, 1, small())
	require.NoError(t, err)
	defer a.Destroy(h2)

	assert.Equal(t, h1.slot(), h2.slot())
	assert.NotEqual(t, h1, h2)
	require.PanicsWithValue(t, ErrInvalidHandle, func() { _ = a.Animate(h1, 0) })
	require.NoError(t, a.Animate(h2, 0))
}

func TestConcurrentCreateDestroy(t *testing.T) {
	a, dev := newTestArena(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				h, err := a.CreateWithPixelRatio(32, 32, 1, small())
				if !assert.NoError(t, err) {
					return
				}
				assert.NoError(t, a.Animate(h, float64(j)))
				a.Destroy(h)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, a.Len())
	assert.Equal(t, int64(0), dev.Live())
}

func TestClose(t *testing.T) {
	a, dev := newTestArena(t)
	for i := 0; i < 3; i++ {
		_, err := a.CreateWithPixelRatio(32, 32, 1, small())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, a.Len())

	a.Close()
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, int64(0), dev.Live())
}

func TestHandleEncoding(t *testing.T) {
	h := makeHandle(0, 1)
	assert.Equal(t, uint64(1<<32|1), h.Uint64())
	assert.Equal(t, 0, h.slot())
	assert.Equal(t, uint32(1), h.gen())
	assert.Equal(t, -1, Handle(0).slot())
}
