package gpu

import (
	"fmt"
	"sync/atomic"
)

// CPUDevice backs resources with Go slices. Counters are atomic so one device
// may be shared by several engines.
type CPUDevice struct {
	maxTexture  int
	nextID      atomic.Uint64
	live        atomic.Int64
	allocations atomic.Uint64
	liveBytes   atomic.Int64
}

func NewCPUDevice(maxTextureSize int) *CPUDevice {
	if maxTextureSize <= 0 {
		maxTextureSize = DefaultMaxTextureSize
	}
	return &CPUDevice{maxTexture: maxTextureSize}
}

func (d *CPUDevice) Name() string        { return "cpu" }
func (d *CPUDevice) MaxTextureSize() int { return d.maxTexture }
func (d *CPUDevice) Live() int64         { return d.live.Load() }
func (d *CPUDevice) Allocations() uint64 { return d.allocations.Load() }

// LiveBytes is the memory held by unreleased resources.
func (d *CPUDevice) LiveBytes() int64 { return d.liveBytes.Load() }

func (d *CPUDevice) NewTexture(label string, width, height int, format Format) (*Texture, error) {
	if width < 1 || height < 1 || format.Channels() == 0 {
		return nil, fmt.Errorf("texture %q %dx%d %s: %w", label, width, height, format, ErrInvalidSize)
	}
	if width > d.maxTexture || height > d.maxTexture {
		return nil, fmt.Errorf("texture %q %dx%d exceeds %d: %w", label, width, height, d.maxTexture, ErrTooLarge)
	}

	t := &Texture{
		id:     d.nextID.Add(1),
		label:  label,
		Width:  width,
		Height: height,
		Format: format,
		owner:  d,
	}
	n := width * height * format.Channels()
	if format == FormatRGBA8 {
		t.U8 = make([]uint8, n)
	} else {
		t.F32 = make([]float32, n)
	}
	d.track(t.Bytes())
	return t, nil
}

func (d *CPUDevice) NewBuffer(label string, n int) (*Buffer, error) {
	if n < 1 {
		return nil, fmt.Errorf("buffer %q len %d: %w", label, n, ErrInvalidSize)
	}
	if n > d.maxTexture*d.maxTexture {
		return nil, fmt.Errorf("buffer %q len %d: %w", label, n, ErrTooLarge)
	}
	b := &Buffer{
		id:    d.nextID.Add(1),
		label: label,
		Data:  make([]float32, n),
		owner: d,
	}
	d.track(b.Bytes())
	return b, nil
}

func (d *CPUDevice) track(bytes int) {
	d.live.Add(1)
	d.allocations.Add(1)
	d.liveBytes.Add(int64(bytes))
}

func (d *CPUDevice) Release(r Resource) error {
	switch res := r.(type) {
	case *Texture:
		if res.owner != d || res.released.Swap(true) {
			return fmt.Errorf("texture %q: %w", res.label, ErrReleased)
		}
		d.liveBytes.Add(-int64(res.Bytes()))
		res.U8, res.F32 = nil, nil
	case *Buffer:
		if res.owner != d || res.released.Swap(true) {
			return fmt.Errorf("buffer %q: %w", res.label, ErrReleased)
		}
		d.liveBytes.Add(-int64(res.Bytes()))
		res.Data = nil
	default:
		return fmt.Errorf("%T: %w", r, ErrReleased)
	}
	d.live.Add(-1)
	return nil
}
