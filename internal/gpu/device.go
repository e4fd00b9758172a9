package gpu

import (
	"errors"
	"fmt"
	"sync/atomic"
)

const DefaultMaxTextureSize = 16384

var (
	// ErrTooLarge indicates a texture dimension beyond the device limit.
	ErrTooLarge = errors.New("gpu: resource exceeds device limits")

	// ErrInvalidSize indicates a non-positive resource dimension.
	ErrInvalidSize = errors.New("gpu: invalid resource size")

	// ErrReleased indicates a resource released twice or on the wrong device.
	ErrReleased = errors.New("gpu: resource already released")
)

type Format uint8

const (
	FormatRGBA8 Format = iota + 1
	FormatRG32F
	FormatR32F
)

func (f Format) Channels() int {
	switch f {
	case FormatRGBA8:
		return 4
	case FormatRG32F:
		return 2
	case FormatR32F:
		return 1
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatRG32F:
		return "rg32f"
	case FormatR32F:
		return "r32f"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// Resource is anything a Device allocates.
type Resource interface {
	ID() uint64
	Label() string
	Bytes() int
}

type Device interface {
	Name() string
	MaxTextureSize() int
	NewTexture(label string, width, height int, format Format) (*Texture, error)
	NewBuffer(label string, n int) (*Buffer, error)
	Release(r Resource) error
	// Live is the number of allocated, unreleased resources.
	Live() int64
	// Allocations is the total number of successful allocations.
	Allocations() uint64
}

// Texture is a 2D image. RGBA8 textures use U8; float formats use F32.
type Texture struct {
	id            uint64
	label         string
	Width, Height int
	Format        Format
	U8            []uint8
	F32           []float32
	released      atomic.Bool
	owner         *CPUDevice
}

func (t *Texture) ID() uint64    { return t.id }
func (t *Texture) Label() string { return t.label }

func (t *Texture) Bytes() int {
	if t.U8 != nil {
		return len(t.U8)
	}
	return len(t.F32) * 4
}

// Stride is the number of values per row.
func (t *Texture) Stride() int { return t.Width * t.Format.Channels() }

// Buffer is a flat float array.
type Buffer struct {
	id       uint64
	label    string
	Data     []float32
	released atomic.Bool
	owner    *CPUDevice
}

func (b *Buffer) ID() uint64    { return b.id }
func (b *Buffer) Label() string { return b.label }
func (b *Buffer) Bytes() int    { return len(b.Data) * 4 }
