// Package binding exposes engines to foreign hosts through opaque handles.
//
// A Handle is a non-zero integer that names one engine in an Arena. Zero is
// never a valid handle, so C and JavaScript hosts can use it to signal a
// failed create. Handles carry a generation: once an engine is destroyed its
// handle stays invalid even after the slot is reused.
//
// Passing a handle that is zero, unknown or already destroyed is a host bug
// and panics with ErrInvalidHandle. Destroying a handle twice is the same
// bug and is not silently ignored.
//
// The arena's table is safe for concurrent use, so surfaces may be created
// and destroyed from different threads. Each engine is still single-owner:
// calls on one handle must be sequential.
package binding

import (
	"errors"
	"sync"

	"github.com/piee-kun/flux-screensavers/internal/engine"
	"github.com/piee-kun/flux-screensavers/internal/geometry"
)

// ErrInvalidHandle is the panic value for a handle that names no live engine.
var ErrInvalidHandle = errors.New("binding: invalid handle")

type Handle uint64

func makeHandle(slot int, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(slot+1))
}

func (h Handle) slot() int      { return int(uint32(h)) - 1 }
func (h Handle) gen() uint32    { return uint32(h >> 32) }
func (h Handle) IsZero() bool   { return h == 0 }
func (h Handle) Uint64() uint64 { return uint64(h) }

type entry struct {
	engine *engine.Engine
	gen    uint32
	valid  bool
}

// Arena owns a table of engines.
type Arena struct {
	mu       sync.Mutex
	entries  []entry
	freeList []int
	live     int
	lastErr  error
	opts     []engine.Option
}

// Default is the process-wide arena used by the C and WASM exports.
var Default = NewArena()

// NewArena returns an empty arena. opts are applied to every engine it
// creates.
func NewArena(opts ...engine.Option) *Arena {
	return &Arena{
		entries:  make([]entry, 0, 4),
		freeList: make([]int, 0, 4),
		opts:     opts,
	}
}

// Create builds an engine for a surface with an explicit physical size.
// settings may be nil for the defaults.
func (a *Arena) Create(logicalWidth, logicalHeight, physicalWidth, physicalHeight float64, settings *string) (Handle, error) {
	return a.create(geometry.Size{Width: logicalWidth, Height: logicalHeight}, geometry.Physical(physicalWidth, physicalHeight), settings)
}

// CreateWithPixelRatio builds an engine for a surface described by a device
// pixel ratio.
func (a *Arena) CreateWithPixelRatio(logicalWidth, logicalHeight, pixelRatio float64, settings *string) (Handle, error) {
	return a.create(geometry.Size{Width: logicalWidth, Height: logicalHeight}, geometry.PixelRatio(pixelRatio), settings)
}

func (a *Arena) create(logical geometry.Size, d geometry.Descriptor, settings *string) (Handle, error) {
	e, err := engine.New(logical, d, settings, a.opts...)
	if err != nil {
		a.setErr(err)
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var slot int
	if n := len(a.freeList); n > 0 {
		slot = a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
	} else {
		a.entries = append(a.entries, entry{})
		slot = len(a.entries) - 1
	}

	ent := &a.entries[slot]
	ent.gen++
	if ent.gen == 0 {
		ent.gen = 1
	}
	ent.engine = e
	ent.valid = true
	a.live++
	return makeHandle(slot, ent.gen), nil
}

// Animate advances the engine to timestamp, in milliseconds, and draws.
func (a *Arena) Animate(h Handle, timestamp float64) error {
	return a.track(a.Engine(h).Animate(timestamp))
}

// Resize moves the engine to an explicit physical geometry.
func (a *Arena) Resize(h Handle, logicalWidth, logicalHeight, physicalWidth, physicalHeight float64) error {
	e := a.Engine(h)
	return a.track(e.Resize(geometry.Size{Width: logicalWidth, Height: logicalHeight}, geometry.Physical(physicalWidth, physicalHeight)))
}

// ResizeWithPixelRatio moves the engine to a ratio-derived geometry.
func (a *Arena) ResizeWithPixelRatio(h Handle, logicalWidth, logicalHeight, pixelRatio float64) error {
	e := a.Engine(h)
	return a.track(e.Resize(geometry.Size{Width: logicalWidth, Height: logicalHeight}, geometry.PixelRatio(pixelRatio)))
}

// Destroy releases the engine and invalidates its handle.
func (a *Arena) Destroy(h Handle) {
	a.release(h).Destroy()
}

// release detaches the engine from its slot. The lock is dropped even when
// lookup panics, so a recovered misuse leaves the arena usable.
func (a *Arena) release(h Handle) *engine.Engine {
	a.mu.Lock()
	defer a.mu.Unlock()

	ent := a.lookup(h)
	e := ent.engine
	ent.engine = nil
	ent.valid = false
	a.freeList = append(a.freeList, h.slot())
	a.live--
	return e
}

// Engine returns the engine a handle names.
func (a *Arena) Engine(h Handle) *engine.Engine {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lookup(h).engine
}

// lookup must be called with mu held.
func (a *Arena) lookup(h Handle) *entry {
	slot := h.slot()
	if h == 0 || slot < 0 || slot >= len(a.entries) {
		panic(ErrInvalidHandle)
	}
	ent := &a.entries[slot]
	if !ent.valid || ent.gen != h.gen() {
		panic(ErrInvalidHandle)
	}
	return ent
}

// Len returns the number of live engines.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// LastError returns the most recent error from a create, animate or resize
// call on this arena. Successful calls do not clear it.
func (a *Arena) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Close destroys every live engine.
func (a *Arena) Close() {
	a.mu.Lock()
	var engines []*engine.Engine
	for i := range a.entries {
		ent := &a.entries[i]
		if ent.valid {
			engines = append(engines, ent.engine)
			ent.engine = nil
			ent.valid = false
			a.freeList = append(a.freeList, i)
		}
	}
	a.live = 0
	a.mu.Unlock()

	for _, e := range engines {
		e.Destroy()
	}
}

func (a *Arena) track(err error) error {
	if err != nil {
		a.setErr(err)
	}
	return err
}

func (a *Arena) setErr(err error) {
	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()
}
