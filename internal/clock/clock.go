// Package clock turns the host's timestamp stream into per-frame deltas.
//
// Timestamps are monotonic floats on a host-chosen epoch and unit. The first
// tick only establishes a baseline. Later ticks yield max(0, ts-last), and the
// baseline always moves to the newest timestamp so a host that briefly goes
// backward does not freeze time afterwards. Missed frames are neither
// interpolated nor extrapolated.
package clock

// Clock is owned by a single engine and is not safe for concurrent use.
type Clock struct {
	last    float64
	started bool
	delta   float64
	elapsed float64
	frames  uint64
	clamped uint64
}

// Tick records a timestamp and returns the elapsed time since the previous
// one. Callers must reject non-finite timestamps before calling Tick.
func (c *Clock) Tick(ts float64) float64 {
	c.frames++
	if !c.started {
		c.started = true
		c.last = ts
		c.delta = 0
		return 0
	}

	d := ts - c.last
	if d < 0 {
		d = 0
		c.clamped++
	}
	c.last = ts
	c.delta = d
	c.elapsed += d
	return d
}

// Snapshot is a point-in-time copy of a clock.
type Snapshot struct {
	Last    float64
	Started bool
	Delta   float64
	Elapsed float64
	Frames  uint64
	// Clamped counts ticks whose timestamp went backward.
	Clamped uint64
}

func (c *Clock) Snapshot() Snapshot {
	return Snapshot{
		Last:    c.last,
		Started: c.started,
		Delta:   c.delta,
		Elapsed: c.elapsed,
		Frames:  c.frames,
		Clamped: c.clamped,
	}
}

func (c *Clock) Elapsed() float64 { return c.elapsed }
