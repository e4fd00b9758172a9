package metrics

import "math"

// Energy is the mean kinetic energy of the fluid across frames.
type Energy struct {
	total   float64
	peak    float64
	samples int
}

func NewEnergy() *Energy { return &Energy{} }

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(s Sample) {
	e.total += s.KineticEnergy
	e.peak = math.Max(e.peak, s.KineticEnergy)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Peak() float64 { return e.peak }

func (e *Energy) Reset() {
	e.total = 0
	e.peak = 0
	e.samples = 0
}
