package metrics

import "math"

// Stability is the fraction of frames whose kinetic energy stayed finite and
// under threshold.
type Stability struct {
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(sample Sample) {
	s.samples++
	e := sample.KineticEnergy
	if math.IsNaN(e) || math.IsInf(e, 0) || e > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
