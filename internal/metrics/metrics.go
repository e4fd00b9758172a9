// Package metrics accumulates per-frame observations from a running engine.
package metrics

import "time"

// Sample is what a host observes after one animate call.
type Sample struct {
	// Delta is the clock delta the frame advanced by, in milliseconds.
	Delta float64
	// Wall is how long the animate call took.
	Wall          time.Duration
	KineticEnergy float64
	Lines         int
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Set fans each sample out to several metrics.
type Set []Metric

// Default returns the metrics the CLI reports.
func Default() Set {
	return Set{NewFrameTime(), NewEnergy(), NewStability(1e6), NewLineActivity()}
}

func (s Set) Observe(sample Sample) {
	for _, m := range s {
		m.Observe(sample)
	}
}

func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// LineActivity is the mean number of flow lines drawn per frame.
type LineActivity struct {
	sum     int
	samples int
}

func NewLineActivity() *LineActivity { return &LineActivity{} }

func (l *LineActivity) Name() string { return "lines" }

func (l *LineActivity) Observe(s Sample) {
	l.sum += s.Lines
	l.samples++
}

func (l *LineActivity) Value() float64 {
	if l.samples == 0 {
		return 0
	}
	return float64(l.sum) / float64(l.samples)
}

func (l *LineActivity) Reset() {
	l.sum = 0
	l.samples = 0
}
