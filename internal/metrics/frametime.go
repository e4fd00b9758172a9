package metrics

import (
	"sort"
	"time"
)

// FrameTime records how long each animate call took. Value is the mean in
// milliseconds.
type FrameTime struct {
	samples []float64
}

func NewFrameTime() *FrameTime { return &FrameTime{} }

func (f *FrameTime) Name() string { return "frame_ms" }

func (f *FrameTime) Observe(s Sample) {
	f.samples = append(f.samples, float64(s.Wall)/float64(time.Millisecond))
}

func (f *FrameTime) Value() float64 {
	if len(f.samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range f.samples {
		sum += v
	}
	return sum / float64(len(f.samples))
}

// Percentile returns the p-th percentile (0-100) frame time in milliseconds.
func (f *FrameTime) Percentile(p float64) float64 {
	if len(f.samples) == 0 {
		return 0
	}
	sorted := append([]float64(nil), f.samples...)
	sort.Float64s(sorted)
	idx := int(p / 100 * float64(len(sorted)-1))
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

// Series returns the recorded frame times in order.
func (f *FrameTime) Series() []float64 {
	return append([]float64(nil), f.samples...)
}

func (f *FrameTime) Reset() {
	f.samples = f.samples[:0]
}
