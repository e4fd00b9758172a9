package dynamo

import "math"

// SineTable samples one period of sin for the noise field, which evaluates
// two sin/cos pairs per particle, per channel, per force evaluation.
// Arguments are reduced in turns, so phases that grow with simulated time
// stay accurate, and cos reads the same table a quarter turn ahead.
type SineTable struct {
	v       []float64
	quarter int
}

// DefaultSineTable is accurate to about 3e-7 after interpolation.
var DefaultSineTable = NewSineTable(4096)

// NewSineTable samples n points per period. n is rounded up to a multiple of
// four so the quarter-turn offset is exact.
func NewSineTable(n int) *SineTable {
	n = max(4, (n+3)/4*4)
	v := make([]float64, n+1)
	for i := range v {
		v[i] = math.Sin(2 * math.Pi * float64(i) / float64(n))
	}
	return &SineTable{v: v, quarter: n / 4}
}

func (t *SineTable) size() int { return len(t.v) - 1 }

// at interpolates the table at a position measured in samples, in [0, n).
func (t *SineTable) at(pos float64) float64 {
	i := int(pos)
	frac := pos - float64(i)
	return t.v[i] + (t.v[i+1]-t.v[i])*frac
}

// SinCos returns sin(x) and cos(x). A non-finite x yields NaNs rather than a
// table index, so a diverged fluid state is caught by State.IsValid.
func (t *SineTable) SinCos(x float64) (sin, cos float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return math.NaN(), math.NaN()
	}
	turns := x / (2 * math.Pi)
	turns -= math.Floor(turns)

	n := t.size()
	pos := turns * float64(n)
	if pos >= float64(n) {
		pos = 0
	}
	cpos := pos + float64(t.quarter)
	if cpos >= float64(n) {
		cpos -= float64(n)
	}
	return t.at(pos), t.at(cpos)
}

// FastSinCos uses DefaultSineTable.
func FastSinCos(x float64) (float64, float64) {
	return DefaultSineTable.SinCos(x)
}
