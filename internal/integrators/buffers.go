package integrators

import "github.com/piee-kun/flux-screensavers/internal/dynamo"

// outputs alternates between two result buffers so a stepper never writes
// into the state it was handed. A returned state stays valid until the
// second Step after it.
type outputs struct {
	buf [2]dynamo.State
	cur int
}

func (o *outputs) next(n int) dynamo.State {
	o.cur ^= 1
	if len(o.buf[o.cur]) != n {
		o.buf[o.cur] = make(dynamo.State, n)
	}
	return o.buf[o.cur]
}

// axpy sets dst = x + h*k.
func axpy(dst, x, k dynamo.State, h float64) {
	for i := range dst {
		dst[i] = x[i] + h*k[i]
	}
}

func grow(s dynamo.State, n int) dynamo.State {
	if len(s) != n {
		return make(dynamo.State, n)
	}
	return s
}
