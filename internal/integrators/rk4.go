package integrators

import "github.com/piee-kun/flux-screensavers/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta stepper.
type RK4 struct {
	k       [4]dynamo.State
	scratch dynamo.State
	out     outputs
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	for i := range r.k {
		r.k[i] = grow(r.k[i], n)
	}
	r.scratch = grow(r.scratch, n)

	// stage i evaluates at x + c[i]*dt*k[i-1]
	c := [4]float64{0, 0.5, 0.5, 1}
	for i := range r.k {
		probe := x
		if i > 0 {
			axpy(r.scratch, x, r.k[i-1], c[i]*dt)
			probe = r.scratch
		}
		copy(r.k[i], sys.Derive(probe, u, t+c[i]*dt))
	}

	result := r.out.next(n)
	h := dt / 6
	k1, k2, k3, k4 := r.k[0], r.k[1], r.k[2], r.k[3]
	for i := range result {
		result[i] = x[i] + h*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result
}
