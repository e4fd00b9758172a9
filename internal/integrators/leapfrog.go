package integrators

import "github.com/piee-kun/flux-screensavers/internal/dynamo"

// Leapfrog is a kick-drift-kick stepper for second-order systems whose state
// is laid out as [positions..., velocities...]. It is the engine default.
type Leapfrog struct {
	mid dynamo.State
	out outputs
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	l.mid = grow(l.mid, n)
	result := l.out.next(n)

	// kick
	dx := sys.Derive(x, u, t)
	for i := half; i < n; i++ {
		l.mid[i] = x[i] + 0.5*dt*dx[i]
	}
	// drift
	for i := 0; i < half; i++ {
		result[i] = x[i] + dt*l.mid[half+i]
		l.mid[i] = result[i]
	}
	// kick
	dx = sys.Derive(l.mid, u, t+dt)
	for i := half; i < n; i++ {
		result[i] = l.mid[i] + 0.5*dt*dx[i]
	}
	return result
}
