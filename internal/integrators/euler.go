package integrators

import "github.com/piee-kun/flux-screensavers/internal/dynamo"

// Euler is the explicit first-order stepper. It is only stable for the fluid
// at small timesteps and is kept for comparison runs.
type Euler struct {
	out outputs
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	result := e.out.next(len(x))
	axpy(result, x, sys.Derive(x, u, t), dt)
	return result
}
