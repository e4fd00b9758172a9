// Package dynamo provides the simulation primitives the engine steps every frame.
//
// The package defines the small set of interfaces shared by the fluid model and
// the integrators:
//
//   - [State]: flat vector holding the simulated quantities
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper interface
//   - [Configurable]: runtime parameter access
//
// # Example
//
//	fluid := physics.NewFluid(physics.DefaultFluidParams(), 16.0/9.0)
//	integ := integrators.NewLeapfrog()
//	x := fluid.DefaultState()
//	x = integ.Step(fluid, x, nil, 0, 1.0/60)
//
// # Thread Safety
//
// Systems and integrators keep scratch buffers and are NOT thread-safe. Each
// engine instance owns its own pair. [ParallelFor] may be used inside a single
// Derive call to split independent work.
package dynamo
