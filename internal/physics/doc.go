// Package physics provides the fluid model the engine animates.
//
// [Fluid] implements [dynamo.System] with Smoothed Particle Hydrodynamics in a
// box whose width follows the surface aspect ratio. A divergence-free noise
// field stirs the particles so the scene never settles.
//
// The model is independent of surface resolution: resizing a surface only
// changes the domain aspect via [Fluid.SetAspect], and particle state survives.
//
//	fluid := physics.NewFluid(physics.DefaultFluidParams(), 4.0/3.0)
//	x := fluid.DefaultState()
//	x = integrators.NewLeapfrog().Step(fluid, x, nil, 0, 1.0/60)
//	fluid.Constrain(x)
package physics
