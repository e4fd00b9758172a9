package physics

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/piee-kun/flux-screensavers/internal/dynamo"
)

// NoiseChannel is one octave of the swirling force field that keeps the fluid
// moving. Scale is in cycles per domain height; OffsetIncrement advances the
// pattern per simulated second.
type NoiseChannel struct {
	Scale           float64
	Multiplier      float64
	OffsetIncrement float64
}

type FluidParams struct {
	Particles   int
	H           float64 // smoothing radius
	Rho0        float64 // rest density
	Stiffness   float64
	Viscosity   float64
	Dissipation float64 // linear velocity damping per second
	Mass        float64
	MaxSpeed    float64
	NoiseForce  float64
	Noise       []NoiseChannel
	Seed        int64
}

func DefaultFluidParams() FluidParams {
	return FluidParams{
		Particles:   400,
		H:           3.0,
		Rho0:        0.05,
		Stiffness:   40.0,
		Viscosity:   0.5,
		Dissipation: 0.2,
		Mass:        1.0,
		MaxSpeed:    60.0,
		NoiseForce:  30.0,
		Noise: []NoiseChannel{
			{Scale: 2.5, Multiplier: 1.0, OffsetIncrement: 0.09},
			{Scale: 15.0, Multiplier: 0.7, OffsetIncrement: 0.54},
			{Scale: 30.0, Multiplier: 0.5, OffsetIncrement: 1.08},
		},
		Seed: 1,
	}
}

// DomainHeight is the fixed height of the simulation domain; the width follows
// the surface aspect ratio.
const DomainHeight = 40.0

// Fluid implements Smoothed Particle Hydrodynamics in a rectangular box.
// State layout: [x0, y0, x1, y1, ..., vx0, vy0, vx1, vy1, ...].
type Fluid struct {
	FluidParams
	BoundsX, BoundsY float64

	rho, press []float64
}

func NewFluid(p FluidParams, aspect float64) *Fluid {
	if p.Particles < 1 {
		p.Particles = 1
	}
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		aspect = 1
	}
	return &Fluid{
		FluidParams: p,
		BoundsX:     DomainHeight * aspect,
		BoundsY:     DomainHeight,
		rho:         make([]float64, p.Particles),
		press:       make([]float64, p.Particles),
	}
}

func (f *Fluid) StateDim() int   { return f.Particles * 4 }
func (f *Fluid) ControlDim() int { return 0 }

// kernels because math is hard
func poly6(r2, h2 float64) float64 {
	if r2 > h2 {
		return 0
	}
	return 315.0 / (64.0 * math.Pi * math.Pow(h2, 4.5)) * math.Pow(h2-r2, 3)
}

func spikyGrad(r, h float64) float64 {
	if r > h || r < 1e-6 {
		return 0
	}
	return -45.0 / (math.Pi * math.Pow(h, 6)) * math.Pow(h-r, 2)
}

func viscLap(r, h float64) float64 {
	if r > h {
		return 0
	}
	return 45.0 / (math.Pi * math.Pow(h, 6)) * (h - r)
}

func (f *Fluid) Derive(state dynamo.State, _ dynamo.Control, t float64) dynamo.State {
	n, h2 := f.Particles, f.H*f.H
	half := n * 2
	deriv := make(dynamo.State, n*4)
	pos, vel := state[:half], state[half:]

	// density & pressure
	dynamo.ParallelFor(n, 64, func(start, end int) {
		for i := start; i < end; i++ {
			rho := 0.0
			xi, yi := pos[i*2], pos[i*2+1]
			for j := 0; j < n; j++ {
				dx, dy := xi-pos[j*2], yi-pos[j*2+1]
				if r2 := dx*dx + dy*dy; r2 < h2 {
					rho += f.Mass * poly6(r2, h2)
				}
			}
			f.rho[i] = rho
			f.press[i] = math.Max(0, f.Stiffness*(rho-f.Rho0))
		}
	})

	// forces
	dynamo.ParallelFor(n, 64, func(start, end int) {
		for i := start; i < end; i++ {
			xi, yi := pos[i*2], pos[i*2+1]
			vxi, vyi := vel[i*2], vel[i*2+1]
			rhoI := f.rho[i]

			nx, ny := f.noise(xi, yi, t)
			fx, fy := nx*rhoI, ny*rhoI

			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				dx, dy := xi-pos[j*2], yi-pos[j*2+1]
				dist := math.Sqrt(dx*dx + dy*dy)
				if dist < f.H {
					fp := -f.Mass * (f.press[i] + f.press[j]) / (2 * f.rho[j]) * spikyGrad(dist, f.H)
					if dist > 1e-6 {
						fx += fp * dx / dist
						fy += fp * dy / dist
					}

					fv := f.Viscosity * f.Mass * viscLap(dist, f.H) / f.rho[j]
					fx += fv * (vel[j*2] - vxi)
					fy += fv * (vel[j*2+1] - vyi)
				}
			}

			fx -= f.Dissipation * vxi * rhoI
			fy -= f.Dissipation * vyi * rhoI

			// boundary collision (soft repulsion)
			if xi < 0 {
				fx += 500 * -xi
			}
			if xi > f.BoundsX {
				fx -= 500 * (xi - f.BoundsX)
			}
			if yi < 0 {
				fy += 500 * -yi
			}
			if yi > f.BoundsY {
				fy -= 500 * (yi - f.BoundsY)
			}

			deriv[i*2], deriv[i*2+1] = vxi, vyi
			deriv[half+i*2], deriv[half+i*2+1] = fx/rhoI, fy/rhoI
		}
	})
	return deriv
}

// noise evaluates the curl of sum(sin(a)*sin(b)) over all channels, which is
// divergence free and so stirs the fluid without compressing it.
func (f *Fluid) noise(x, y, t float64) (float64, float64) {
	fx, fy := 0.0, 0.0
	for _, ch := range f.Noise {
		k := ch.Scale * 2 * math.Pi / f.BoundsY
		phase := t * ch.OffsetIncrement
		sa, ca := dynamo.FastSinCos(x*k + phase)
		sb, cb := dynamo.FastSinCos(y*k - phase)
		fx += ch.Multiplier * sa * cb
		fy -= ch.Multiplier * ca * sb
	}
	return fx * f.NoiseForce, fy * f.NoiseForce
}

// DefaultState scatters particles uniformly over the domain at rest.
func (f *Fluid) DefaultState() dynamo.State {
	rng := rand.New(rand.NewSource(f.Seed))
	st := make(dynamo.State, f.Particles*4)
	for i := 0; i < f.Particles; i++ {
		st[i*2] = rng.Float64() * f.BoundsX
		st[i*2+1] = rng.Float64() * f.BoundsY
	}
	return st
}

// Constrain clamps speeds to MaxSpeed and pulls escaped particles back inside
// the domain so a single oversized step cannot blow the state up.
func (f *Fluid) Constrain(state dynamo.State) {
	half := f.Particles * 2
	for i := 0; i < f.Particles; i++ {
		x, y := &state[i*2], &state[i*2+1]
		vx, vy := &state[half+i*2], &state[half+i*2+1]

		if speed := math.Hypot(*vx, *vy); speed > f.MaxSpeed {
			scale := f.MaxSpeed / speed
			*vx *= scale
			*vy *= scale
		}
		*x = clamp(*x, 0, f.BoundsX)
		*y = clamp(*y, 0, f.BoundsY)
	}
}

// SetAspect resizes the domain to a new aspect ratio, rescaling particle
// positions so the flow keeps its shape on the new surface.
func (f *Fluid) SetAspect(state dynamo.State, aspect float64) error {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		return fmt.Errorf("aspect %v: %w", aspect, dynamo.ErrParameterBounds)
	}
	newX := DomainHeight * aspect
	scale := newX / f.BoundsX
	for i := 0; i < f.Particles; i++ {
		state[i*2] *= scale
	}
	f.BoundsX = newX
	return nil
}

// KineticEnergy returns the total kinetic energy of the particles.
func (f *Fluid) KineticEnergy(state dynamo.State) float64 {
	half := f.Particles * 2
	e := 0.0
	for i := half; i < len(state); i++ {
		e += state[i] * state[i]
	}
	return 0.5 * f.Mass * e
}

// Particle returns the position and velocity of particle i.
func (f *Fluid) Particle(state dynamo.State, i int) (x, y, vx, vy float64) {
	half := f.Particles * 2
	return state[i*2], state[i*2+1], state[half+i*2], state[half+i*2+1]
}

func (f *Fluid) GetParams() map[string]float64 {
	return map[string]float64{
		"h": f.H, "rho0": f.Rho0, "stiffness": f.Stiffness,
		"viscosity": f.Viscosity, "dissipation": f.Dissipation, "noise": f.NoiseForce,
	}
}

func (f *Fluid) SetParam(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s=%v: %w", name, v, dynamo.ErrParameterBounds)
	}
	switch name {
	case "h":
		if v == 0 {
			return fmt.Errorf("h=0: %w", dynamo.ErrParameterBounds)
		}
		f.H = v
	case "rho0":
		f.Rho0 = v
	case "stiffness":
		f.Stiffness = v
	case "viscosity":
		f.Viscosity = v
	case "dissipation":
		f.Dissipation = v
	case "noise":
		f.NoiseForce = v
	default:
		return fmt.Errorf("%q: %w", name, dynamo.ErrUnknownParameter)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
