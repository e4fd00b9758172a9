package engine

import (
	"math"
	"sync/atomic"

	"github.com/piee-kun/flux-screensavers/internal/clock"
	"github.com/piee-kun/flux-screensavers/internal/dynamo"
	"github.com/piee-kun/flux-screensavers/internal/geometry"
	"github.com/piee-kun/flux-screensavers/internal/gpu"
	"github.com/piee-kun/flux-screensavers/internal/integrators"
	"github.com/piee-kun/flux-screensavers/internal/physics"
	"github.com/piee-kun/flux-screensavers/internal/render"
	"github.com/piee-kun/flux-screensavers/internal/settings"
	"go.uber.org/zap"
)

const (
	// millisecond converts host timestamps to simulated seconds.
	millisecond = 0.001

	// maxSubsteps bounds the work one Animate call can do. Longer deltas are
	// split into maxSubsteps equal, larger steps.
	maxSubsteps = 8
)

var nextID atomic.Uint64

// Stats are running counters for one engine.
type Stats struct {
	Frames   uint64
	Substeps uint64
	// Resets counts fluid restarts after the state became non-finite.
	Resets  uint64
	Resizes uint64
	// Skipped counts resizes that matched the current geometry.
	Skipped       uint64
	LinesDrawn    int
	KineticEnergy float64
	SimTime       float64
	LiveResources int64
}

type Engine struct {
	id    uint64
	state State
	log   *zap.Logger

	settings *settings.Settings
	device   gpu.Device
	integ    dynamo.Integrator
	tracker  *geometry.Tracker
	clock    clock.Clock

	fluid    *physics.Fluid
	x        dynamo.State
	simTime  float64
	targets  *render.Targets
	renderer *render.Renderer

	stats Stats
}

// New builds a Live engine for a surface. payload is the settings object;
// nil or empty selects the defaults. On error nothing stays allocated.
func New(logical geometry.Size, d geometry.Descriptor, payload *string, opts ...Option) (*Engine, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{id: nextID.Add(1), state: Constructing}
	e.log = o.logger.With(zap.Uint64("engine", e.id))

	s, err := settings.ParseString(payload)
	if err != nil {
		return nil, e.fail(err)
	}
	tracker, err := geometry.NewTracker(logical, d)
	if err != nil {
		return nil, e.fail(err)
	}
	g := tracker.Current()

	if o.device == nil {
		o.device = gpu.NewCPUDevice(s.MaxTextureSize)
	}
	if o.integrator == nil {
		if o.integrator, err = integrators.ByName(integrators.Default); err != nil {
			return nil, e.fail(err)
		}
	}

	targets, err := render.Allocate(o.device, geometry.NewLayout(g, s.FluidSize, s.GridSpacing))
	if err != nil {
		return nil, e.fail(err)
	}

	e.settings = s
	e.device = o.device
	e.integ = o.integrator
	e.tracker = tracker
	e.targets = targets
	e.fluid = physics.NewFluid(fluidParams(s), g.Aspect())
	e.x = e.fluid.DefaultState()
	e.renderer = render.New(s)
	e.state = Live

	e.log.Info("engine created",
		zap.Stringer("geometry", g),
		zap.String("device", e.device.Name()),
		zap.String("integrator", e.integ.Name()),
		zap.Int("particles", e.fluid.Particles),
		zap.String("mode", string(s.Mode)),
	)
	return e, nil
}

func (e *Engine) fail(err error) error {
	e.log.Warn("engine create failed", zap.Error(err))
	return &Error{Op: "create", Err: err}
}

func (e *Engine) mustBeLive() {
	if e.state != Live {
		panic(ErrDestroyed)
	}
}

// Animate advances the fluid to timestamp and draws one frame. A NaN or
// infinite timestamp is rejected and leaves the clock untouched.
func (e *Engine) Animate(timestamp float64) error {
	e.mustBeLive()
	if math.IsNaN(timestamp) || math.IsInf(timestamp, 0) {
		return &Error{Op: "animate", Err: ErrInvalidTimestamp}
	}

	delta := e.clock.Tick(timestamp)
	dt := delta * millisecond
	if dt > 0 {
		e.advance(dt)
	}

	e.stats.LinesDrawn = e.renderer.Draw(e.targets, e.tracker.Current(), e.fluid, e.x, render.Frame{
		Delta:   dt,
		Elapsed: e.clock.Elapsed() * millisecond,
	})
	e.stats.Frames++
	return nil
}

// advance integrates the fluid by exactly dt seconds.
func (e *Engine) advance(dt float64) {
	steps := math.Ceil(dt/e.settings.FluidTimestep() - 1e-9)
	n := int(math.Max(1, math.Min(steps, maxSubsteps)))
	h := dt / float64(n)

	for i := 0; i < n; i++ {
		e.x = e.integ.Step(e.fluid, e.x, nil, e.simTime, h)
		e.fluid.Constrain(e.x)
		e.simTime += h
		e.stats.Substeps++
	}

	if !e.x.IsValid() {
		err := &dynamo.SimulationError{Step: int(e.stats.Substeps), Time: e.simTime, Wrapped: dynamo.ErrInvalidState}
		e.log.Warn("fluid reset", zap.Error(err))
		e.x = e.fluid.DefaultState()
		e.stats.Resets++
	}
}

// Resize moves the engine to a new surface geometry. An identical geometry
// is a no-op. On error the engine keeps its previous geometry and
// resources. Clock, settings and fluid state carry over.
func (e *Engine) Resize(logical geometry.Size, d geometry.Descriptor) error {
	e.mustBeLive()

	g, changed, err := e.tracker.Propose(logical, d)
	if err != nil {
		return &Error{Op: "resize", Err: err}
	}
	if !changed {
		e.stats.Skipped++
		e.log.Debug("resize skipped", zap.Stringer("geometry", g))
		return nil
	}

	next, err := render.Allocate(e.device, geometry.NewLayout(g, e.settings.FluidSize, e.settings.GridSpacing))
	if err != nil {
		e.log.Warn("resize failed", zap.Stringer("geometry", g), zap.Error(err))
		return &Error{Op: "resize", Err: err}
	}
	if err := e.fluid.SetAspect(e.x, g.Aspect()); err != nil {
		if rerr := next.Release(e.device); rerr != nil {
			e.log.Error("release failed", zap.Error(rerr))
		}
		return &Error{Op: "resize", Err: err}
	}

	prev := e.targets
	e.targets = next
	e.tracker.Commit(g)
	if err := prev.Release(e.device); err != nil {
		e.log.Error("release failed", zap.Error(err))
	}
	e.stats.Resizes++

	e.log.Debug("resized", zap.Stringer("geometry", g))
	return nil
}

// Destroy releases every resource. The engine must not be used afterwards.
func (e *Engine) Destroy() {
	e.mustBeLive()

	if err := e.targets.Release(e.device); err != nil {
		e.log.Error("release failed", zap.Error(err))
	}
	e.targets = nil
	e.x = nil
	e.state = Destroyed

	e.log.Info("engine destroyed",
		zap.Uint64("frames", e.stats.Frames),
		zap.Uint64("resizes", e.stats.Resizes),
	)
}

func (e *Engine) State() State { return e.state }

func (e *Engine) Geometry() geometry.Geometry {
	e.mustBeLive()
	return e.tracker.Current()
}

// Settings returns a copy of the engine's settings.
func (e *Engine) Settings() *settings.Settings {
	e.mustBeLive()
	return e.settings.Clone()
}

func (e *Engine) Clock() clock.Snapshot {
	e.mustBeLive()
	return e.clock.Snapshot()
}

// Framebuffer is the last drawn frame at physical resolution. It is owned by
// the engine and replaced on resize; hosts must not keep it across calls.
func (e *Engine) Framebuffer() *gpu.Texture {
	e.mustBeLive()
	return e.targets.Framebuffer
}

// Device returns the device the engine allocates on.
func (e *Engine) Device() gpu.Device { return e.device }

func (e *Engine) Stats() Stats {
	s := e.stats
	s.SimTime = e.simTime
	if e.state == Live {
		s.KineticEnergy = e.fluid.KineticEnergy(e.x)
	}
	if e.device != nil {
		s.LiveResources = e.device.Live()
	}
	return s
}

// fluidParams maps the user-facing settings onto the particle model.
func fluidParams(s *settings.Settings) physics.FluidParams {
	p := physics.DefaultFluidParams()
	p.Particles = s.ParticleCount
	p.Viscosity = s.Viscosity * 0.1
	p.Dissipation += s.VelocityDissipation
	if s.Seed != 0 {
		p.Seed = s.Seed
	}
	p.Noise = make([]physics.NoiseChannel, len(s.NoiseChannels))
	for i, ch := range s.NoiseChannels {
		p.Noise[i] = physics.NoiseChannel{
			Scale:           ch.Scale,
			Multiplier:      ch.Multiplier,
			OffsetIncrement: ch.OffsetIncrement,
		}
	}
	return p
}
