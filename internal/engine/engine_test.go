package engine_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap/zaptest"

	"github.com/piee-kun/flux-screensavers/internal/engine"
	"github.com/piee-kun/flux-screensavers/internal/geometry"
	"github.com/piee-kun/flux-screensavers/internal/gpu"
	"github.com/piee-kun/flux-screensavers/internal/settings"
)

func ptr(s string) *string { return &s }

var _ = Describe("Engine", func() {
	var dev *gpu.CPUDevice

	BeforeEach(func() {
		dev = gpu.NewCPUDevice(4096)
	})

	newEngine := func(logical geometry.Size, d geometry.Descriptor, payload *string) (*engine.Engine, error) {
		return engine.New(logical, d, payload,
			engine.WithDevice(dev),
			engine.WithLogger(zaptest.NewLogger(GinkgoT())),
		)
	}

	Describe("New", func() {
		It("tracks an explicit physical size", func() {
			e, err := newEngine(geometry.Size{Width: 800, Height: 600}, geometry.Physical(1600, 1200), nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(e.Destroy)

			Expect(e.State()).To(Equal(engine.Live))
			Expect(e.Geometry()).To(Equal(geometry.Geometry{
				LogicalWidth: 800, LogicalHeight: 600,
				PhysicalWidth: 1600, PhysicalHeight: 1200,
			}))
			fb := e.Framebuffer()
			Expect(fb.Width).To(Equal(1600))
			Expect(fb.Height).To(Equal(1200))
		})

		It("derives physical size from a pixel ratio", func() {
			e, err := newEngine(geometry.Size{Width: 300, Height: 200}, geometry.PixelRatio(2), nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(e.Destroy)

			g := e.Geometry()
			Expect(g.PhysicalWidth).To(Equal(600))
			Expect(g.PhysicalHeight).To(Equal(400))
		})

		It("applies the settings payload", func() {
			e, err := newEngine(geometry.Size{Width: 320, Height: 240}, geometry.PixelRatio(1),
				ptr(`{"mode": "debugFluid", "particleCount": 64, "colorMode": {"preset": "Plasma"}}`))
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(e.Destroy)

			s := e.Settings()
			Expect(s.Mode).To(Equal(settings.ModeDebugFluid))
			Expect(s.ParticleCount).To(Equal(64))
			Expect(s.ColorMode.Preset).To(Equal(settings.PresetPlasma))
			Expect(s.FluidSize).To(Equal(settings.DefaultFluidSize))
		})

		DescribeTable("rejects bad input and leaves nothing allocated",
			func(logical geometry.Size, d geometry.Descriptor, payload *string, want error) {
				e, err := newEngine(logical, d, payload)
				Expect(e).To(BeNil())
				Expect(err).To(MatchError(want))

				var opErr *engine.Error
				Expect(err).To(BeAssignableToTypeOf(opErr))
				Expect(err.(*engine.Error).Op).To(Equal("create"))
				Expect(dev.Live()).To(BeZero())
			},
			Entry("zero width", geometry.Size{Width: 0, Height: 600}, geometry.PixelRatio(1), nil, geometry.ErrInvalidGeometry),
			Entry("negative height", geometry.Size{Width: 800, Height: -1}, geometry.PixelRatio(1), nil, geometry.ErrInvalidGeometry),
			Entry("NaN width", geometry.Size{Width: math.NaN(), Height: 600}, geometry.PixelRatio(1), nil, geometry.ErrInvalidGeometry),
			Entry("zero ratio", geometry.Size{Width: 800, Height: 600}, geometry.PixelRatio(0), nil, geometry.ErrInvalidGeometry),
			Entry("array payload", geometry.Size{Width: 800, Height: 600}, geometry.PixelRatio(1), ptr(`[1, 2]`), settings.ErrMalformed),
			Entry("truncated payload", geometry.Size{Width: 800, Height: 600}, geometry.PixelRatio(1), ptr(`{"mode": `), settings.ErrMalformed),
			Entry("wrong type", geometry.Size{Width: 800, Height: 600}, geometry.PixelRatio(1), ptr(`{"fluidSize": "big"}`), settings.ErrMalformed),
			Entry("out of range", geometry.Size{Width: 800, Height: 600}, geometry.PixelRatio(1), ptr(`{"lineWidth": -3}`), settings.ErrOutOfRange),
			Entry("texture too large", geometry.Size{Width: 800, Height: 600}, geometry.Physical(8000, 6000), nil, gpu.ErrTooLarge),
			Entry("fluid grid too large", geometry.Size{Width: 4000, Height: 100}, geometry.PixelRatio(1), ptr(`{"fluidSize": 128}`), gpu.ErrTooLarge),
		)

		It("uses its own device when none is given", func() {
			e, err := engine.New(geometry.Size{Width: 160, Height: 90}, geometry.PixelRatio(1), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Device().Live()).To(BeNumerically(">", 0))
			e.Destroy()
			Expect(e.Device().Live()).To(BeZero())
		})
	})

	Describe("Animate", func() {
		var e *engine.Engine

		BeforeEach(func() {
			var err error
			e, err = newEngine(geometry.Size{Width: 200, Height: 150}, geometry.PixelRatio(1), ptr(`{"particleCount": 100}`))
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(e.Destroy)
		})

		It("uses the first timestamp as the baseline", func() {
			Expect(e.Animate(5000)).To(Succeed())
			c := e.Clock()
			Expect(c.Delta).To(BeZero())
			Expect(c.Last).To(Equal(5000.0))
			Expect(e.Stats().Substeps).To(BeZero())
		})

		It("advances by the time between calls", func() {
			Expect(e.Animate(0)).To(Succeed())
			Expect(e.Animate(100)).To(Succeed())

			Expect(e.Clock().Delta).To(Equal(100.0))
			st := e.Stats()
			Expect(st.Substeps).To(Equal(uint64(6)))
			Expect(st.SimTime).To(BeNumerically("~", 0.1, 1e-9))
			Expect(st.Frames).To(Equal(uint64(2)))
		})

		It("caps substeps on long gaps without dropping time", func() {
			Expect(e.Animate(0)).To(Succeed())
			Expect(e.Animate(2000)).To(Succeed())

			st := e.Stats()
			Expect(st.Substeps).To(Equal(uint64(8)))
			Expect(st.SimTime).To(BeNumerically("~", 2.0, 1e-9))
			Expect(math.IsNaN(st.KineticEnergy)).To(BeFalse())
		})

		It("splits an enormous gap into the capped number of substeps", func() {
			Expect(e.Animate(0)).To(Succeed())
			Expect(e.Animate(1e300)).To(Succeed())

			st := e.Stats()
			Expect(st.Substeps).To(Equal(uint64(8)))
			Expect(st.SimTime).To(BeNumerically("~", 1e297, 1e285))

			Expect(e.Animate(1e300 + 16)).To(Succeed())
			Expect(math.IsNaN(e.Stats().KineticEnergy)).To(BeFalse())
		})

		It("clamps a backward timestamp and moves the baseline", func() {
			Expect(e.Animate(1000)).To(Succeed())
			Expect(e.Animate(900)).To(Succeed())
			c := e.Clock()
			Expect(c.Delta).To(BeZero())
			Expect(c.Last).To(Equal(900.0))
			Expect(c.Clamped).To(Equal(uint64(1)))

			Expect(e.Animate(916)).To(Succeed())
			Expect(e.Clock().Delta).To(Equal(16.0))
		})

		It("does not advance on a repeated timestamp", func() {
			Expect(e.Animate(10)).To(Succeed())
			Expect(e.Animate(10)).To(Succeed())
			Expect(e.Clock().Delta).To(BeZero())
			Expect(e.Stats().Substeps).To(BeZero())
		})

		DescribeTable("rejects non-finite timestamps without touching the clock",
			func(ts float64) {
				Expect(e.Animate(10)).To(Succeed())
				before := e.Clock()

				err := e.Animate(ts)
				Expect(err).To(MatchError(engine.ErrInvalidTimestamp))
				Expect(e.Clock()).To(Equal(before))
			},
			Entry("NaN", math.NaN()),
			Entry("+Inf", math.Inf(1)),
			Entry("-Inf", math.Inf(-1)),
		)

		It("fades in from the background", func() {
			Expect(e.Animate(0)).To(Succeed())
			fb := e.Framebuffer()
			for i := 0; i < len(fb.U8); i += 4 {
				Expect(fb.U8[i : i+3]).To(Equal([]uint8{0, 0, 0}))
			}
		})
	})

	Describe("Resize", func() {
		It("treats an equal explicit geometry as a no-op", func() {
			e, err := newEngine(geometry.Size{Width: 300, Height: 200}, geometry.PixelRatio(2), nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(e.Destroy)

			allocs := dev.Allocations()
			fb := e.Framebuffer()

			Expect(e.Resize(geometry.Size{Width: 300, Height: 200}, geometry.Physical(600, 400))).To(Succeed())
			Expect(dev.Allocations()).To(Equal(allocs))
			Expect(e.Framebuffer()).To(BeIdenticalTo(fb))
			Expect(e.Stats().Skipped).To(Equal(uint64(1)))
		})

		It("is idempotent", func() {
			e, err := newEngine(geometry.Size{Width: 800, Height: 600}, geometry.PixelRatio(1), nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(e.Destroy)
			live := dev.Live()

			Expect(e.Resize(geometry.Size{Width: 1024, Height: 768}, geometry.PixelRatio(1.5))).To(Succeed())
			allocs := dev.Allocations()
			g := e.Geometry()

			Expect(e.Resize(geometry.Size{Width: 1024, Height: 768}, geometry.PixelRatio(1.5))).To(Succeed())
			Expect(dev.Allocations()).To(Equal(allocs))
			Expect(dev.Live()).To(Equal(live))
			Expect(e.Geometry()).To(Equal(g))
			Expect(g.PhysicalWidth).To(Equal(1536))
		})

		It("swaps resources and keeps clock and settings", func() {
			e, err := newEngine(geometry.Size{Width: 800, Height: 600}, geometry.PixelRatio(1), ptr(`{"seed": 7}`))
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(e.Destroy)

			Expect(e.Animate(0)).To(Succeed())
			Expect(e.Animate(16)).To(Succeed())
			clk := e.Clock()
			live := dev.Live()

			Expect(e.Resize(geometry.Size{Width: 400, Height: 600}, geometry.PixelRatio(2))).To(Succeed())
			Expect(dev.Live()).To(Equal(live))
			Expect(e.Clock()).To(Equal(clk))
			Expect(e.Settings().Seed).To(Equal(int64(7)))
			Expect(e.Framebuffer().Width).To(Equal(800))
			Expect(e.Framebuffer().Height).To(Equal(1200))

			Expect(e.Animate(32)).To(Succeed())
			Expect(e.Clock().Delta).To(Equal(16.0))
		})

		It("keeps the old state when the new geometry is invalid", func() {
			e, err := newEngine(geometry.Size{Width: 800, Height: 600}, geometry.PixelRatio(1), nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(e.Destroy)
			g := e.Geometry()

			err = e.Resize(geometry.Size{Width: -5, Height: 600}, geometry.PixelRatio(1))
			Expect(err).To(MatchError(geometry.ErrInvalidGeometry))
			Expect(err.(*engine.Error).Op).To(Equal("resize"))
			Expect(e.Geometry()).To(Equal(g))
		})

		It("keeps the old state when allocation fails", func() {
			e, err := newEngine(geometry.Size{Width: 800, Height: 600}, geometry.PixelRatio(1), nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(e.Destroy)
			g := e.Geometry()
			fb := e.Framebuffer()
			live := dev.Live()

			err = e.Resize(geometry.Size{Width: 800, Height: 600}, geometry.Physical(8000, 6000))
			Expect(err).To(MatchError(gpu.ErrTooLarge))
			Expect(e.Geometry()).To(Equal(g))
			Expect(e.Framebuffer()).To(BeIdenticalTo(fb))
			Expect(dev.Live()).To(Equal(live))
			Expect(e.Animate(0)).To(Succeed())
		})
	})

	Describe("Destroy", func() {
		It("releases everything it allocated", func() {
			e, err := newEngine(geometry.Size{Width: 640, Height: 480}, geometry.PixelRatio(1.25), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(dev.Live()).To(BeNumerically(">", 0))

			Expect(e.Animate(0)).To(Succeed())
			Expect(e.Resize(geometry.Size{Width: 320, Height: 480}, geometry.PixelRatio(1))).To(Succeed())
			Expect(e.Animate(16)).To(Succeed())
			e.Destroy()

			Expect(e.State()).To(Equal(engine.Destroyed))
			Expect(dev.Live()).To(BeZero())
			Expect(dev.LiveBytes()).To(BeZero())
			Expect(e.Stats().LiveResources).To(BeZero())
		})

		It("panics on use after destroy", func() {
			e, err := newEngine(geometry.Size{Width: 64, Height: 64}, geometry.PixelRatio(1), nil)
			Expect(err).NotTo(HaveOccurred())
			e.Destroy()

			Expect(func() { _ = e.Animate(0) }).To(PanicWith(engine.ErrDestroyed))
			Expect(func() { _ = e.Resize(geometry.Size{Width: 1, Height: 1}, geometry.PixelRatio(1)) }).To(PanicWith(engine.ErrDestroyed))
			Expect(func() { e.Destroy() }).To(PanicWith(engine.ErrDestroyed))
		})
	})
})

var _ = Describe("State", func() {
	DescribeTable("String",
		func(s engine.State, want string) {
			Expect(s.String()).To(Equal(want))
		},
		Entry(nil, engine.Constructing, "constructing"),
		Entry(nil, engine.Live, "live"),
		Entry(nil, engine.Destroyed, "destroyed"),
		Entry(nil, engine.State(9), "state(9)"),
	)
})
