package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piee-kun/flux-screensavers/internal/config"
	"github.com/piee-kun/flux-screensavers/internal/engine"
	"github.com/piee-kun/flux-screensavers/internal/geometry"
	"github.com/piee-kun/flux-screensavers/internal/integrators"
	"github.com/piee-kun/flux-screensavers/internal/metrics"
	"github.com/piee-kun/flux-screensavers/internal/store"
)

// session is one engine driven at a fixed frame rate.
type session struct {
	cfg     *config.Config
	eng     *engine.Engine
	metrics metrics.Set
	samples []store.Frame
}

func newSession(cfg *config.Config, log *zap.Logger) (*session, error) {
	payload, err := cfg.Payload()
	if err != nil {
		return nil, err
	}
	integ, err := integrators.ByName(integrator)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(
		geometry.Size{Width: cfg.Surface.Width, Height: cfg.Surface.Height},
		geometry.PixelRatio(cfg.Surface.PixelRatio),
		payload,
		engine.WithLogger(log),
		engine.WithIntegrator(integ),
	)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, eng: eng, metrics: metrics.Default()}, nil
}

// step animates frame i and records it.
func (s *session) step(i int) error {
	ts := float64(i) * 1000 / s.cfg.Run.FPS
	start := time.Now()
	if err := s.eng.Animate(ts); err != nil {
		return err
	}
	wall := time.Since(start)

	st := s.eng.Stats()
	delta := s.eng.Clock().Delta
	s.metrics.Observe(metrics.Sample{
		Delta:         delta,
		Wall:          wall,
		KineticEnergy: st.KineticEnergy,
		Lines:         st.LinesDrawn,
	})
	s.samples = append(s.samples, store.Frame{
		Timestamp: ts,
		Delta:     delta,
		WallMs:    float64(wall.Microseconds()) / 1000,
		Energy:    st.KineticEnergy,
		Lines:     st.LinesDrawn,
	})
	return nil
}

func (s *session) frameTime() *metrics.FrameTime {
	for _, m := range s.metrics {
		if ft, ok := m.(*metrics.FrameTime); ok {
			return ft
		}
	}
	return metrics.NewFrameTime()
}

func (s *session) run() *store.Run {
	set := s.eng.Settings()
	name := s.cfg.Flux.Preset
	if name == "" {
		name = "default"
	}
	integ := integrator
	if integ == "" {
		integ = integrators.Default
	}
	return &store.Run{
		RunMetadata: store.RunMetadata{
			Name:       name,
			Geometry:   s.eng.Geometry().String(),
			Preset:     string(set.ColorMode.Preset),
			Mode:       string(set.Mode),
			Particles:  set.ParticleCount,
			Integrator: integ,
			FPS:        s.cfg.Run.FPS,
			Metrics:    s.metrics.Values(),
		},
		Samples: s.samples,
	}
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	var resize *geometry.Size
	if resizeTo != "" {
		sz, err := parseSize(resizeTo)
		if err != nil {
			return err
		}
		resize = &sz
	}

	s, err := newSession(cfg, log)
	if err != nil {
		return err
	}
	defer s.eng.Destroy()

	fmt.Printf("surface: %s\n", s.eng.Geometry())
	for i := 0; i < cfg.Run.Frames; i++ {
		if resize != nil && i == cfg.Run.Frames/2 {
			if err := s.eng.Resize(*resize, geometry.PixelRatio(cfg.Surface.PixelRatio)); err != nil {
				return err
			}
			fmt.Printf("resized: %s\n", s.eng.Geometry())
		}
		if err := s.step(i); err != nil {
			return err
		}
	}

	st := s.eng.Stats()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "frames\t%d\n", st.Frames)
	fmt.Fprintf(w, "substeps\t%d\n", st.Substeps)
	fmt.Fprintf(w, "resets\t%d\n", st.Resets)
	fmt.Fprintf(w, "resizes\t%d (%d skipped)\n", st.Resizes, st.Skipped)
	fmt.Fprintf(w, "sim time\t%.3fs\n", st.SimTime)
	fmt.Fprintf(w, "resources\t%d\n", st.LiveResources)
	for _, m := range s.metrics {
		fmt.Fprintf(w, "%s\t%.4f\n", m.Name(), m.Value())
	}
	return w.Flush()
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	s, err := newSession(cfg, log)
	if err != nil {
		return err
	}
	defer s.eng.Destroy()

	start := time.Now()
	for i := 0; i < cfg.Run.Frames; i++ {
		if err := s.step(i); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("benchmarking %s at %s\n\n", s.run().Name, s.eng.Geometry())
	ft := s.frameTime()
	if series := ft.Series(); len(series) > 0 {
		fmt.Println(asciigraph.Plot(series,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("animate (ms)"),
		))
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAMES\tTIME\tFRAMES/SEC\tMEAN\tP95")
	fmt.Fprintf(w, "%d\t%v\t%.0f\t%.3fms\t%.3fms\n",
		cfg.Run.Frames, elapsed.Round(time.Millisecond),
		float64(cfg.Run.Frames)/elapsed.Seconds(),
		ft.Value(), ft.Percentile(95))
	if err := w.Flush(); err != nil {
		return err
	}

	run := s.run()
	if outPath != "" {
		if err := store.Export(outPath, run); err != nil {
			return err
		}
	}
	if saveRun {
		st := store.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(run)
		if err != nil {
			return err
		}
		fmt.Printf("\nsaved: %s\n", id)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tGEOMETRY\tCOLORS\tFRAMES\tFRAME_MS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.3f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Geometry,
			run.Preset,
			run.Frames,
			run.Metrics["frame_ms"],
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("geometry: %s\n", meta.Geometry)
	fmt.Printf("samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		value   func(store.Frame) float64
	}{
		{"animate (ms)", func(f store.Frame) float64 { return f.WallMs }},
		{"kinetic energy", func(f store.Frame) float64 { return f.Energy }},
		{"lines drawn", func(f store.Frame) float64 { return float64(f.Lines) }},
	}
	for _, s := range series {
		data := make([]float64, len(samples))
		for i, f := range samples {
			data[i] = s.value(f)
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		))
		fmt.Println()
	}
	return nil
}

// parseSize reads a WxH logical size.
func parseSize(v string) (geometry.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(v), "x")
	if !ok {
		return geometry.Size{}, fmt.Errorf("size %q: want WxH", v)
	}
	fw, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("size %q: %w", v, err)
	}
	fh, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("size %q: %w", v, err)
	}
	return geometry.Size{Width: fw, Height: fh}, nil
}
