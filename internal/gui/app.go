// Package gui is the native window host. It drives one engine per window
// and shows its framebuffer as a texture.
package gui

import (
	"fmt"
	"image/color"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"github.com/piee-kun/flux-screensavers/internal/engine"
	"github.com/piee-kun/flux-screensavers/internal/geometry"
	"github.com/piee-kun/flux-screensavers/internal/gpu"
	"github.com/piee-kun/flux-screensavers/internal/settings"
)

var (
	ColText    = rl.NewColor(200, 200, 200, 255)
	ColTextDim = rl.NewColor(90, 90, 90, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
)

const telemetryLen = 200

// Options configure the window.
type Options struct {
	Width, Height int
	FPS           int
	Settings      *settings.Settings
	Logger        *zap.Logger
}

type App struct {
	opts Options
	log  *zap.Logger
	dev  gpu.Device
	eng  *engine.Engine

	tex       rl.Texture2D
	hasTex    bool
	Running   bool
	ShowHUD   bool
	pausedAt  float64
	pausedFor float64
	preset    int
	mode      int

	// Telemetry holds recent frame times in milliseconds.
	Telemetry []float64
	err       error
}

func initWindow(o Options) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi)
	rl.InitWindow(int32(o.Width), int32(o.Height), "flux")
	rl.SetTargetFPS(int32(o.FPS))
	rl.SetExitKey(rl.KeyQ)
}

// Run opens a window and blocks until it is closed.
func Run(o Options) error {
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = 1280, 720
	}
	if o.FPS <= 0 {
		o.FPS = 60
	}
	if o.Settings == nil {
		o.Settings = settings.Default()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	initWindow(o)
	defer rl.CloseWindow()

	app, err := NewApp(o)
	if err != nil {
		return err
	}
	defer app.Close()
	app.RunLoop()
	return nil
}

// NewApp creates the engine for the current window. The window must be
// open.
func NewApp(o Options) (*App, error) {
	a := &App{
		opts:      o,
		log:       o.Logger,
		dev:       gpu.NewCPUDevice(o.Settings.MaxTextureSize),
		Running:   true,
		ShowHUD:   true,
		Telemetry: make([]float64, 0, telemetryLen),
	}
	for i, p := range settings.ColorPresets {
		if p == o.Settings.ColorMode.Preset {
			a.preset = i
		}
	}
	for i, m := range settings.Modes {
		if m == o.Settings.Mode {
			a.mode = i
		}
	}

	eng, err := a.newEngine(o.Settings)
	if err != nil {
		return nil, err
	}
	a.eng = eng
	return a, nil
}

// surface reads the window geometry: screen size in logical units and the
// render size in physical pixels.
func surface() (geometry.Size, geometry.Descriptor) {
	logical := geometry.Size{Width: float64(rl.GetScreenWidth()), Height: float64(rl.GetScreenHeight())}
	return logical, geometry.Physical(float64(rl.GetRenderWidth()), float64(rl.GetRenderHeight()))
}

func (a *App) newEngine(s *settings.Settings) (*engine.Engine, error) {
	payload, err := settings.Marshal(s)
	if err != nil {
		return nil, err
	}
	p := string(payload)
	logical, physical := surface()
	return engine.New(logical, physical, &p, engine.WithLogger(a.log), engine.WithDevice(a.dev))
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		a.Update()
		a.Draw()
	}
}

// Update handles input and advances the engine one frame. The engine is
// resized every frame; an unchanged window makes that a no-op.
func (a *App) Update() {
	now := rl.GetTime() * 1000

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		if a.Running {
			a.pausedAt = now
		} else {
			a.pausedFor += now - a.pausedAt
		}
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyC):
		a.rebuild(func(s *settings.Settings) {
			a.preset = (a.preset + 1) % len(settings.ColorPresets)
			s.ColorMode.Preset = settings.ColorPresets[a.preset]
		})
	case rl.IsKeyPressed(rl.KeyD):
		a.rebuild(func(s *settings.Settings) {
			a.mode = (a.mode + 1) % len(settings.Modes)
			s.Mode = settings.Modes[a.mode]
		})
	case rl.IsKeyPressed(rl.KeyH):
		a.ShowHUD = !a.ShowHUD
	}

	if err := a.eng.Resize(surface()); err != nil {
		a.err = err
		a.log.Warn("resize failed", zap.Error(err))
	}
	if !a.Running {
		return
	}

	began := rl.GetTime()
	if err := a.eng.Animate(now - a.pausedFor); err != nil {
		a.err = err
		return
	}
	a.Telemetry = append(a.Telemetry, (rl.GetTime()-began)*1000)
	if len(a.Telemetry) > telemetryLen {
		a.Telemetry = a.Telemetry[1:]
	}
	a.upload()
}

func (a *App) rebuild(change func(*settings.Settings)) {
	s := a.eng.Settings()
	change(s)
	eng, err := a.newEngine(s)
	if err != nil {
		a.err = err
		a.log.Warn("rebuild failed", zap.Error(err))
		return
	}
	a.eng.Destroy()
	a.eng = eng
	a.err = nil
}

// upload copies the framebuffer into the window texture, recreating the
// texture when the framebuffer size changed.
func (a *App) upload() {
	fb := a.eng.Framebuffer()
	if a.hasTex && (int(a.tex.Width) != fb.Width || int(a.tex.Height) != fb.Height) {
		rl.UnloadTexture(a.tex)
		a.hasTex = false
	}
	if !a.hasTex {
		img := rl.NewImage(fb.U8, int32(fb.Width), int32(fb.Height), 1, rl.UncompressedR8g8b8a8)
		a.tex = rl.LoadTextureFromImage(img)
		rl.SetTextureFilter(a.tex, rl.FilterBilinear)
		a.hasTex = true
		return
	}
	pixels := unsafe.Slice((*color.RGBA)(unsafe.Pointer(&fb.U8[0])), len(fb.U8)/4)
	rl.UpdateTexture(a.tex, pixels)
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	if a.hasTex {
		g := a.eng.Geometry()
		src := rl.NewRectangle(0, 0, float32(a.tex.Width), float32(a.tex.Height))
		dst := rl.NewRectangle(0, 0, float32(g.LogicalWidth), float32(g.LogicalHeight))
		rl.DrawTexturePro(a.tex, src, dst, rl.NewVector2(0, 0), 0, rl.White)
	}
	if a.ShowHUD {
		a.DrawHUD()
	}

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	s := a.eng.Settings()
	st := a.eng.Stats()
	g := a.eng.Geometry()

	rl.DrawText("flux", 30, 30, 24, ColText)
	rl.DrawText(fmt.Sprintf(":: %s / %s", s.ColorMode.Preset, s.Mode), 100, 36, 16, ColTextDim)
	rl.DrawText(fmt.Sprintf("%s  lines %d", g, st.LinesDrawn), 30, 64, 14, ColTextDim)

	status, col := "RUNNING", ColText
	if !a.Running {
		status, col = "PAUSED", ColTextDim
	}
	if a.err != nil {
		status, col = a.err.Error(), rl.Red
	}
	rl.DrawText(status, 30, 88, 14, col)

	a.DrawTelemetry(30, int32(g.LogicalHeight)-110, 300, 50)
	footer := fmt.Sprintf("%d FPS   [SPACE] PAUSE  [C] COLOR  [D] DEBUG  [H] HUD  [Q] QUIT", rl.GetFPS())
	rl.DrawText(footer, 30, int32(g.LogicalHeight)-40, 14, ColTextDim)
}

// DrawTelemetry plots recent frame times.
func (a *App) DrawTelemetry(x, y, width, height int32) {
	if len(a.Telemetry) < 2 {
		return
	}
	rl.DrawLineStrip(telemetryPoints(a.Telemetry, x, y, width, height), ColAccent)
	rl.DrawText(fmt.Sprintf("%.2f ms", a.Telemetry[len(a.Telemetry)-1]), x+width+10, y+height-10, 14, ColText)
}

func telemetryPoints(values []float64, x, y, width, height int32) []rl.Vector2 {
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	points := make([]rl.Vector2, len(values))
	for i, v := range values {
		px := float32(x) + float32(i)/float32(len(values)-1)*float32(width)
		py := float32(y+height) - float32((v-lo)/(hi-lo))*float32(height)
		points[i] = rl.NewVector2(px, py)
	}
	return points
}

// Close releases the texture and destroys the engine.
func (a *App) Close() {
	if a.hasTex {
		rl.UnloadTexture(a.tex)
		a.hasTex = false
	}
	if a.eng.State() == engine.Live {
		a.eng.Destroy()
	}
}
