package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/piee-kun/flux-screensavers/internal/engine"
	"github.com/piee-kun/flux-screensavers/internal/geometry"
	"github.com/piee-kun/flux-screensavers/internal/gpu"
	"github.com/piee-kun/flux-screensavers/internal/settings"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	panelWidth    = 34
	historyLen    = 120

	// TerminalGridSpacing spaces flow lines for a surface measured in cells.
	TerminalGridSpacing = 3.0

	dotThreshold = 0.12
)

type TickMsg time.Time

// Options configure the live view.
type Options struct {
	Settings *settings.Settings
	FPS      float64
	Logger   *zap.Logger
	// Device is shared by every engine the view creates.
	Device gpu.Device
}

// Model drives one engine from a Bubble Tea tick and paints its framebuffer.
type Model struct {
	opts   Options
	eng    *engine.Engine
	canvas *Canvas

	width, height int
	cols, rows    int

	start     time.Time
	pausedAt  time.Time
	pausedFor time.Duration
	running   bool

	preset   int
	mode     int
	frameMs  []float64
	err      error
	showHelp bool
}

// TerminalSettings adapts settings to a surface measured in cells.
func TerminalSettings(s *settings.Settings) *settings.Settings {
	s = s.Clone()
	if s.GridSpacing == settings.DefaultGridSpacing {
		s.GridSpacing = TerminalGridSpacing
	}
	return s
}

// NewModel creates the view and its engine at the default terminal size.
func NewModel(opts Options) (Model, error) {
	if opts.Settings == nil {
		opts.Settings = TerminalSettings(settings.Default())
	}
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Device == nil {
		opts.Device = gpu.NewCPUDevice(opts.Settings.MaxTextureSize)
	}

	m := Model{
		opts:    opts,
		width:   defaultWidth,
		height:  defaultHeight,
		running: true,
		frameMs: make([]float64, 0, historyLen),
	}
	m.cols, m.rows = canvasSize(m.width, m.height)
	for i, p := range settings.ColorPresets {
		if p == opts.Settings.ColorMode.Preset {
			m.preset = i
		}
	}
	for i, md := range settings.Modes {
		if md == opts.Settings.Mode {
			m.mode = i
		}
	}

	eng, err := m.newEngine(opts.Settings)
	if err != nil {
		return Model{}, err
	}
	m.eng = eng
	m.canvas = NewCanvas(m.cols, m.rows)
	return m, nil
}

// canvasSize fits the canvas beside the stats panel.
func canvasSize(width, height int) (cols, rows int) {
	return max(8, width-panelWidth-3), max(4, height-1)
}

// surface is the geometry of a canvas: cells are 1x2 logical units and
// braille dots are physical pixels.
func surface(cols, rows int) (geometry.Size, geometry.Descriptor) {
	return geometry.Size{Width: float64(cols), Height: float64(rows * 2)},
		geometry.Physical(float64(cols*2), float64(rows*4))
}

func (m *Model) newEngine(s *settings.Settings) (*engine.Engine, error) {
	payload, err := settings.Marshal(s)
	if err != nil {
		return nil, err
	}
	p := string(payload)
	logical, physical := surface(m.cols, m.rows)
	return engine.New(logical, physical, &p,
		engine.WithLogger(m.opts.Logger),
		engine.WithDevice(m.opts.Device),
	)
}

// Engine returns the engine currently shown.
func (m Model) Engine() *engine.Engine { return m.eng }

// Close destroys the engine.
func (m Model) Close() {
	if m.eng != nil && m.eng.State() == engine.Live {
		m.eng.Destroy()
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Duration(float64(time.Second)/m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input, terminal resizes and frame ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.togglePause(time.Now())
		case "c":
			m.rebuild(func(s *settings.Settings) {
				m.preset = (m.preset + 1) % len(settings.ColorPresets)
				s.ColorMode.Preset = settings.ColorPresets[m.preset]
			})
		case "d":
			m.rebuild(func(s *settings.Settings) {
				m.mode = (m.mode + 1) % len(settings.Modes)
				s.Mode = settings.Modes[m.mode]
			})
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			m.frame(time.Time(msg))
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) togglePause(now time.Time) {
	if m.running {
		m.pausedAt = now
	} else {
		m.pausedFor += now.Sub(m.pausedAt)
	}
	m.running = !m.running
}

// timestamp is milliseconds since start, excluding time spent paused.
func (m *Model) timestamp(now time.Time) float64 {
	if m.start.IsZero() {
		m.start = now
	}
	return float64(now.Sub(m.start)-m.pausedFor) / float64(time.Millisecond)
}

func (m *Model) frame(now time.Time) {
	ts := m.timestamp(now)
	began := time.Now()
	if err := m.eng.Animate(ts); err != nil {
		m.err = err
		return
	}
	m.frameMs = append(m.frameMs, float64(time.Since(began))/float64(time.Millisecond))
	if len(m.frameMs) > historyLen {
		m.frameMs = m.frameMs[1:]
	}
	m.canvas.Paint(m.eng.Framebuffer(), dotThreshold)
}

func (m *Model) resize(width, height int) {
	cols, rows := canvasSize(width, height)
	logical, physical := surface(cols, rows)
	if err := m.eng.Resize(logical, physical); err != nil {
		m.err = err
		return
	}
	m.width, m.height = width, height
	if cols != m.cols || rows != m.rows {
		m.cols, m.rows = cols, rows
		m.canvas = NewCanvas(cols, rows)
	}
}

// rebuild replaces the engine with one built from modified settings. The
// old engine is only destroyed once the new one exists.
func (m *Model) rebuild(change func(*settings.Settings)) {
	s := m.eng.Settings()
	change(s)
	eng, err := m.newEngine(s)
	if err != nil {
		m.err = err
		return
	}
	m.eng.Destroy()
	m.eng = eng
	m.err = nil
}

// View renders the canvas and the stats panel.
func (m Model) View() string {
	s := m.eng.Settings()
	theme := ThemeFor(s.ColorMode.Preset)
	st := m.eng.Stats()
	g := m.eng.Geometry()

	var b strings.Builder
	b.WriteString(GradientText("FLUX", theme.Primary, theme.Secondary) + "  " + Subtle.Render(theme.Name) + "\n\n")

	switch {
	case m.err != nil:
		b.WriteString(StatusError.Render("ERROR") + "\n" + Subtle.Render(m.err.Error()) + "\n\n")
	case m.running:
		b.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	default:
		b.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	row := func(label, value string) {
		b.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Surface", fmt.Sprintf("%dx%d", g.PhysicalWidth, g.PhysicalHeight))
	row("Mode", string(s.Mode))
	row("Frames", fmt.Sprintf("%d", st.Frames))
	row("Sim time", fmt.Sprintf("%.1fs", st.SimTime))
	row("Lines", fmt.Sprintf("%d", st.LinesDrawn))
	row("Energy", fmt.Sprintf("%.1f", st.KineticEnergy))
	if n := len(m.frameMs); n > 0 {
		row("Frame", fmt.Sprintf("%.2fms", m.frameMs[n-1]))
	}
	b.WriteString("\n" + SparklineChart(m.frameMs, panelWidth-6) + "\n\n")
	b.WriteString(Separator(panelWidth-4) + "\n")
	b.WriteString(KeyHint.Render("SP:Pause C:Color D:Debug\n?:Help    Q:Quit"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, m.canvas.String(), PanelStyle.Render(b.String()))
	if m.showHelp {
		return helpText + "\n" + view
	}
	return view
}

const helpText = `
  Space  pause or resume the flow
  C      next color preset
  D      next debug view
  ?      toggle this help
  Q      quit
`
