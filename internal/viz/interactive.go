package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/piee-kun/flux-screensavers/internal/settings"
)

var presetInfo = map[string]string{
	"original": "the classic look",
	"plasma":   "hot and thin",
	"poolside": "sparse, long strokes",
	"freedom":  "blue and gold",
	"calm":     "slow, single noise layer",
}

// Describe returns a one-line description of a settings preset.
func Describe(preset string) string { return presetInfo[preset] }

const (
	stateMenu = iota
	stateLive
)

type app struct {
	state, cursor int
	presets       []string
	opts          Options
	width, height int
	live          Model
	err           error
}

func newApp(opts Options) *app {
	return &app{
		state:   stateMenu,
		presets: settings.ListPresets(),
		opts:    opts,
		width:   defaultWidth,
		height:  defaultHeight,
	}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
	}
	if m.state == stateLive {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m.start()
	}
	return m, nil
}

func (m app) start() (tea.Model, tea.Cmd) {
	base := m.opts.Settings
	if base == nil {
		base = settings.Default()
	}
	s := base.Clone()
	settings.Presets[m.presets[m.cursor]](s)

	opts := m.opts
	opts.Settings = TerminalSettings(s)
	live, err := NewModel(opts)
	if err != nil {
		m.err = err
		return m, nil
	}
	live.resize(m.width, m.height)
	m.live = live
	m.state = stateLive
	return m, m.live.Init()
}

func (m app) View() string {
	if m.state == stateLive {
		return m.live.View()
	}

	var b strings.Builder
	h := lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	b.WriteString("\n\n    " + h.Render("FLUX") + "\n    " + Subtle.Render("fluid flow lines") + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")

	active := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	for i, name := range m.presets {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", h.Render("▸"), active.Render(fmt.Sprintf("%-10s", name)), desc.Render(presetInfo[name])))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", Subtle.Render(fmt.Sprintf("%-10s", name)), Subtle.Render(presetInfo[name])))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusError.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint.Render("j/k navigate  enter start  q quit") + "\n")
	return b.String()
}

// RunLive runs the live view until the user quits.
func RunLive(opts Options) error {
	m, err := NewModel(opts)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	return err
}

// RunInteractive shows the preset picker, then the live view.
func RunInteractive(opts Options) error {
	final, err := tea.NewProgram(newApp(opts), tea.WithAltScreen()).Run()
	if a, ok := final.(app); ok && a.state == stateLive {
		a.live.Close()
	}
	return err
}
