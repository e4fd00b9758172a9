package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/piee-kun/flux-screensavers/internal/settings"
)

// Theme is the panel color scheme, taken from a flux palette so the chrome
// matches the flow lines.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Warning   lipgloss.Color
}

// ThemeFor builds the theme for a color preset.
func ThemeFor(p settings.ColorPreset) Theme {
	pal := settings.PaletteFor(p)
	return Theme{
		Name:      string(p),
		Primary:   colorOf(pal.North),
		Secondary: colorOf(pal.East),
		Accent:    colorOf(pal.South),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666688"),
		Warning:   lipgloss.Color("#ffaa00"),
	}
}

func colorOf(c settings.RGB) lipgloss.Color {
	return lipgloss.Color(hexColor(int(c.R*255+0.5), int(c.G*255+0.5), int(c.B*255+0.5)))
}
