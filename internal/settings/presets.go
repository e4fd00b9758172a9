package settings

import "sort"

// RGB is a linear color with components in [0, 1].
type RGB struct{ R, G, B float64 }

// Palette maps line direction to color: flow heading along +x blends toward
// East, along -x toward West, and so on.
type Palette struct {
	Background               RGB
	North, East, South, West RGB
}

var palettes = map[ColorPreset]Palette{
	PresetOriginal: {
		Background: RGB{0, 0, 0},
		North:      RGB{0.40, 0.60, 1.00},
		East:       RGB{0.95, 0.30, 0.45},
		South:      RGB{0.98, 0.85, 0.35},
		West:       RGB{0.35, 0.90, 0.60},
	},
	PresetPlasma: {
		Background: RGB{0.02, 0.0, 0.05},
		North:      RGB{0.05, 0.03, 0.53},
		East:       RGB{0.80, 0.28, 0.47},
		South:      RGB{0.94, 0.97, 0.13},
		West:       RGB{0.49, 0.01, 0.66},
	},
	PresetPoolside: {
		Background: RGB{0.0, 0.05, 0.08},
		North:      RGB{0.20, 0.72, 0.87},
		East:       RGB{0.95, 0.95, 0.90},
		South:      RGB{0.10, 0.45, 0.70},
		West:       RGB{0.55, 0.88, 0.90},
	},
	PresetFreedom: {
		Background: RGB{0.0, 0.0, 0.0},
		North:      RGB{0.00, 0.34, 0.72},
		East:       RGB{1.00, 0.84, 0.00},
		South:      RGB{0.00, 0.34, 0.72},
		West:       RGB{1.00, 0.84, 0.00},
	},
}

// PaletteFor returns the colors for a preset, falling back to Original.
func PaletteFor(p ColorPreset) Palette {
	if pal, ok := palettes[p]; ok {
		return pal
	}
	return palettes[PresetOriginal]
}

// Presets holds tuned variations of the defaults, keyed by name.
var Presets = map[string]func(*Settings){
	"original": func(s *Settings) {
		s.ColorMode.Preset = PresetOriginal
	},
	"plasma": func(s *Settings) {
		s.ColorMode.Preset = PresetPlasma
		s.LineWidth = 8
		s.Viscosity = 3
	},
	"poolside": func(s *Settings) {
		s.ColorMode.Preset = PresetPoolside
		s.GridSpacing = 20
		s.LineLength = 450
	},
	"freedom": func(s *Settings) {
		s.ColorMode.Preset = PresetFreedom
		s.VelocityDissipation = 0.1
	},
	"calm": func(s *Settings) {
		s.Viscosity = 8
		s.NoiseChannels = []NoiseChannel{{Scale: 2.0, Multiplier: 0.6, OffsetIncrement: 0.05}}
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Settings {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	s := Default()
	apply(s)
	return s
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
