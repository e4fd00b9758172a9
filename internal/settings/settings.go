// Package settings loads the engine configuration from the opaque payload a
// host passes at construction.
//
// Payloads are JSON objects (any YAML mapping is accepted too). Missing keys
// keep their defaults and unknown keys are ignored, but a payload that is not
// an object, or holds a value of the wrong type, is rejected as a whole.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFluidSize           = 128
	DefaultFluidFrameRate      = 60.0
	DefaultViscosity           = 5.0
	DefaultVelocityDissipation = 0.0
	DefaultPressureIterations  = 19
	DefaultDiffusionIterations = 3
	DefaultLineLength          = 550.0
	DefaultLineWidth           = 10.0
	DefaultLineBeginOffset     = 0.4
	DefaultLineVariance        = 0.45
	DefaultGridSpacing         = 15.0
	DefaultViewScale           = 1.6
	DefaultParticleCount       = 400
	DefaultMaxTextureSize      = 16384

	MaxParticleCount = 20000
)

type Mode string

const (
	ModeNormal        Mode = "normal"
	ModeDebugNoise    Mode = "debugNoise"
	ModeDebugFluid    Mode = "debugFluid"
	ModeDebugPressure Mode = "debugPressure"
)

// Modes lists every render mode.
var Modes = []Mode{ModeNormal, ModeDebugFluid, ModeDebugPressure, ModeDebugNoise}

type ColorPreset string

const (
	PresetOriginal ColorPreset = "Original"
	PresetPlasma   ColorPreset = "Plasma"
	PresetPoolside ColorPreset = "Poolside"
	PresetFreedom  ColorPreset = "Freedom"
)

// ColorPresets lists every built-in palette.
var ColorPresets = []ColorPreset{PresetOriginal, PresetPlasma, PresetPoolside, PresetFreedom}

type ColorMode struct {
	Preset ColorPreset `yaml:"preset" json:"preset"`
}

type NoiseChannel struct {
	Scale           float64 `yaml:"scale" json:"scale"`
	Multiplier      float64 `yaml:"multiplier" json:"multiplier"`
	OffsetIncrement float64 `yaml:"offsetIncrement" json:"offsetIncrement"`
}

// Settings is the validated engine configuration. It is immutable once an
// engine has been created from it.
type Settings struct {
	Mode                Mode           `yaml:"mode" json:"mode"`
	Seed                int64          `yaml:"seed" json:"seed"`
	FluidSize           int            `yaml:"fluidSize" json:"fluidSize"`
	FluidFrameRate      float64        `yaml:"fluidFrameRate" json:"fluidFrameRate"`
	Viscosity           float64        `yaml:"viscosity" json:"viscosity"`
	VelocityDissipation float64        `yaml:"velocityDissipation" json:"velocityDissipation"`
	PressureIterations  int            `yaml:"pressureIterations" json:"pressureIterations"`
	DiffusionIterations int            `yaml:"diffusionIterations" json:"diffusionIterations"`
	ColorMode           ColorMode      `yaml:"colorMode" json:"colorMode"`
	LineLength          float64        `yaml:"lineLength" json:"lineLength"`
	LineWidth           float64        `yaml:"lineWidth" json:"lineWidth"`
	LineBeginOffset     float64        `yaml:"lineBeginOffset" json:"lineBeginOffset"`
	LineVariance        float64        `yaml:"lineVariance" json:"lineVariance"`
	GridSpacing         float64        `yaml:"gridSpacing" json:"gridSpacing"`
	ViewScale           float64        `yaml:"viewScale" json:"viewScale"`
	ParticleCount       int            `yaml:"particleCount" json:"particleCount"`
	MaxTextureSize      int            `yaml:"maxTextureSize" json:"maxTextureSize"`
	NoiseChannels       []NoiseChannel `yaml:"noiseChannels" json:"noiseChannels"`
}

func Default() *Settings {
	return &Settings{
		Mode:                ModeNormal,
		FluidSize:           DefaultFluidSize,
		FluidFrameRate:      DefaultFluidFrameRate,
		Viscosity:           DefaultViscosity,
		VelocityDissipation: DefaultVelocityDissipation,
		PressureIterations:  DefaultPressureIterations,
		DiffusionIterations: DefaultDiffusionIterations,
		ColorMode:           ColorMode{Preset: PresetOriginal},
		LineLength:          DefaultLineLength,
		LineWidth:           DefaultLineWidth,
		LineBeginOffset:     DefaultLineBeginOffset,
		LineVariance:        DefaultLineVariance,
		GridSpacing:         DefaultGridSpacing,
		ViewScale:           DefaultViewScale,
		ParticleCount:       DefaultParticleCount,
		MaxTextureSize:      DefaultMaxTextureSize,
		NoiseChannels: []NoiseChannel{
			{Scale: 2.5, Multiplier: 1.0, OffsetIncrement: 0.09},
			{Scale: 15.0, Multiplier: 0.7, OffsetIncrement: 0.54},
			{Scale: 30.0, Multiplier: 0.5, OffsetIncrement: 1.08},
		},
	}
}

// FluidTimestep is the largest simulated step the fluid takes at once.
func (s *Settings) FluidTimestep() float64 {
	return 1.0 / s.FluidFrameRate
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	c := *s
	c.NoiseChannels = append([]NoiseChannel(nil), s.NoiseChannels...)
	return &c
}

// Parse decodes a payload over the defaults. An empty payload, or a literal
// null, selects the defaults.
func Parse(payload []byte) (*Settings, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return Default(), nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, &ParseError{Err: ErrMalformed, Cause: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &ParseError{Err: ErrMalformed, Cause: errors.New("payload is not an object")}
	}

	if err := checkIntegers(doc.Content[0]); err != nil {
		return nil, err
	}

	s := Default()
	if err := doc.Content[0].Decode(s); err != nil {
		return nil, &ParseError{Err: ErrMalformed, Cause: err}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// integerFields are decoded into Go ints, which yaml.v3 would fill by
// truncating a float.
var integerFields = map[string]bool{
	"seed":                true,
	"fluidSize":           true,
	"pressureIterations":  true,
	"diffusionIterations": true,
	"particleCount":       true,
	"maxTextureSize":      true,
}

// checkIntegers rejects a fractional or exponent number given for an integer
// field, as a JSON decoder into an integer would.
func checkIntegers(m *yaml.Node) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		if integerFields[key.Value] && val.Kind == yaml.ScalarNode && val.ShortTag() == "!!float" {
			return &ParseError{
				Field: key.Value,
				Value: val.Value,
				Err:   ErrMalformed,
				Cause: errors.New("expected an integer"),
			}
		}
	}
	return nil
}

// ParseString is Parse for hosts that pass a nullable string.
func ParseString(payload *string) (*Settings, error) {
	if payload == nil {
		return Default(), nil
	}
	return Parse([]byte(*payload))
}

// Marshal encodes settings in the payload format.
func Marshal(s *Settings) ([]byte, error) {
	return yaml.Marshal(s)
}

func (s *Settings) Validate() error {
	switch s.Mode {
	case ModeNormal, ModeDebugNoise, ModeDebugFluid, ModeDebugPressure:
	default:
		return outOfRange("mode", s.Mode)
	}
	if _, ok := palettes[s.ColorMode.Preset]; !ok {
		return outOfRange("colorMode.preset", s.ColorMode.Preset)
	}

	ints := []struct {
		field string
		value int
		min   int
		max   int
	}{
		{"fluidSize", s.FluidSize, 8, 2048},
		{"pressureIterations", s.PressureIterations, 1, 1000},
		{"diffusionIterations", s.DiffusionIterations, 0, 1000},
		{"particleCount", s.ParticleCount, 1, MaxParticleCount},
		{"maxTextureSize", s.MaxTextureSize, 1, math.MaxInt32},
	}
	for _, c := range ints {
		if c.value < c.min || c.value > c.max {
			return outOfRange(c.field, c.value)
		}
	}

	type bound struct {
		field string
		value float64
	}
	positive := []bound{
		{"fluidFrameRate", s.FluidFrameRate},
		{"lineLength", s.LineLength},
		{"lineWidth", s.LineWidth},
		{"gridSpacing", s.GridSpacing},
		{"viewScale", s.ViewScale},
	}
	for _, c := range positive {
		if !finite(c.value) || c.value <= 0 {
			return outOfRange(c.field, c.value)
		}
	}

	nonNegative := []bound{
		{"viscosity", s.Viscosity},
		{"velocityDissipation", s.VelocityDissipation},
	}
	for _, c := range nonNegative {
		if !finite(c.value) || c.value < 0 {
			return outOfRange(c.field, c.value)
		}
	}

	unit := []bound{
		{"lineBeginOffset", s.LineBeginOffset},
		{"lineVariance", s.LineVariance},
	}
	for _, c := range unit {
		if !finite(c.value) || c.value < 0 || c.value > 1 {
			return outOfRange(c.field, c.value)
		}
	}

	for i, ch := range s.NoiseChannels {
		if !finite(ch.Scale) || ch.Scale <= 0 {
			return outOfRange(fmt.Sprintf("noiseChannels[%d].scale", i), ch.Scale)
		}
		if !finite(ch.Multiplier) || !finite(ch.OffsetIncrement) {
			return outOfRange(fmt.Sprintf("noiseChannels[%d]", i), ch)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
