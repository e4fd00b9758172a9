package settings

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, ModeNormal, s.Mode)
	assert.Equal(t, DefaultFluidSize, s.FluidSize)
	assert.InDelta(t, 1.0/60, s.FluidTimestep(), 1e-12)
}

func TestParse_EmptySelectsDefaults(t *testing.T) {
	for _, payload := range []string{"", "   ", "\n\t", "null", " null "} {
		s, err := Parse([]byte(payload))
		require.NoError(t, err, "payload %q", payload)
		if diff := cmp.Diff(Default(), s); diff != "" {
			t.Errorf("payload %q: defaults mismatch (-want +got):\n%s", payload, diff)
		}
	}

	s, err := ParseString(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestParse_OverridesAndKeepsDefaults(t *testing.T) {
	payload := `{"viscosity": 2.5, "colorMode": {"preset": "Plasma"}, "fluidSize": 64}`
	s, err := Parse([]byte(payload))
	require.NoError(t, err)

	want := Default()
	want.Viscosity = 2.5
	want.ColorMode.Preset = PresetPlasma
	want.FluidSize = 64
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_IgnoresUnknownKeys(t *testing.T) {
	s, err := Parse([]byte(`{"futureFeature": {"nested": [1, 2]}, "lineWidth": 4}`))
	require.NoError(t, err)
	assert.Equal(t, 4.0, s.LineWidth)
}

func TestParse_ReplacesNoiseChannels(t *testing.T) {
	s, err := Parse([]byte(`{"noiseChannels": [{"scale": 1, "multiplier": 2, "offsetIncrement": 0.1}]}`))
	require.NoError(t, err)
	assert.Equal(t, []NoiseChannel{{Scale: 1, Multiplier: 2, OffsetIncrement: 0.1}}, s.NoiseChannels)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"array", `[1, 2, 3]`},
		{"number", `42`},
		{"string", `"hello"`},
		{"bool", `true`},
		{"broken json", `{"viscosity": `},
		{"wrong type float", `{"viscosity": "thick"}`},
		{"wrong type int", `{"fluidSize": "big"}`},
		{"wrong type object", `{"colorMode": [1]}`},
		{"wrong type list", `{"noiseChannels": {"scale": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.payload))
			require.Error(t, err)
			assert.Nil(t, s, "no partially defaulted settings on failure")
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)

			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestParse_FractionalInteger(t *testing.T) {
	tests := []struct {
		payload string
		field   string
	}{
		{`{"particleCount": 64.7}`, "particleCount"},
		{`{"fluidSize": 12.9}`, "fluidSize"},
		{`{"pressureIterations": 19.5}`, "pressureIterations"},
		{`{"diffusionIterations": 3.0}`, "diffusionIterations"},
		{`{"maxTextureSize": 4.096e3}`, "maxTextureSize"},
		{`{"seed": 0.5}`, "seed"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			s, err := Parse([]byte(tt.payload))
			require.Error(t, err)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, ErrMalformed)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.field, pe.Field)
		})
	}

	s, err := Parse([]byte(`{"particleCount": 64, "viscosity": 2}`))
	require.NoError(t, err)
	assert.Equal(t, 64, s.ParticleCount)
	assert.Equal(t, 2.0, s.Viscosity)
}

func TestValidate_ReportsFirstBadFieldInOrder(t *testing.T) {
	s := Default()
	s.LineLength = 0
	s.ViewScale = 0
	s.LineVariance = 2

	for i := 0; i < 20; i++ {
		var pe *ParseError
		require.True(t, errors.As(s.Validate(), &pe))
		assert.Equal(t, "lineLength", pe.Field)
	}
}

func TestParse_OutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"mode", `{"mode": "wireframe"}`, "mode"},
		{"preset", `{"colorMode": {"preset": "Neon"}}`, "colorMode.preset"},
		{"fluid size", `{"fluidSize": 0}`, "fluidSize"},
		{"particles", `{"particleCount": 100000}`, "particleCount"},
		{"negative viscosity", `{"viscosity": -1}`, "viscosity"},
		{"zero frame rate", `{"fluidFrameRate": 0}`, "fluidFrameRate"},
		{"variance", `{"lineVariance": 1.5}`, "lineVariance"},
		{"noise scale", `{"noiseChannels": [{"scale": 0}]}`, "noiseChannels[0].scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.payload))
			require.Error(t, err)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, ErrOutOfRange)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestValidate_NonFinite(t *testing.T) {
	s := Default()
	s.ViewScale = math.Inf(1)
	assert.ErrorIs(t, s.Validate(), ErrOutOfRange)

	s = Default()
	s.LineLength = math.NaN()
	assert.ErrorIs(t, s.Validate(), ErrOutOfRange)
}

func TestMarshalRoundTrip(t *testing.T) {
	s := GetPreset("plasma")
	require.NotNil(t, s)

	data, err := Marshal(s)
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	if diff := cmp.Diff(s, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	s := Default()
	c := s.Clone()
	c.NoiseChannels[0].Scale = 99
	assert.NotEqual(t, 99.0, s.NoiseChannels[0].Scale)
}

func TestGetPreset(t *testing.T) {
	s := GetPreset("poolside")
	require.NotNil(t, s)
	assert.Equal(t, PresetPoolside, s.ColorMode.Preset)
	assert.NoError(t, s.Validate())

	assert.Nil(t, GetPreset("nonexistent"))
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	require.Len(t, names, len(Presets))
	for _, name := range names {
		assert.NoError(t, GetPreset(name).Validate(), name)
	}
}

func TestPaletteFor(t *testing.T) {
	assert.Equal(t, palettes[PresetPlasma], PaletteFor(PresetPlasma))
	assert.Equal(t, palettes[PresetOriginal], PaletteFor("unknown"))
}
