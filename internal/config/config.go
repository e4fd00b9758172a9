// Package config loads the host configuration: the surface to open, how to
// drive frames, and which look to use.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/piee-kun/flux-screensavers/internal/settings"
)

const (
	// Version is the config format this build writes.
	Version = "0.1.0"

	FileName = "settings.yaml"

	DefaultLogLevel   = "warn"
	DefaultWidth      = 960
	DefaultHeight     = 540
	DefaultPixelRatio = 1.0
	DefaultFPS        = 60
	DefaultFrames     = 600
)

// supported accepts any config written by a 0.x build.
var supported = mustConstraint("^0.1")

var (
	ErrUnsupportedVersion = errors.New("config: unsupported version")
	ErrNoLocation         = errors.New("config: no save location")
)

type Config struct {
	Version  string        `yaml:"version"`
	LogLevel string        `yaml:"logLevel"`
	Flux     FluxConfig    `yaml:"flux"`
	Surface  SurfaceConfig `yaml:"surface"`
	Run      RunConfig     `yaml:"run"`

	location string
}

type FluxConfig struct {
	// ColorMode overrides the palette of the preset and settings file when
	// its preset is set.
	ColorMode settings.ColorMode `yaml:"colorMode,omitempty"`
	// Preset names a tuned variation from settings.Presets.
	Preset string `yaml:"preset,omitempty"`
	// SettingsFile is an engine settings payload applied under the preset
	// and color mode.
	SettingsFile string `yaml:"settingsFile,omitempty"`
}

type SurfaceConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	PixelRatio float64 `yaml:"pixelRatio"`
}

type RunConfig struct {
	FPS    float64 `yaml:"fps"`
	Frames int     `yaml:"frames"`
}

func DefaultConfig() *Config {
	return &Config{
		Version:  Version,
		LogLevel: DefaultLogLevel,
		Surface: SurfaceConfig{
			Width:      DefaultWidth,
			Height:     DefaultHeight,
			PixelRatio: DefaultPixelRatio,
		},
		Run: RunConfig{
			FPS:    DefaultFPS,
			Frames: DefaultFrames,
		},
	}
}

// Load reads a config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.location = path
	return cfg, nil
}

// LoadDir loads FileName from dir, falling back to the defaults when the file
// is missing or unreadable. An empty dir means defaults with no location.
func LoadDir(dir string, log *zap.Logger) *Config {
	if dir == "" {
		return DefaultConfig()
	}
	path := filepath.Join(dir, FileName)

	cfg, err := Load(path)
	switch {
	case err == nil:
		return cfg
	case errors.Is(err, fs.ErrNotExist):
		log.Info("no settings file found, using defaults", zap.String("path", path))
	default:
		log.Error("failed to load settings", zap.String("path", path), zap.Error(err))
	}

	cfg = DefaultConfig()
	cfg.location = path
	return cfg
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Save writes the config back to where it was loaded from.
func (c *Config) Save() error {
	if c.location == "" {
		return ErrNoLocation
	}
	return Save(c.location, c)
}

func (c *Config) Location() string { return c.location }

func (c *Config) Validate() error {
	v, err := semver.NewVersion(c.Version)
	if err != nil {
		return fmt.Errorf("version %q: %w", c.Version, err)
	}
	if !supported.Check(v) {
		return fmt.Errorf("version %s: %w", v, ErrUnsupportedVersion)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Surface.Width <= 0 || c.Surface.Height <= 0 || c.Surface.PixelRatio <= 0 {
		return fmt.Errorf("surface %vx%v@%v: must be positive", c.Surface.Width, c.Surface.Height, c.Surface.PixelRatio)
	}
	if c.Run.FPS <= 0 {
		return fmt.Errorf("fps %v: must be positive", c.Run.FPS)
	}
	if c.Flux.Preset != "" {
		if _, ok := settings.Presets[c.Flux.Preset]; !ok {
			return fmt.Errorf("unknown preset %q (available: %v)", c.Flux.Preset, settings.ListPresets())
		}
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.LogLevel)
}

// Settings resolves the engine settings: the settings file, or the defaults,
// then the preset, then the color mode.
func (c *Config) Settings() (*settings.Settings, error) {
	s := settings.Default()
	if c.Flux.SettingsFile != "" {
		data, err := os.ReadFile(c.Flux.SettingsFile)
		if err != nil {
			return nil, err
		}
		if s, err = settings.Parse(data); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Flux.SettingsFile, err)
		}
	}
	if c.Flux.Preset != "" {
		apply, ok := settings.Presets[c.Flux.Preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", c.Flux.Preset)
		}
		apply(s)
	}
	if c.Flux.ColorMode.Preset != "" {
		s.ColorMode = c.Flux.ColorMode
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Payload is Settings encoded for engine.New.
func (c *Config) Payload() (*string, error) {
	s, err := c.Settings()
	if err != nil {
		return nil, err
	}
	data, err := settings.Marshal(s)
	if err != nil {
		return nil, err
	}
	p := string(data)
	return &p, nil
}

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}
