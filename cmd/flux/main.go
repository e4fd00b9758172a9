package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/piee-kun/flux-screensavers/internal/config"
	"github.com/piee-kun/flux-screensavers/internal/gui"
	"github.com/piee-kun/flux-screensavers/internal/viz"
)

var (
	configPath string
	logLevel   string
	dataDir    string
	preset     string
	colors     string
	width      float64
	height     float64
	pixelRatio float64
	fps        float64
	frames     int
	resizeTo   string
	integrator string
	outPath    string
	saveRun    bool
	pickPreset bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "flux",
		Short:         "fluid screensaver engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLive,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file or directory holding "+config.FileName)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "settings preset")
	rootCmd.PersistentFlags().StringVar(&colors, "colors", "", "color preset")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "animate headless and print engine stats",
		RunE:  runHeadless,
	}
	surfaceFlags(runCmd)
	runCmd.Flags().IntVar(&frames, "frames", 0, "frames to animate")
	runCmd.Flags().StringVar(&resizeTo, "resize", "", "resize to WxH halfway through")
	runCmd.Flags().StringVar(&integrator, "integrator", "", "fluid stepper")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time animate calls and plot frame times",
		RunE:  runBench,
	}
	surfaceFlags(benchCmd)
	benchCmd.Flags().IntVar(&frames, "frames", 0, "frames to animate")
	benchCmd.Flags().StringVar(&integrator, "integrator", "", "fluid stepper")
	benchCmd.Flags().StringVarP(&outPath, "out", "o", "", "export the run (.csv or .json, - for stdout)")
	benchCmd.Flags().BoolVar(&saveRun, "save", false, "store the run under --data")
	benchCmd.Flags().StringVar(&dataDir, "data", "./data", "run store directory")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored bench runs",
		RunE:  listRuns,
	}
	runsCmd.Flags().StringVar(&dataDir, "data", "./data", "run store directory")

	plotCmd := &cobra.Command{
		Use:   "plot [run-id]",
		Short: "plot frame times of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&dataDir, "data", "./data", "run store directory")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run in the terminal",
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&fps, "fps", 0, "frames per second")
	liveCmd.Flags().BoolVar(&pickPreset, "pick", false, "choose a color preset first")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run in a window",
		RunE:  runGUI,
	}
	surfaceFlags(guiCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list settings and color presets",
		RunE:  listPresets,
	}

	settingsCmd := &cobra.Command{
		Use:   "settings [file]",
		Short: "print the resolved settings, or validate a settings file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showSettings,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "write a default config file",
		RunE:  writeConfig,
	}

	rootCmd.AddCommand(runCmd, benchCmd, runsCmd, plotCmd, liveCmd, guiCmd, presetsCmd, settingsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func surfaceFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&width, "width", 0, "logical width")
	cmd.Flags().Float64Var(&height, "height", 0, "logical height")
	cmd.Flags().Float64Var(&pixelRatio, "pixel-ratio", 0, "device pixel ratio")
	cmd.Flags().Float64Var(&fps, "fps", 0, "frames per second")
}

// loadConfig resolves --config and applies flag overrides on top.
func loadConfig() (*config.Config, *zap.Logger, error) {
	var cfg *config.Config
	boot := zap.NewNop()

	switch info, err := os.Stat(configPath); {
	case configPath == "":
		dir, derr := os.UserConfigDir()
		if derr == nil {
			cfg = config.LoadDir(filepath.Join(dir, "flux"), boot)
		} else {
			cfg = config.DefaultConfig()
		}
	case err == nil && info.IsDir():
		cfg = config.LoadDir(configPath, boot)
	default:
		if cfg, err = config.Load(configPath); err != nil {
			return nil, nil, err
		}
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if preset != "" {
		cfg.Flux.Preset = preset
	}
	if colors != "" {
		cfg.Flux.ColorMode.Preset = settingsColor(colors)
	}
	if width > 0 {
		cfg.Surface.Width = width
	}
	if height > 0 {
		cfg.Surface.Height = height
	}
	if pixelRatio > 0 {
		cfg.Surface.PixelRatio = pixelRatio
	}
	if fps > 0 {
		cfg.Run.FPS = fps
	}
	if frames > 0 {
		cfg.Run.Frames = frames
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	s, err := cfg.Settings()
	if err != nil {
		return err
	}
	opts := viz.Options{
		Settings: viz.TerminalSettings(s),
		FPS:      cfg.Run.FPS,
		Logger:   log,
	}
	if pickPreset {
		return viz.RunInteractive(opts)
	}
	return viz.RunLive(opts)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	s, err := cfg.Settings()
	if err != nil {
		return err
	}
	return gui.Run(gui.Options{
		Width:    int(cfg.Surface.Width),
		Height:   int(cfg.Surface.Height),
		FPS:      int(cfg.Run.FPS),
		Settings: s,
		Logger:   log,
	})
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Location() == "" {
		return config.ErrNoLocation
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Println("wrote", cfg.Location())
	return nil
}
