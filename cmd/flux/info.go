package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/piee-kun/flux-screensavers/internal/settings"
	"github.com/piee-kun/flux-screensavers/internal/viz"
)

func listPresets(cmd *cobra.Command, args []string) error {
	header := lipgloss.NewStyle().Bold(true)

	fmt.Println(header.Render("settings presets"))
	for _, name := range settings.ListPresets() {
		fmt.Printf("  %-10s %s\n", name, viz.Subtle.Render(viz.Describe(name)))
	}

	fmt.Println()
	fmt.Println(header.Render("color presets"))
	for _, p := range settings.ColorPresets {
		th := themeSwatch(p)
		fmt.Printf("  %-10s %s\n", p, th)
	}

	fmt.Println()
	fmt.Println(header.Render("modes"))
	for _, m := range settings.Modes {
		fmt.Printf("  %s\n", m)
	}
	return nil
}

// themeSwatch renders the compass colors of a palette.
func themeSwatch(p settings.ColorPreset) string {
	th := viz.ThemeFor(p)
	var b strings.Builder
	for _, c := range []lipgloss.Color{th.Primary, th.Secondary, th.Accent} {
		b.WriteString(lipgloss.NewStyle().Foreground(c).Render("██"))
	}
	b.WriteString(" ")
	b.WriteString(viz.GradientText(string(p), th.Primary, th.Accent))
	return b.String()
}

// showSettings prints the settings the config resolves to, or validates a
// settings file when one is given.
func showSettings(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if _, err := settings.Parse(data); err != nil {
			return err
		}
		fmt.Printf("%s: ok\n", args[0])
		return nil
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	s, err := cfg.Settings()
	if err != nil {
		return err
	}
	out, err := settings.Marshal(s)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

// settingsColor matches a color preset name in any case. Unknown names are
// passed through for validation to reject.
func settingsColor(name string) settings.ColorPreset {
	for _, p := range settings.ColorPresets {
		if strings.EqualFold(string(p), name) {
			return p
		}
	}
	return settings.ColorPreset(name)
}
