package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/stickycaps/internal/caps"
	"github.com/san-kum/stickycaps/internal/config"
)

func addSettingsFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "settings file (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a named preset")
	pf.StringVar(&message, "message", config.DefaultMessage, "text to display")
	pf.IntVar(&fps, "fps", config.DefaultFPS, "frames per second (0 draws once)")
	pf.Float64Var(&probability, "probability", config.DefaultProbability, "chance each letter is uppercase")
	pf.IntVar(&fontSize, "font-size", config.DefaultFontSize, "font size in px")
	pf.StringVar(&fontFamily, "font-family", string(config.Proportional), "proportional or monospaced")
	pf.StringVar(&background, "background", config.DefaultBackground, "background colour")
	pf.StringVar(&uppercase, "uppercase", config.DefaultUppercase, "uppercase colour")
	pf.StringVar(&lowercase, "lowercase", config.DefaultLowercase, "lowercase colour")
}

// resolveSettings layers defaults, then the preset, then the config file,
// then any flag the user actually set.
func resolveSettings(cmd *cobra.Command) (config.Settings, error) {
	s := config.Default()

	if preset != "" {
		p, ok := config.GetPreset(preset)
		if !ok {
			return s, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		s = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, s)
		if err != nil {
			return s, err
		}
		s = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("message") {
		s.Message = message
	}
	if flags.Changed("fps") {
		s.FPS = fps
	}
	if flags.Changed("probability") {
		s.Probability = probability
	}
	if flags.Changed("font-size") {
		s.FontSize = fontSize
	}
	if flags.Changed("font-family") {
		s.FontFamily = config.FontFamily(fontFamily)
	}
	if flags.Changed("background") {
		s.Background = caps.Color(background)
	}
	if flags.Changed("uppercase") {
		s.Uppercase = caps.Color(uppercase)
	}
	if flags.Changed("lowercase") {
		s.Lowercase = caps.Color(lowercase)
	}

	if err := s.Normalize(); err != nil {
		return s, err
	}
	return s, nil
}
