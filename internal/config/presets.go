package config

import "sort"

var Presets = map[string]Settings{
	"default": Default(),
	"glitch": {
		Message: "SIGNAL LOST", FPS: 60, Probability: 0.5, FontSize: 140,
		FontFamily: Monospaced, Background: "#000000", Uppercase: "#ff00ff", Lowercase: "#00ffff",
	},
	"calm": {
		Message: "breathe in, breathe out", FPS: 2, Probability: 0.1, FontSize: 80,
		FontFamily: Proportional, Background: "#001a33", Uppercase: "#ffd700", Lowercase: "#e0f0ff",
	},
	"terminal": {
		Message: "wake up, neo", FPS: 12, Probability: 0.3, FontSize: 60,
		FontFamily: Monospaced, Background: "#001100", Uppercase: "#88ff88", Lowercase: "#00cc00",
	},
	"rgb": {
		Message: "Red Green Blue", FPS: 30, Probability: 0.5, FontSize: 120,
		FontFamily: Proportional, Background: "#0a0a0a", Uppercase: "#ff0000", Lowercase: "#0000ff",
	},
	"shout": {
		Message: "Una rosa blanca de metal", FPS: 24, Probability: 0.9, FontSize: 200,
		FontFamily: Proportional, Background: "#000000", Uppercase: "#ffffff", Lowercase: "#808080",
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (Settings, bool) {
	s, ok := Presets[name]
	return s, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
