package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/stickycaps/internal/caps"
)

const (
	DefaultMessage     = "Una rosa blanca de metal"
	DefaultFPS         = 24
	DefaultProbability = 0.5
	DefaultFontSize    = 100
	DefaultBackground  = "#000000"
	DefaultUppercase   = "#ffffff"
	DefaultLowercase   = "#ffffff"

	MaxFPS      = 60
	MinFontSize = 1
	MaxFontSize = 500
)

var (
	ErrFPS         = errors.New("config: fps out of range")
	ErrProbability = errors.New("config: probability out of range")
	ErrFontSize    = errors.New("config: font size out of range")
	ErrFontFamily  = errors.New("config: unknown font family")
	ErrColor       = errors.New("config: invalid color")
)

type FontFamily string

const (
	Proportional FontFamily = "proportional"
	Monospaced   FontFamily = "monospaced"
)

// CSS returns the font-family stack used for the stage.
func (f FontFamily) CSS() string {
	if f == Monospaced {
		return `"Helvetica Monospaced", monospace`
	}
	return `"Helvetica Neue", Helvetica, sans-serif`
}

// Toggle returns the other family.
func (f FontFamily) Toggle() FontFamily {
	if f == Monospaced {
		return Proportional
	}
	return Monospaced
}

// Settings is everything the controls expose.
type Settings struct {
	Message     string     `yaml:"message" json:"message"`
	FPS         int        `yaml:"fps" json:"fps"`
	Probability float64    `yaml:"probability" json:"probability"`
	FontSize    int        `yaml:"font_size" json:"fontSize"`
	FontFamily  FontFamily `yaml:"font_family" json:"fontFamily"`
	Background  caps.Color `yaml:"background" json:"backgroundColor"`
	Uppercase   caps.Color `yaml:"uppercase" json:"uppercaseColor"`
	Lowercase   caps.Color `yaml:"lowercase" json:"lowercaseColor"`
}

func Default() Settings {
	return Settings{
		Message:     DefaultMessage,
		FPS:         DefaultFPS,
		Probability: DefaultProbability,
		FontSize:    DefaultFontSize,
		FontFamily:  Proportional,
		Background:  DefaultBackground,
		Uppercase:   DefaultUppercase,
		Lowercase:   DefaultLowercase,
	}
}

// Load reads a settings file over the defaults.
func Load(path string) (Settings, error) {
	return LoadOver(path, Default())
}

// LoadOver reads a settings file over base. Fields the file leaves out keep
// their value from base.
func LoadOver(path string, base Settings) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	s := base
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := s.Normalize(); err != nil {
		return Settings{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first out-of-range field.
func (s Settings) Validate() error {
	if s.FPS < 0 || s.FPS > MaxFPS {
		return fmt.Errorf("%w: %d (want 0-%d)", ErrFPS, s.FPS, MaxFPS)
	}
	if math.IsNaN(s.Probability) || s.Probability < 0 || s.Probability > 1 {
		return fmt.Errorf("%w: %v (want 0-1)", ErrProbability, s.Probability)
	}
	if s.FontSize < MinFontSize || s.FontSize > MaxFontSize {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrFontSize, s.FontSize, MinFontSize, MaxFontSize)
	}
	if s.FontFamily != Proportional && s.FontFamily != Monospaced {
		return fmt.Errorf("%w: %q", ErrFontFamily, s.FontFamily)
	}
	for _, c := range []caps.Color{s.Background, s.Uppercase, s.Lowercase} {
		if _, err := caps.ParseColor(string(c)); err != nil {
			return fmt.Errorf("%w: %v", ErrColor, err)
		}
	}
	return nil
}

// Normalize canonicalises colours and font family, then validates.
func (s *Settings) Normalize() error {
	s.FontFamily = FontFamily(strings.ToLower(strings.TrimSpace(string(s.FontFamily))))
	for _, c := range []*caps.Color{&s.Background, &s.Uppercase, &s.Lowercase} {
		parsed, err := caps.ParseColor(string(*c))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrColor, err)
		}
		*c = parsed
	}
	return s.Validate()
}

// Clamp pulls numeric fields back into range. Used by the interactive
// controls, which step values rather than validate them. In-range values
// are left untouched.
func (s *Settings) Clamp() {
	s.FPS = max(0, min(MaxFPS, s.FPS))
	s.FontSize = max(MinFontSize, min(MaxFontSize, s.FontSize))
	if math.IsNaN(s.Probability) {
		s.Probability = 0
	}
	s.Probability = math.Max(0, math.Min(1, s.Probability))
}

// RenderConfig is the snapshot handed to the transform engine on a tick.
func (s Settings) RenderConfig() caps.Config {
	return caps.Config{
		Message:     s.Message,
		Probability: s.Probability,
		Uppercase:   s.Uppercase,
		Lowercase:   s.Lowercase,
	}
}
