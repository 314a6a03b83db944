package caps

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned by ParseColor for values that are neither a
// hex triplet nor a known colour keyword.
var ErrInvalidColor = errors.New("caps: invalid color")

// Color is a CSS colour value, normally "#rrggbb".
type Color string

// keywords covers the CSS level 1 names plus the few the controls offer.
var keywords = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"lime":    "#00ff00",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"cyan":    "#00ffff",
	"aqua":    "#00ffff",
	"magenta": "#ff00ff",
	"fuchsia": "#ff00ff",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"maroon":  "#800000",
	"olive":   "#808000",
	"navy":    "#000080",
	"purple":  "#800080",
	"teal":    "#008080",
	"orange":  "#ffa500",
	"pink":    "#ffc0cb",
}

// ParseColor normalises s to a lowercase "#rrggbb" value. It accepts
// "#rrggbb", "#rgb" and the keywords above, case-insensitively.
func ParseColor(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if hex, ok := keywords[v]; ok {
		return Color(hex), nil
	}
	if len(v) == 4 && v[0] == '#' {
		v = string([]byte{'#', v[1], v[1], v[2], v[2], v[3], v[3]})
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return Color(c.Hex()), nil
}

// MustParseColor is ParseColor for constants; it panics on bad input.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Rotate shifts the hue of c by deg degrees. Values that do not parse are
// returned unchanged.
func (c Color) Rotate(deg float64) Color {
	parsed, err := colorful.Hex(string(c))
	if err != nil {
		return c
	}
	h, s, l := parsed.Hsl()
	h += deg
	for h < 0 {
		h += 360
	}
	for h >= 360 {
		h -= 360
	}
	return Color(colorful.Hsl(h, s, l).Clamped().Hex())
}

// Luminance reports the perceptual lightness of c in [0,1]; unparseable
// colours report 0.
func (c Color) Luminance() float64 {
	parsed, err := colorful.Hex(string(c))
	if err != nil {
		return 0
	}
	l, _, _ := parsed.Lab()
	return l
}

func (c Color) String() string { return string(c) }
