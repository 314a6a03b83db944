package caps

import (
	"errors"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"white", "#ffffff"},
		{"  Black ", "#000000"},
		{"#FF8800", "#ff8800"},
		{"#f80", "#ff8800"},
		{"grey", "#808080"},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseColor_Invalid(t *testing.T) {
	for _, in := range []string{"", "chartreuse-ish", "#12", "#gggggg", "ffffff"} {
		if _, err := ParseColor(in); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("ParseColor(%q): expected ErrInvalidColor, got %v", in, err)
		}
	}
}

func TestColorRotate(t *testing.T) {
	red := MustParseColor("red")
	if got := red.Rotate(360); got != red {
		t.Errorf("full rotation changed colour: %s", got)
	}
	if got := red.Rotate(120); got == red {
		t.Error("expected hue shift")
	}
	if got := Color("nope").Rotate(90); got != "nope" {
		t.Errorf("expected unparseable colour unchanged, got %s", got)
	}
}

func TestColorLuminance(t *testing.T) {
	if MustParseColor("white").Luminance() <= MustParseColor("black").Luminance() {
		t.Error("white should be lighter than black")
	}
}
