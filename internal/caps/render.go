package caps

import (
	"html"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Role records how a run was rendered on this draw.
type Role int

const (
	RoleUnchanged Role = iota
	RoleUpper
	RoleLower
)

func (r Role) String() string {
	switch r {
	case RoleUpper:
		return "upper"
	case RoleLower:
		return "lower"
	default:
		return "unchanged"
	}
}

// Run is a stretch of output text sharing one role. Letters always get a
// run of their own; neighbouring caseless characters share one.
type Run struct {
	Text string
	Role Role
}

// Config is the input to a single draw. It is passed by value and never
// retained.
type Config struct {
	Message     string
	Probability float64
	Uppercase   Color
	Lowercase   Color
}

// Output is the result of one draw.
type Output struct {
	Runs      []Run
	Uppercase Color
	Lowercase Color
}

// Engine draws renderings from its own random source.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine returns an engine drawing from src. A nil src gets a randomly
// seeded PCG source.
func NewEngine(src rand.Source) *Engine {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Engine{rng: rand.New(src)}
}

// NewSeeded returns an engine whose draws are fully determined by seed.
func NewSeeded(seed uint64) *Engine {
	return NewEngine(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

var defaultEngine = NewEngine(nil)

// Render draws cfg on the package default engine.
func Render(cfg Config) Output {
	return defaultEngine.Render(cfg)
}

// Render capitalises each letter of cfg.Message independently with
// probability cfg.Probability. The probability is clamped to [0,1] and NaN
// counts as 0.
func (e *Engine) Render(cfg Config) Output {
	p := clampProbability(cfg.Probability)
	out := Output{
		Runs:      make([]Run, 0, utf8.RuneCountInString(cfg.Message)),
		Uppercase: cfg.Uppercase,
		Lowercase: cfg.Lowercase,
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			out.Runs = append(out.Runs, Run{Text: plain.String(), Role: RoleUnchanged})
			plain.Reset()
		}
	}

	for _, r := range cfg.Message {
		if !hasCase(r) {
			plain.WriteRune(r)
			continue
		}
		flush()
		if e.rng.Float64() < p {
			out.Runs = append(out.Runs, Run{Text: string(unicode.ToUpper(r)), Role: RoleUpper})
		} else {
			out.Runs = append(out.Runs, Run{Text: string(unicode.ToLower(r)), Role: RoleLower})
		}
	}
	flush()

	return out
}

func hasCase(r rune) bool {
	return unicode.ToUpper(r) != unicode.ToLower(r)
}

func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Text returns the rendering without styling.
func (o Output) Text() string {
	var b strings.Builder
	for _, run := range o.Runs {
		b.WriteString(run.Text)
	}
	return b.String()
}

// HTML returns markup safe to assign to an element's innerHTML. Letters are
// wrapped in a span coloured by role; everything else is escaped text.
func (o Output) HTML() string {
	upper := html.EscapeString(string(o.Uppercase))
	lower := html.EscapeString(string(o.Lowercase))

	var b strings.Builder
	for _, run := range o.Runs {
		text := html.EscapeString(run.Text)
		switch run.Role {
		case RoleUpper:
			b.WriteString(`<span style="color: ` + upper + `">` + text + `</span>`)
		case RoleLower:
			b.WriteString(`<span style="color: ` + lower + `">` + text + `</span>`)
		default:
			b.WriteString(text)
		}
	}
	return b.String()
}

// ANSI returns the rendering styled for a terminal. Colour output follows
// the lipgloss default renderer's detected profile.
func (o Output) ANSI() string {
	var b strings.Builder
	upper := lipgloss.NewStyle().Foreground(lipgloss.Color(o.Uppercase))
	lower := lipgloss.NewStyle().Foreground(lipgloss.Color(o.Lowercase))
	for _, run := range o.Runs {
		switch run.Role {
		case RoleUpper:
			b.WriteString(upper.Render(run.Text))
		case RoleLower:
			b.WriteString(lower.Render(run.Text))
		default:
			b.WriteString(run.Text)
		}
	}
	return b.String()
}

// Styled renders every run through base, adding the role foreground to
// letters. Use it when the runs sit on a coloured background.
func (o Output) Styled(base lipgloss.Style) string {
	var b strings.Builder
	upper := base.Foreground(lipgloss.Color(o.Uppercase))
	lower := base.Foreground(lipgloss.Color(o.Lowercase))
	for _, run := range o.Runs {
		switch run.Role {
		case RoleUpper:
			b.WriteString(upper.Render(run.Text))
		case RoleLower:
			b.WriteString(lower.Render(run.Text))
		default:
			b.WriteString(base.Render(run.Text))
		}
	}
	return b.String()
}

// UpperFraction is the share of letter runs drawn uppercase, or 0 when the
// output has no letters.
func (o Output) UpperFraction() float64 {
	var upper, letters int
	for _, run := range o.Runs {
		switch run.Role {
		case RoleUpper:
			upper++
			letters++
		case RoleLower:
			letters++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}
