package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/stickycaps/internal/caps"
	"github.com/san-kum/stickycaps/internal/config"
	"github.com/san-kum/stickycaps/internal/metrics"
	"github.com/san-kum/stickycaps/internal/stage"
)

const (
	panelWidth     = 42
	rateWindow     = 25
	hueStepDegrees = 15
)

type control int

const (
	ctrlFPS control = iota
	ctrlFontSize
	ctrlFontFamily
	ctrlProbability
	ctrlUppercase
	ctrlLowercase
	ctrlBackground
	ctrlMessage
	numControls
)

var controlNames = [numControls]string{
	ctrlFPS:         "FPS",
	ctrlFontSize:    "Font size",
	ctrlFontFamily:  "Font family",
	ctrlProbability: "Probability",
	ctrlUppercase:   "Uppercase",
	ctrlLowercase:   "Lowercase",
	ctrlBackground:  "Background",
	ctrlMessage:     "Message",
}

// palette is what left/right cycles colour controls through.
var palette = []caps.Color{
	"#ffffff", "#ff0000", "#ffa500", "#ffff00", "#00ff00",
	"#00ffff", "#0000ff", "#ff00ff", "#ffc0cb", "#808080", "#000000",
}

// App is the bubbletea model: the stage on the left, controls on the right.
type App struct {
	stage    *stage.Stage
	surface  *Surface
	settings config.Settings

	frame    stage.Frame
	hasFrame bool
	rate     *metrics.FrameRate

	selected  control
	editing   bool
	input     textinput.Model
	showPanel bool
	theme     Theme
	preset    int

	width, height int
}

func NewApp(st *stage.Stage, surface *Surface) App {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 200
	input.Width = panelWidth - 6

	return App{
		stage:     st,
		surface:   surface,
		settings:  st.Settings(),
		input:     input,
		showPanel: true,
		theme:     ThemeCyberpunk,
		width:     80,
		height:    24,
		rate:      metrics.NewFrameRate(rateWindow),
	}
}

func (a App) Init() tea.Cmd {
	return a.surface.Next()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		a.frame = stage.Frame(msg)
		a.hasFrame = true
		a.rate.Observe(a.frame.At)
		return a, a.surface.Next()
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case tea.KeyMsg:
		if a.editing {
			return a.editKey(msg)
		}
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) editKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := a.input.Value()
		a.apply(func(s *config.Settings) { s.Message = text })
		a.editing = false
		a.input.Blur()
		return a, nil
	case "esc":
		a.editing = false
		a.input.Blur()
		return a, nil
	case "ctrl+c":
		return a, tea.Quit
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "h", "?":
		a.showPanel = !a.showPanel
	case "tab", "down", "j":
		a.selected = (a.selected + 1) % numControls
	case "shift+tab", "up", "k":
		a.selected = (a.selected + numControls - 1) % numControls
	case "right", "l", "+", "=":
		a.adjust(1)
	case "left", "-", "_":
		a.adjust(-1)
	case "shift+right", "L":
		a.adjust(10)
	case "shift+left", "H":
		a.adjust(-10)
	case "enter", " ":
		switch a.selected {
		case ctrlMessage:
			a.editing = true
			a.input.SetValue(a.settings.Message)
			a.input.CursorEnd()
			return a, a.input.Focus()
		case ctrlFontFamily:
			a.apply(func(s *config.Settings) { s.FontFamily = s.FontFamily.Toggle() })
		}
	case "p":
		names := config.ListPresets()
		a.preset = (a.preset + 1) % len(names)
		preset, _ := config.GetPreset(names[a.preset])
		a.settings = a.stage.Replace(preset)
		a.rate.Reset()
	case "r":
		a.settings = a.stage.Replace(config.Default())
	case "t":
		a.theme = NextTheme(a.theme)
	}
	return a, nil
}

// adjust steps the selected control. Colour controls walk the palette one
// entry per step, or shift the hue when stepped by ten.
func (a *App) adjust(delta int) {
	switch a.selected {
	case ctrlFPS:
		a.apply(func(s *config.Settings) { s.FPS += delta })
	case ctrlFontSize:
		a.apply(func(s *config.Settings) { s.FontSize += delta })
	case ctrlFontFamily:
		a.apply(func(s *config.Settings) { s.FontFamily = s.FontFamily.Toggle() })
	case ctrlProbability:
		// Steps land on the 0.01 grid.
		a.apply(func(s *config.Settings) {
			s.Probability = math.Round((s.Probability+float64(delta)*0.01)*100) / 100
		})
	case ctrlUppercase:
		a.apply(func(s *config.Settings) { s.Uppercase = stepColor(s.Uppercase, delta) })
	case ctrlLowercase:
		a.apply(func(s *config.Settings) { s.Lowercase = stepColor(s.Lowercase, delta) })
	case ctrlBackground:
		a.apply(func(s *config.Settings) { s.Background = stepColor(s.Background, delta) })
	}
}

func (a *App) apply(fn func(*config.Settings)) {
	a.settings = a.stage.Update(fn)
}

func stepColor(c caps.Color, delta int) caps.Color {
	if delta >= 10 || delta <= -10 {
		return c.Rotate(float64(delta/10) * hueStepDegrees)
	}
	idx := -1
	for i, p := range palette {
		if p == c {
			idx = i
			break
		}
	}
	if idx < 0 {
		return palette[0]
	}
	n := len(palette)
	return palette[((idx+delta)%n+n)%n]
}

// MeasuredRate is the frame rate observed over the most recent frames.
func (a App) MeasuredRate() float64 {
	return a.rate.Value()
}

func (a App) View() string {
	stageWidth := a.width
	if a.showPanel {
		stageWidth -= panelWidth + 4
	}
	stageView := a.viewStage(max(stageWidth, 10), max(a.height, 3))
	if !a.showPanel {
		return stageView
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, stageView, a.viewPanel())
}

func (a App) viewStage(w, h int) string {
	bg := lipgloss.Color(a.settings.Background)
	base := lipgloss.NewStyle().Background(bg)
	if a.settings.FontSize >= config.DefaultFontSize {
		base = base.Bold(true)
	}

	var text string
	if a.hasFrame {
		text = a.frame.Output.Styled(base)
	} else {
		text = base.Foreground(lipgloss.Color(a.settings.Lowercase)).Render(a.settings.Message)
	}

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, text,
		lipgloss.WithWhitespaceBackground(bg))
}

func (a App) viewPanel() string {
	st := a.theme.styles()

	var b strings.Builder
	b.WriteString(st.header.Render("STICKYCAPS") + "\n")

	for c := control(0); c < numControls; c++ {
		label := controlNames[c]
		value := a.controlValue(c)
		if c == a.selected {
			b.WriteString(st.cursor.Render("▸ ") + st.label.Render(label) + st.selected.Render(value) + "\n")
		} else {
			b.WriteString("  " + st.label.Render(label) + st.value.Render(value) + "\n")
		}
	}

	if a.editing {
		b.WriteString("\n" + a.input.View() + "\n")
	}

	b.WriteString("\n" + st.label.Render("Measured") + st.value.Render(fmt.Sprintf("%.1f fps", a.MeasuredRate())) + "\n")
	if a.hasFrame {
		b.WriteString(st.label.Render("Upper share") + st.value.Render(fmt.Sprintf("%.0f%%", a.frame.Output.UpperFraction()*100)) + "\n")
	}
	b.WriteString(st.label.Render("Theme") + st.value.Render(a.theme.Name) + "\n")

	b.WriteString("\n" + st.key.Render("tab") + st.hint.Render(" select  ") +
		st.key.Render("←/→") + st.hint.Render(" adjust  ") +
		st.key.Render("enter") + st.hint.Render(" edit") + "\n")
	b.WriteString(st.key.Render("p") + st.hint.Render(" preset  ") +
		st.key.Render("t") + st.hint.Render(" theme  ") +
		st.key.Render("h") + st.hint.Render(" hide  ") +
		st.key.Render("q") + st.hint.Render(" quit"))

	return st.panel.Render(b.String())
}

func (a App) controlValue(c control) string {
	s := a.settings
	switch c {
	case ctrlFPS:
		return fmt.Sprintf("%d", s.FPS)
	case ctrlFontSize:
		return fmt.Sprintf("%dpx", s.FontSize)
	case ctrlFontFamily:
		return string(s.FontFamily)
	case ctrlProbability:
		return fmt.Sprintf("Upper <(%.2f)> Lower", s.Probability)
	case ctrlUppercase:
		return swatch(s.Uppercase)
	case ctrlLowercase:
		return swatch(s.Lowercase)
	case ctrlBackground:
		return swatch(s.Background)
	case ctrlMessage:
		msg := s.Message
		if len([]rune(msg)) > 22 {
			msg = string([]rune(msg)[:21]) + "…"
		}
		return fmt.Sprintf("%q", msg)
	}
	return ""
}

func swatch(c caps.Color) string {
	fg := lipgloss.Color("#000000")
	if c.Luminance() < 0.5 {
		fg = lipgloss.Color("#ffffff")
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(c)).Foreground(fg).Render(" " + string(c) + " ")
}

// Run drives an interactive session until the user quits.
func Run(settings config.Settings, opts ...stage.Option) error {
	surface := NewSurface()
	st := stage.New(surface, settings, opts...)

	app := NewApp(st, surface)
	st.Start()
	defer st.Stop()
	defer surface.Close()

	_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}
