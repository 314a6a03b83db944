package viz

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/san-kum/stickycaps/internal/caps"
	"github.com/san-kum/stickycaps/internal/config"
	"github.com/san-kum/stickycaps/internal/stage"
)

func testFrame(seq uint64, msg string) stage.Frame {
	out := caps.NewSeeded(seq).Render(caps.Config{Message: msg, Probability: 1, Uppercase: "#ffffff"})
	return stage.Frame{Seq: seq, Output: out, Settings: config.Default(), At: time.Now()}
}

func TestSurfaceKeepsLatestFrame(t *testing.T) {
	s := NewSurface()

	for i := uint64(1); i <= 3; i++ {
		if err := s.Write(testFrame(i, "abc")); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	msg := s.Next()()
	f, ok := msg.(FrameMsg)
	if !ok {
		t.Fatalf("expected FrameMsg, got %T", msg)
	}
	if f.Seq != 3 {
		t.Errorf("expected latest frame 3, got %d", f.Seq)
	}
}

func TestSurfaceClose(t *testing.T) {
	s := NewSurface()
	if !s.Live() {
		t.Fatal("new surface should be live")
	}

	s.Close()
	s.Close()

	if s.Live() {
		t.Error("closed surface should not be live")
	}
	if err := s.Write(testFrame(1, "x")); !errors.Is(err, ErrSurfaceClosed) {
		t.Errorf("expected ErrSurfaceClosed, got %v", err)
	}
	if msg := s.Next()(); msg != nil {
		t.Errorf("expected nil after close, got %v", msg)
	}
}

func newTestApp(t *testing.T, settings config.Settings) (App, *stage.Stage) {
	t.Helper()
	surface := NewSurface()
	st := stage.New(surface, settings, stage.WithLogger(log.New(io.Discard)))
	t.Cleanup(func() {
		surface.Close()
		st.Stop()
	})
	return NewApp(st, surface), st
}

func press(a App, keys ...tea.KeyMsg) App {
	for _, k := range keys {
		m, _ := a.Update(k)
		a = m.(App)
	}
	return a
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppAdjustsFPS(t *testing.T) {
	a, st := newTestApp(t, config.Default())

	a = press(a, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight})
	if st.Settings().FPS != config.DefaultFPS+2 {
		t.Errorf("expected fps %d, got %d", config.DefaultFPS+2, st.Settings().FPS)
	}

	a = press(a, tea.KeyMsg{Type: tea.KeyShiftRight}, tea.KeyMsg{Type: tea.KeyShiftRight}, tea.KeyMsg{Type: tea.KeyShiftRight}, tea.KeyMsg{Type: tea.KeyShiftRight})
	if st.Settings().FPS != config.MaxFPS {
		t.Errorf("expected fps clamped to %d, got %d", config.MaxFPS, st.Settings().FPS)
	}
	if a.settings.FPS != config.MaxFPS {
		t.Errorf("app mirror out of sync: %d", a.settings.FPS)
	}
}

func TestAppAdjustsProbability(t *testing.T) {
	a, st := newTestApp(t, config.Default())

	for a.selected != ctrlProbability {
		a = press(a, tea.KeyMsg{Type: tea.KeyTab})
	}
	press(a, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyLeft})

	if got := st.Settings().Probability; got != 0.48 {
		t.Errorf("expected probability 0.48, got %v", got)
	}
}

func TestAppProbabilityStepsSnap(t *testing.T) {
	s := config.Default()
	s.Probability = 0.333
	a, st := newTestApp(t, s)

	for a.selected != ctrlProbability {
		a = press(a, tea.KeyMsg{Type: tea.KeyTab})
	}
	press(a, tea.KeyMsg{Type: tea.KeyRight})

	if got := st.Settings().Probability; got != 0.34 {
		t.Errorf("expected probability 0.34, got %v", got)
	}
}

func TestAppSelectionWraps(t *testing.T) {
	a, _ := newTestApp(t, config.Default())

	a = press(a, tea.KeyMsg{Type: tea.KeyShiftTab})
	if a.selected != ctrlMessage {
		t.Errorf("expected wrap to message control, got %d", a.selected)
	}
	a = press(a, tea.KeyMsg{Type: tea.KeyTab})
	if a.selected != ctrlFPS {
		t.Errorf("expected wrap to fps control, got %d", a.selected)
	}
}

func TestAppEditsMessage(t *testing.T) {
	a, st := newTestApp(t, config.Default())

	a = press(a, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyEnter})
	if !a.editing {
		t.Fatal("expected edit mode on message control")
	}

	a.input.SetValue("")
	a = press(a, runes("h"), runes("i"), tea.KeyMsg{Type: tea.KeyEnter})
	if a.editing {
		t.Error("enter should leave edit mode")
	}
	if st.Settings().Message != "hi" {
		t.Errorf("expected message hi, got %q", st.Settings().Message)
	}

	// Keys typed while editing must not act as shortcuts.
	a = press(a, tea.KeyMsg{Type: tea.KeyEnter}, runes("q"), tea.KeyMsg{Type: tea.KeyEsc})
	if st.Settings().Message != "hi" {
		t.Errorf("esc should discard the edit, got %q", st.Settings().Message)
	}
}

func TestAppTogglesFontFamilyAndPanel(t *testing.T) {
	a, st := newTestApp(t, config.Default())

	for a.selected != ctrlFontFamily {
		a = press(a, tea.KeyMsg{Type: tea.KeyTab})
	}
	a = press(a, tea.KeyMsg{Type: tea.KeyEnter})
	if st.Settings().FontFamily != config.Monospaced {
		t.Errorf("expected monospaced, got %s", st.Settings().FontFamily)
	}

	a = press(a, runes("h"))
	if a.showPanel {
		t.Error("h should hide the panel")
	}
	if strings.Contains(a.View(), "STICKYCAPS") {
		t.Error("hidden panel should not render")
	}
}

func TestAppPresetAndReset(t *testing.T) {
	a, st := newTestApp(t, config.Default())

	a = press(a, runes("p"))
	names := config.ListPresets()
	want, _ := config.GetPreset(names[1])
	if st.Settings() != want {
		t.Errorf("expected preset %s, got %+v", names[1], st.Settings())
	}

	press(a, runes("r"))
	if st.Settings() != config.Default() {
		t.Errorf("expected defaults after reset, got %+v", st.Settings())
	}
}

func TestAppQuit(t *testing.T) {
	a, _ := newTestApp(t, config.Default())

	_, cmd := a.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestAppFrameMsg(t *testing.T) {
	a, _ := newTestApp(t, config.Default())

	start := time.Now()
	for i := 0; i < 5; i++ {
		f := testFrame(uint64(i+1), "Ab3")
		f.At = start.Add(time.Duration(i) * 100 * time.Millisecond)
		m, cmd := a.Update(FrameMsg(f))
		a = m.(App)
		if cmd == nil {
			t.Fatal("frame handling should wait for the next frame")
		}
	}

	if !a.hasFrame || a.frame.Seq != 5 {
		t.Errorf("expected frame 5, got %d", a.frame.Seq)
	}
	if rate := a.MeasuredRate(); rate < 9.9 || rate > 10.1 {
		t.Errorf("expected measured rate 10, got %f", rate)
	}

	view := a.View()
	for _, want := range []string{"STICKYCAPS", "FPS", "Probability", "Message"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestStepColor(t *testing.T) {
	if got := stepColor("#ffffff", 1); got != "#ff0000" {
		t.Errorf("expected red after white, got %s", got)
	}
	if got := stepColor("#ffffff", -1); got != "#000000" {
		t.Errorf("expected wrap to black, got %s", got)
	}
	if got := stepColor("#123456", 1); got != palette[0] {
		t.Errorf("expected unknown colour to reset to palette start, got %s", got)
	}
	if got := stepColor("#ff0000", 10); got == "#ff0000" {
		t.Error("large step should rotate hue")
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("retro").Name != "retro" {
		t.Error("expected retro theme")
	}
	if GetTheme("missing").Name != ThemeCyberpunk.Name {
		t.Error("expected fallback theme")
	}

	seen := map[string]bool{}
	th := Themes[0]
	for range Themes {
		seen[th.Name] = true
		th = NextTheme(th)
	}
	if len(seen) != len(ThemeNames()) {
		t.Errorf("NextTheme visited %d of %d themes", len(seen), len(Themes))
	}
}

func TestPlainSurface(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainSurface(&buf, true)
	p.Start()

	if err := p.Write(testFrame(7, "ab")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	p.Close()

	out := buf.String()
	if !strings.HasPrefix(out, hideCursor) || !strings.HasSuffix(out, showCursor) {
		t.Error("expected cursor hidden then restored")
	}
	if !strings.Contains(out, clearScreen) || !strings.Contains(out, "#7") {
		t.Error("expected clear-screen frame header")
	}
	if p.Live() {
		t.Error("closed surface should not be live")
	}
	if err := p.Write(testFrame(8, "ab")); !errors.Is(err, ErrSurfaceClosed) {
		t.Errorf("expected ErrSurfaceClosed, got %v", err)
	}
}
