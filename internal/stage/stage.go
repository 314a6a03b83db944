// Package stage owns the live settings and keeps a surface repainted.
//
// A Stage holds the current [config.Settings], a [frame.Interval] and a
// [Surface]. Each tick renders a fresh snapshot of the settings through the
// transform engine and writes the result to the surface. Any settings change
// tears the interval down and builds a new one over the new snapshot, so a
// tick never mixes old and new configuration.
package stage

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/stickycaps/internal/caps"
	"github.com/san-kum/stickycaps/internal/config"
	"github.com/san-kum/stickycaps/internal/frame"
)

// Frame is one rendering ready for display.
type Frame struct {
	Seq      uint64
	Output   caps.Output
	Settings config.Settings
	At       time.Time
}

// Surface displays frames. Write replaces whatever the surface showed
// before; it is called from a single goroutine at a time. Live reports
// whether the surface can still accept frames.
type Surface interface {
	Write(Frame) error
	Live() bool
}

type Option func(*Stage)

func WithEngine(e *caps.Engine) Option {
	return func(s *Stage) { s.engine = e }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Stage) { s.logger = l }
}

type Stage struct {
	surface Surface
	engine  *caps.Engine
	logger  *log.Logger

	mu       sync.Mutex
	settings config.Settings
	interval *frame.Interval
	started  bool

	seq     atomic.Uint64
	skipped atomic.Uint64
}

func New(surface Surface, settings config.Settings, opts ...Option) *Stage {
	s := &Stage{
		surface:  surface,
		settings: settings,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = caps.NewEngine(nil)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Settings returns a snapshot of the current settings.
func (s *Stage) Settings() config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Skipped counts ticks dropped because the surface was no longer live.
func (s *Stage) Skipped() uint64 { return s.skipped.Load() }

// Start paints one frame immediately and then keeps painting at the
// configured rate. Starting a started stage is a no-op.
func (s *Stage) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true
	s.rebuild()
}

// Stop halts painting. When it returns no further frames will be written.
func (s *Stage) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.started = false
	s.teardown()
}

// Update applies fn to a copy of the settings, clamps the result and, if the
// stage is running, replaces the interval so the next tick sees the change.
func (s *Stage) Update(fn func(*config.Settings)) config.Settings {
	next, _ := s.Apply(func(cur *config.Settings) error {
		fn(cur)
		return nil
	})
	return next
}

// Apply is Update for changes that can fail. fn runs on a copy of the
// settings under the stage lock, so concurrent changes never overwrite each
// other. When fn returns an error nothing is applied and the current
// settings are returned with it.
func (s *Stage) Apply(fn func(*config.Settings) error) (config.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	if err := fn(&next); err != nil {
		return s.settings, err
	}
	next.Clamp()
	s.settings = next

	if s.started {
		s.logger.Debug("rebuilding interval", "fps", next.FPS, "probability", next.Probability)
		s.teardown()
		s.rebuild()
	}
	return next, nil
}

// Replace swaps in a complete settings value. The caller validates it.
func (s *Stage) Replace(settings config.Settings) config.Settings {
	return s.Update(func(cur *config.Settings) { *cur = settings })
}

// rebuild paints the current snapshot and starts a fresh interval over it.
// Caller holds s.mu and has torn down any previous interval.
func (s *Stage) rebuild() {
	snapshot := s.settings
	s.paint(snapshot)
	s.interval = frame.New(float64(snapshot.FPS), func() { s.paint(snapshot) })
	s.interval.Start()
}

func (s *Stage) teardown() {
	if s.interval != nil {
		s.interval.Stop()
		s.interval = nil
	}
}

func (s *Stage) paint(settings config.Settings) {
	if !s.surface.Live() {
		s.skipped.Add(1)
		return
	}

	f := Frame{
		Seq:      s.seq.Add(1),
		Output:   s.engine.Render(settings.RenderConfig()),
		Settings: settings,
		At:       time.Now(),
	}
	if err := s.surface.Write(f); err != nil {
		s.logger.Warn("frame write failed", "seq", f.Seq, "err", err)
	}
}

// Draw renders one frame from the current settings without touching the
// surface.
func (s *Stage) Draw() Frame {
	settings := s.Settings()
	return Frame{
		Seq:      s.seq.Add(1),
		Output:   s.engine.Render(settings.RenderConfig()),
		Settings: settings,
		At:       time.Now(),
	}
}
