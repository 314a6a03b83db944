package metrics

import (
	"math"
	"time"

	"github.com/san-kum/stickycaps/internal/caps"
)

type Metric interface {
	Name() string
	Value() float64
	Reset()
}

// UpperShare tracks the fraction of letters drawn uppercase across frames,
// keeping the running value after every observation.
type UpperShare struct {
	name    string
	upper   int
	letters int
	history []float64
}

func NewUpperShare() *UpperShare {
	return &UpperShare{name: "upper_share"}
}

func (m *UpperShare) Name() string { return m.name }

func (m *UpperShare) Observe(out caps.Output) {
	for _, run := range out.Runs {
		switch run.Role {
		case caps.RoleUpper:
			m.upper++
			m.letters++
		case caps.RoleLower:
			m.letters++
		}
	}
	m.history = append(m.history, m.Value())
}

func (m *UpperShare) Value() float64 {
	if m.letters == 0 {
		return 0
	}
	return float64(m.upper) / float64(m.letters)
}

// Letters is the number of letter draws observed.
func (m *UpperShare) Letters() int { return m.letters }

// History is the running share after each observation.
func (m *UpperShare) History() []float64 { return m.history }

func (m *UpperShare) Reset() {
	m.upper = 0
	m.letters = 0
	m.history = nil
}

// Tolerance is the half-width of the three-sigma band around p for n
// independent draws.
func Tolerance(p float64, n int) float64 {
	if n <= 0 {
		return 1
	}
	return 3 * math.Sqrt(p*(1-p)/float64(n))
}

// FrameRate measures the observed frame rate over a sliding window of
// frame timestamps.
type FrameRate struct {
	name   string
	window int
	times  []time.Time
}

func NewFrameRate(window int) *FrameRate {
	if window < 2 {
		window = 2
	}
	return &FrameRate{name: "frame_rate", window: window, times: make([]time.Time, 0, window)}
}

func (m *FrameRate) Name() string { return m.name }

func (m *FrameRate) Observe(at time.Time) {
	m.times = append(m.times, at)
	if len(m.times) > m.window {
		m.times = m.times[1:]
	}
}

func (m *FrameRate) Value() float64 {
	if len(m.times) < 2 {
		return 0
	}
	span := m.times[len(m.times)-1].Sub(m.times[0])
	if span <= 0 {
		return 0
	}
	return float64(len(m.times)-1) / span.Seconds()
}

func (m *FrameRate) Reset() {
	m.times = m.times[:0]
}
