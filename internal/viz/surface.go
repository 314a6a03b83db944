package viz

import (
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/stickycaps/internal/stage"
)

var ErrSurfaceClosed = errors.New("viz: surface closed")

// FrameMsg carries a stage frame into the bubbletea update loop.
type FrameMsg stage.Frame

// Surface hands frames to a bubbletea program. It holds at most one pending
// frame; a newer frame replaces one the program has not picked up yet, so a
// slow terminal drops frames instead of blocking the tick.
type Surface struct {
	frames chan stage.Frame
	done   chan struct{}
	once   sync.Once
}

func NewSurface() *Surface {
	return &Surface{
		frames: make(chan stage.Frame, 1),
		done:   make(chan struct{}),
	}
}

func (s *Surface) Write(f stage.Frame) error {
	for {
		select {
		case <-s.done:
			return ErrSurfaceClosed
		case s.frames <- f:
			return nil
		default:
		}
		select {
		case <-s.frames:
		default:
		}
	}
}

func (s *Surface) Live() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Close marks the surface dead. Safe to call more than once.
func (s *Surface) Close() {
	s.once.Do(func() { close(s.done) })
}

// Next waits for the next frame. After Close it yields nil.
func (s *Surface) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case f := <-s.frames:
			return FrameMsg(f)
		case <-s.done:
			return nil
		}
	}
}
