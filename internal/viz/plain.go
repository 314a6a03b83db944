package viz

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/san-kum/stickycaps/internal/stage"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// PlainSurface repaints a bare terminal with escape codes, for when a full
// bubbletea program is unwanted (pipes, recordings, dumb terminals).
type PlainSurface struct {
	w      io.Writer
	clear  bool
	closed atomic.Bool
}

// NewPlainSurface writes frames to w. With clear set every frame starts by
// clearing the screen; otherwise frames are written one per line.
func NewPlainSurface(w io.Writer, clear bool) *PlainSurface {
	return &PlainSurface{w: w, clear: clear}
}

func (p *PlainSurface) Write(f stage.Frame) error {
	if p.closed.Load() {
		return ErrSurfaceClosed
	}
	var b strings.Builder
	if p.clear {
		b.WriteString(clearScreen)
		b.WriteString(fmt.Sprintf("  fps=%d  p=%.2f  #%d\n\n  ", f.Settings.FPS, f.Settings.Probability, f.Seq))
	}
	b.WriteString(f.Output.ANSI())
	b.WriteString("\n")
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *PlainSurface) Live() bool { return !p.closed.Load() }

func (p *PlainSurface) Start() {
	if p.clear {
		fmt.Fprint(p.w, hideCursor)
	}
}

// Close stops accepting frames and restores the cursor.
func (p *PlainSurface) Close() {
	if p.closed.Swap(true) {
		return
	}
	if p.clear {
		fmt.Fprint(p.w, showCursor)
	}
}
