package web

import (
	"sync"

	"github.com/san-kum/stickycaps/internal/stage"
)

const subscriberBuffer = 4

// Hub is the stage surface for browsers. It fans each frame out to every
// connected event stream. A subscriber that falls behind loses frames
// rather than stalling the tick.
type Hub struct {
	mu      sync.Mutex
	subs    map[chan stage.Frame]struct{}
	closed  bool
	dropped uint64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan stage.Frame]struct{})}
}

func (h *Hub) Write(f stage.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- f:
		default:
			h.dropped++
		}
	}
	return nil
}

// Live is true while at least one browser is watching, so an unwatched
// stage does no rendering work.
func (h *Hub) Live() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.closed && len(h.subs) > 0
}

// Subscribe registers a stream. The returned cancel func is idempotent. On a
// closed hub the channel is returned already closed.
func (h *Hub) Subscribe() (<-chan stage.Frame, func()) {
	ch := make(chan stage.Frame, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped counts frames discarded for slow subscribers.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Close ends every stream and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
