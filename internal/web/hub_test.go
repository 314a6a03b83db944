package web

import (
	"testing"
	"time"

	"github.com/san-kum/stickycaps/internal/stage"
)

func TestHubLiveOnlyWithSubscribers(t *testing.T) {
	h := NewHub()
	if h.Live() {
		t.Error("hub without subscribers should not be live")
	}

	_, cancel := h.Subscribe()
	if !h.Live() {
		t.Error("hub with a subscriber should be live")
	}

	cancel()
	cancel()
	if h.Live() {
		t.Error("hub should go idle after the last subscriber leaves")
	}
}

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe()
	defer cancelA()
	b, cancelB := h.Subscribe()
	defer cancelB()

	if err := h.Write(stage.Frame{Seq: 1}); err != nil {
		t.Fatal(err)
	}

	for _, ch := range []<-chan stage.Frame{a, b} {
		select {
		case f := <-ch:
			if f.Seq != 1 {
				t.Errorf("expected seq 1, got %d", f.Seq)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive frame")
		}
	}
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+3; i++ {
		if err := h.Write(stage.Frame{Seq: uint64(i)}); err != nil {
			t.Fatal(err)
		}
	}

	if h.Dropped() != 3 {
		t.Errorf("expected 3 dropped frames, got %d", h.Dropped())
	}
}

func TestHubClose(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()

	h.Close()
	h.Close()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("expected subscriber channel closed")
	}
	if h.Live() {
		t.Error("closed hub should not be live")
	}

	late, _ := h.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribing to a closed hub should yield a closed channel")
	}
}
