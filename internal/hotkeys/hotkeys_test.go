package hotkeys

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingHandler struct {
	mu       sync.Mutex
	presses  int
	releases int
}

func (h *countingHandler) OnPress() {
	h.mu.Lock()
	h.presses++
	h.mu.Unlock()
}

func (h *countingHandler) OnRelease() {
	h.mu.Lock()
	h.releases++
	h.mu.Unlock()
}

func (h *countingHandler) counts() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presses, h.releases
}

func waitFor(t *testing.T, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestChordPressAndRelease(t *testing.T) {
	var pressed atomic.Bool
	h := &countingHandler{}
	s := NewSimpleManager(h, pressed.Load)

	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	go s.Listen()
	defer s.Stop()

	pressed.Store(true)
	waitFor(t, func() bool { p, _ := h.counts(); return p == 1 })

	pressed.Store(false)
	waitFor(t, func() bool { _, r := h.counts(); return r == 1 })

	// Holding the chord fires once.
	pressed.Store(true)
	waitFor(t, func() bool { p, _ := h.counts(); return p == 2 })
	time.Sleep(3 * pollInterval)
	if p, _ := h.counts(); p != 2 {
		t.Fatalf("presses = %d while held, want 2", p)
	}
}

func TestStopEndsListen(t *testing.T) {
	s := NewSimpleManager(nil, func() bool { return false })
	s.Start()

	done := make(chan struct{})
	go func() {
		s.Listen()
		close(done)
	}()

	s.Stop()
	s.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after Stop")
	}
}
