package hotkeys

import (
	"sync"
	"time"
)

const pollInterval = 100 * time.Millisecond

// SimpleHotkeyManager polls the modifier state and reports presses and
// releases of the chord to its handler.
type SimpleHotkeyManager struct {
	handler   EventHandler
	detect    func() bool
	triggered chan struct{}
	released  chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

func NewSimpleManager(handler EventHandler, detect func() bool) *SimpleHotkeyManager {
	return &SimpleHotkeyManager{
		handler:   handler,
		detect:    detect,
		triggered: make(chan struct{}, 1),
		released:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

func (s *SimpleHotkeyManager) Start() error {
	go s.pollKeyState()
	return nil
}

func (s *SimpleHotkeyManager) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Listen delivers chord events to the handler until Stop is called.
func (s *SimpleHotkeyManager) Listen() {
	for {
		select {
		case <-s.triggered:
			if s.handler != nil {
				s.handler.OnPress()
			}
			select {
			case <-s.released:
			case <-s.done:
				return
			}
			if s.handler != nil {
				s.handler.OnRelease()
			}
		case <-s.done:
			return
		}
	}
}

func (s *SimpleHotkeyManager) pollKeyState() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	wasPressed := false
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		isPressed := s.detect()
		if isPressed && !wasPressed {
			select {
			case s.triggered <- struct{}{}:
			default:
			}
			wasPressed = true
		} else if !isPressed && wasPressed {
			select {
			case s.released <- struct{}{}:
			default:
			}
			wasPressed = false
		}
	}
}
