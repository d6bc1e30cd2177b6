package hotkeys

import "errors"

// ErrUnsupported is returned by Start on platforms without a chord detector.
var ErrUnsupported = errors.New("global hotkey not supported on this platform")

type EventHandler interface {
	OnPress()
	OnRelease()
}

type Manager struct {
	simple *SimpleHotkeyManager
}

func NewManager(handler EventHandler) *Manager {
	return &Manager{
		simple: NewSimpleManager(handler, detectChord),
	}
}

func (m *Manager) Start() error {
	if !chordSupported {
		return ErrUnsupported
	}
	return m.simple.Start()
}

func (m *Manager) Stop() {
	m.simple.Stop()
}

func (m *Manager) Listen() {
	m.simple.Listen()
}

func (m *Manager) GetHotkeyDisplay() string {
	return chordDisplay
}
