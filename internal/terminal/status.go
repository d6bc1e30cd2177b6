package terminal

import (
	"fmt"
	"sync"
)

// Status is what the daemon status line shows.
type Status struct {
	Blocking     bool
	Tabs         int
	Surfaces     int
	BlockedToday int
	// Action is the title of the global toggle for the current state.
	Action string
}

// StatusLine keeps one line of daemon state updated in place.
type StatusLine struct {
	control *Control

	mu      sync.Mutex
	status  Status
	printed bool
}

func NewStatusLine(control *Control) *StatusLine {
	return &StatusLine{control: control}
}

// Update applies fn to the current status and redraws the line.
func (s *StatusLine) Update(fn func(*Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.status)
	first := !s.printed
	s.printed = true
	s.control.UpdateInPlace([]string{FormatStatus(s.status)}, first)
}

// Log prints line and keeps the status line below it.
func (s *StatusLine) Log(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.printed || !s.control.IsTerminal() {
		s.control.Println(line)
		return
	}
	s.control.ReplaceLast([]string{line, FormatStatus(s.status)})
}

// Current returns the last drawn status.
func (s *StatusLine) Current() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// FormatStatus renders st as a single line.
func FormatStatus(st Status) string {
	state := "✅ Shortcuts enabled"
	if st.Blocking {
		state = "🚫 Shortcuts blocked"
	}
	line := fmt.Sprintf("%s | 🗂  %d tab%s | 🎛  %d control%s | 📈 %d blocked today",
		state,
		st.Tabs, plural(st.Tabs),
		st.Surfaces, plural(st.Surfaces),
		st.BlockedToday)
	if st.Action != "" {
		line += " | 🔘 " + st.Action
	}
	return line
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
