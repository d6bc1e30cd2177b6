package shortcut

// Event is the raw descriptor of a key press as reported by a document's
// key-event listener.
type Event struct {
	Meta  bool   `json:"meta"`
	Ctrl  bool   `json:"ctrl"`
	Alt   bool   `json:"alt"`
	Shift bool   `json:"shift"`
	Key   string `json:"key"`
}

// Modifiers returns the pressed modifiers as a bitmask.
func (e Event) Modifiers() Modifier {
	var m Modifier
	if e.Meta {
		m |= ModCmd
	}
	if e.Ctrl {
		m |= ModCtrl
	}
	if e.Alt {
		m |= ModAlt
	}
	if e.Shift {
		m |= ModShift
	}
	return m
}
