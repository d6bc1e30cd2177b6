package terminal

import (
	"sync"
	"time"

	"github.com/bytehow/HotkeyMuzzle/internal/protocol"
)

// DefaultToastDuration applies when a toast carries no positive duration.
const DefaultToastDuration = 4000 * time.Millisecond

// ToastRenderer shows toasts on a single terminal line that clears itself
// once the toast's duration has passed.
type ToastRenderer struct {
	control *Control

	mu      sync.Mutex
	seq     uint64
	printed bool
	timer   *time.Timer
}

func NewToastRenderer(control *Control) *ToastRenderer {
	return &ToastRenderer{control: control}
}

// ShowToast renders t, replacing any toast still on screen.
func (r *ToastRenderer) ShowToast(t protocol.Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	seq := r.seq
	if r.timer != nil {
		r.timer.Stop()
	}

	first := !r.printed
	r.printed = true
	r.control.UpdateInPlace([]string{FormatToast(t)}, first)

	if !r.control.IsTerminal() {
		return
	}
	r.timer = time.AfterFunc(ToastDuration(t), func() { r.hide(seq) })
}

func (r *ToastRenderer) hide(seq uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.seq {
		return
	}
	r.control.UpdateInPlace([]string{""}, false)
}

// Close cancels a pending hide.
func (r *ToastRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}

// ToastDuration returns how long t stays on screen.
func ToastDuration(t protocol.Toast) time.Duration {
	if t.DurationMs <= 0 {
		return DefaultToastDuration
	}
	return time.Duration(t.DurationMs) * time.Millisecond
}

// ToastIcon picks the icon for t.
func ToastIcon(t protocol.Toast) string {
	switch t.Kind {
	case protocol.ToastStateChange:
		if t.Blocking != nil && *t.Blocking {
			return "🚫"
		}
		return "✅"
	case protocol.ToastBlockedShortcut:
		return "⚠️"
	default:
		return "⚡"
	}
}

// FormatToast renders t as one line.
func FormatToast(t protocol.Toast) string {
	line := ToastIcon(t) + " " + t.Title + ": "
	if t.Shortcut != "" {
		line += t.Shortcut + " "
	}
	return line + t.Message
}
