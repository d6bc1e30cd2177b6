package terminal

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytehow/HotkeyMuzzle/internal/protocol"
)

func boolPtr(v bool) *bool { return &v }

// syncBuffer is a bytes.Buffer safe for a writer and a polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestUpdateInPlacePipedOutput(t *testing.T) {
	var buf bytes.Buffer
	c := NewControlFor(&buf, false)

	c.UpdateInPlace([]string{"one"}, true)
	c.UpdateInPlace([]string{"two"}, false)

	if got := buf.String(); got != "one\ntwo\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestUpdateInPlaceTerminalRewrites(t *testing.T) {
	var buf bytes.Buffer
	c := NewControlFor(&buf, true)

	c.UpdateInPlace([]string{"one"}, true)
	c.UpdateInPlace([]string{"two"}, false)

	if got := buf.String(); got != "one\n\033[1A\033[2K\rtwo\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestStatusLine(t *testing.T) {
	var buf bytes.Buffer
	s := NewStatusLine(NewControlFor(&buf, false))

	s.Update(func(st *Status) { st.Tabs = 1 })
	s.Update(func(st *Status) { st.Blocking = true; st.BlockedToday = 3 })

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if want := "🚫 Shortcuts blocked | 🗂  1 tab | 🎛  0 controls | 📈 3 blocked today"; lines[1] != want {
		t.Fatalf("status = %q, want %q", lines[1], want)
	}
	if cur := s.Current(); !cur.Blocking || cur.Tabs != 1 {
		t.Fatalf("Current = %+v", cur)
	}
}

func TestFormatStatusShowsAction(t *testing.T) {
	got := FormatStatus(Status{Blocking: true, Action: "HotkeyMuzzle (ACTIVE - Click to disable)"})
	if !strings.HasSuffix(got, " | 🔘 HotkeyMuzzle (ACTIVE - Click to disable)") {
		t.Fatalf("status = %q, want the action title last", got)
	}
	if strings.Contains(FormatStatus(Status{}), "🔘") {
		t.Fatal("an empty action must not be shown")
	}
}

func TestToastIconAndDuration(t *testing.T) {
	tests := []struct {
		toast protocol.Toast
		icon  string
	}{
		{protocol.Toast{Kind: protocol.ToastStateChange, Blocking: boolPtr(true)}, "🚫"},
		{protocol.Toast{Kind: protocol.ToastStateChange, Blocking: boolPtr(false)}, "✅"},
		{protocol.Toast{Kind: protocol.ToastBlockedShortcut}, "⚠️"},
		{protocol.Toast{Kind: "other"}, "⚡"},
	}
	for _, tt := range tests {
		if got := ToastIcon(tt.toast); got != tt.icon {
			t.Errorf("ToastIcon(%+v) = %q, want %q", tt.toast, got, tt.icon)
		}
	}

	if got := ToastDuration(protocol.Toast{}); got != DefaultToastDuration {
		t.Fatalf("zero duration = %v, want %v", got, DefaultToastDuration)
	}
	if got := ToastDuration(protocol.Toast{DurationMs: 1500}); got != 1500*time.Millisecond {
		t.Fatalf("duration = %v", got)
	}
}

func TestFormatToast(t *testing.T) {
	got := FormatToast(protocol.Toast{
		Kind:     protocol.ToastBlockedShortcut,
		Title:    "Shortcut Blocked",
		Message:  "was blocked",
		Shortcut: "⌘ + K",
	})
	if want := "⚠️ Shortcut Blocked: ⌘ + K was blocked"; got != want {
		t.Fatalf("FormatToast = %q, want %q", got, want)
	}
}

func TestToastRendererHidesAfterDuration(t *testing.T) {
	var out syncBuffer
	r := NewToastRenderer(NewControlFor(&out, true))
	defer r.Close()

	r.ShowToast(protocol.Toast{Kind: protocol.ToastBlockedShortcut, Title: "Shortcut Blocked", DurationMs: 20})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.HasSuffix(out.String(), "\033[2K\r\n") {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("toast was never cleared: %q", out.String())
}

func TestStatusLineLogKeepsStatusLast(t *testing.T) {
	var buf bytes.Buffer
	s := NewStatusLine(NewControlFor(&buf, true))

	s.Update(func(st *Status) {})
	s.Log("🚫 Blocked ⌘ + K")

	got := buf.String()
	want := FormatStatus(Status{}) + "\n\033[1A\033[2K\r🚫 Blocked ⌘ + K\n" + FormatStatus(Status{}) + "\n"
	if got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}
