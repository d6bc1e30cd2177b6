package shortcut

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{"cmd letter", Event{Meta: true, Key: "a"}, "cmd+a"},
		{"arrow up", Event{Key: "ArrowUp"}, "up"},
		{"already short arrow", Event{Key: "up"}, "up"},
		{"bare meta", Event{Meta: true, Key: "Meta"}, ""},
		{"bare control", Event{Ctrl: true, Key: "Control"}, ""},
		{"bare alt", Event{Alt: true, Key: "Alt"}, ""},
		{"bare shift", Event{Shift: true, Key: "Shift"}, ""},
		{"ctrl+shift pressing shift", Event{Ctrl: true, Shift: true, Key: "Shift"}, ""},
		{"empty key", Event{Ctrl: true}, ""},
		{"all modifiers in fixed order", Event{Meta: true, Ctrl: true, Alt: true, Shift: true, Key: "K"}, "cmd+ctrl+alt+shift+k"},
		{"space", Event{Key: " "}, "space"},
		{"return", Event{Key: "Return"}, "enter"},
		{"enter", Event{Key: "Enter"}, "enter"},
		{"esc", Event{Key: "Esc"}, "escape"},
		{"escape", Event{Key: "Escape"}, "escape"},
		{"backspace", Event{Alt: true, Key: "Backspace"}, "alt+backspace"},
		{"delete", Event{Key: "Delete"}, "delete"},
		{"tab", Event{Ctrl: true, Key: "Tab"}, "ctrl+tab"},
		{"function key", Event{Key: "F12"}, "f12"},
		{"high function key", Event{Shift: true, Key: "F24"}, "shift+f24"},
		{"digit", Event{Meta: true, Key: "1"}, "cmd+1"},
		{"punctuation", Event{Ctrl: true, Key: "["}, "ctrl+["},
		{"plus key", Event{Shift: true, Key: "+"}, "shift++"},
		{"arrow with modifiers", Event{Meta: true, Alt: true, Key: "ArrowLeft"}, "cmd+alt+left"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.ev); got != tt.want {
				t.Errorf("Normalize(%+v) = %q, want %q", tt.ev, got, tt.want)
			}
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	ev := Event{Meta: true, Shift: true, Key: "ArrowDown"}
	first := Normalize(ev)
	for i := 0; i < 100; i++ {
		if got := Normalize(ev); got != first {
			t.Fatalf("Normalize not deterministic: %q then %q", first, got)
		}
	}
	if first != "cmd+shift+down" {
		t.Fatalf("Normalize = %q, want cmd+shift+down", first)
	}
}

func TestShouldBlock(t *testing.T) {
	empty := NewWhitelist()
	tests := []struct {
		name      string
		canonical string
		wl        Whitelist
		want      bool
		reason    Reason
	}{
		{"empty combo", "", empty, false, ReasonEmpty},
		{"whitelisted cmd", "cmd+a", NewWhitelist("cmd+a"), false, ReasonWhitelisted},
		{"cmd not whitelisted", "cmd+a", empty, true, ReasonModifier},
		{"bare letter", "a", empty, false, ReasonPlainKey},
		{"bare function key", "f5", empty, true, ReasonBareSpecial},
		{"bare escape", "escape", empty, true, ReasonBareSpecial},
		{"bare enter", "enter", empty, false, ReasonPlainKey},
		{"bare f without digits", "f", empty, false, ReasonPlainKey},
		{"shift function key", "shift+f5", empty, true, ReasonShiftFuncKey},
		{"shift letter", "shift+a", empty, false, ReasonOther},
		{"ctrl", "ctrl+t", empty, true, ReasonModifier},
		{"alt", "alt+x", empty, true, ReasonModifier},
		{"cmd shift", "cmd+shift+t", empty, true, ReasonModifier},
		{"whitelisted function key", "f5", NewWhitelist("f5"), false, ReasonWhitelisted},
		{"whitelisted escape", "escape", NewWhitelist("escape"), false, ReasonWhitelisted},
		{"nil whitelist", "cmd+q", nil, true, ReasonModifier},
		{"bare plus", "+", empty, false, ReasonPlainKey},
		{"shift plus", "shift++", empty, false, ReasonOther},
		{"whitelist is exact match", "cmd+shift+a", NewWhitelist("cmd+a"), true, ReasonModifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldBlock(tt.canonical, tt.wl); got != tt.want {
				t.Errorf("ShouldBlock(%q) = %v, want %v", tt.canonical, got, tt.want)
			}
			if d := Decide(tt.canonical, tt.wl); d.Reason != tt.reason {
				t.Errorf("Decide(%q).Reason = %q, want %q", tt.canonical, d.Reason, tt.reason)
			}
		})
	}
}

func TestWhitelistAlwaysWins(t *testing.T) {
	entries := []string{"cmd+a", "ctrl+shift+t", "f1", "escape", "alt+f4", "shift+f12", "cmd+ctrl+alt+shift+z"}
	wl := NewWhitelist(entries...)
	for _, s := range entries {
		if ShouldBlock(s, wl) {
			t.Errorf("ShouldBlock(%q) = true for whitelisted entry", s)
		}
	}
}

func TestParse(t *testing.T) {
	c, err := Parse("cmd+shift+t")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if c.Mods != ModCmd|ModShift || c.Key != "t" {
		t.Fatalf("Parse = %+v, want cmd|shift + t", c)
	}

	c, err = Parse("shift++")
	if err != nil {
		t.Fatalf("Parse(shift++) returned error: %v", err)
	}
	if c.Mods != ModShift || c.Key != "+" {
		t.Fatalf("Parse(shift++) = %+v", c)
	}

	for _, bad := range []string{"", "shift+cmd+t"} {
		if _, err := Parse(bad); !errors.Is(err, ErrInvalidShortcut) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidShortcut", bad, err)
		}
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"cmd+a", "cmd+a"},
		{"Shift + Cmd + T", "cmd+shift+t"},
		{"control+esc", "ctrl+escape"},
		{"option+ArrowUp", "alt+up"},
		{"meta+shift+n", "cmd+shift+n"},
		{"F5", "f5"},
		{"shift++", "shift++"},
		{"+", "+"},
		{"command+return", "cmd+enter"},
	}
	for _, tt := range tests {
		got, err := Canonicalize(tt.input)
		if err != nil {
			t.Errorf("Canonicalize(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	for _, bad := range []string{"", "   ", "cmd+", "cmd", "ctrl+shift", "hyper+a", "cmd++a+", "cmd+averyveryverylongkeyname"} {
		if _, err := Canonicalize(bad); !errors.Is(err, ErrInvalidShortcut) {
			t.Errorf("Canonicalize(%q) error = %v, want ErrInvalidShortcut", bad, err)
		}
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cmd+a", "⌘ + A"},
		{"cmd+shift+t", "⌘ + Shift + T"},
		{"ctrl+alt+delete", "⌃ + ⌥ + Delete"},
		{"f5", "F5"},
		{"shift+f5", "Shift + F5"},
		{"alt+up", "⌥ + ↑"},
		{"ctrl+space", "⌃ + Space"},
		{"escape", "Escape"},
		{"shift++", "Shift + +"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Display(tt.in); got != tt.want {
			t.Errorf("Display(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWhitelistJSON(t *testing.T) {
	wl := NewWhitelist("cmd+w", "cmd+a", "cmd+c")
	data, err := json.Marshal(wl)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(data) != `["cmd+a","cmd+c","cmd+w"]` {
		t.Fatalf("Marshal = %s, want sorted array", data)
	}

	var decoded Whitelist
	if err := json.Unmarshal([]byte(`["cmd+v","cmd+v","cmd+q"]`), &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if !reflect.DeepEqual(decoded.Sorted(), []string{"cmd+q", "cmd+v"}) {
		t.Fatalf("Unmarshal = %v, want deduplicated set", decoded.Sorted())
	}

	var fromNull Whitelist
	if err := json.Unmarshal([]byte(`null`), &fromNull); err != nil {
		t.Fatalf("Unmarshal(null) returned error: %v", err)
	}
	if fromNull == nil || fromNull.Len() != 0 {
		t.Fatalf("Unmarshal(null) = %v, want empty non-nil set", fromNull)
	}
}

func TestWhitelistMutation(t *testing.T) {
	wl := NewWhitelist("cmd+a")
	if wl.Add("cmd+a") {
		t.Error("Add of existing entry reported new")
	}
	if !wl.Add("cmd+b") {
		t.Error("Add of new entry reported existing")
	}
	clone := wl.Clone()
	if !wl.Remove("cmd+a") {
		t.Error("Remove of existing entry reported missing")
	}
	if wl.Remove("cmd+a") {
		t.Error("second Remove reported present")
	}
	if !clone.Contains("cmd+a") {
		t.Error("Clone shares storage with original")
	}
	if wl.Equal(clone) {
		t.Error("Equal reported true for different sets")
	}
}
