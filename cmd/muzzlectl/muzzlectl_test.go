package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/bytehow/HotkeyMuzzle/internal/coordinator"
	"github.com/bytehow/HotkeyMuzzle/internal/hub"
	"github.com/bytehow/HotkeyMuzzle/internal/settings"
	"github.com/bytehow/HotkeyMuzzle/internal/shortcut"
)

func TestParseOption(t *testing.T) {
	tests := []struct {
		name, value string
		check       func(settings.Partial) bool
		wantErr     bool
	}{
		{"duration", "3000", func(p settings.Partial) bool { return *p.NotificationDuration == 3000 }, false},
		{"duration", "-5", func(p settings.Partial) bool { return *p.NotificationDuration == settings.DefaultNotificationDuration }, false},
		{"duration", "soon", func(p settings.Partial) bool { return *p.NotificationDuration == settings.DefaultNotificationDuration }, false},
		{"blocked-notifications", "off", func(p settings.Partial) bool { return !*p.ShowBlockedNotifications && p.ShowStateNotifications == nil }, false},
		{"State-Notifications", "on", func(p settings.Partial) bool { return *p.ShowStateNotifications }, false},
		{"state-notifications", "maybe", nil, true},
		{"volume", "11", nil, true},
	}
	for _, tt := range tests {
		p, msg, err := parseOption(tt.name, tt.value)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseOption(%q, %q) should fail", tt.name, tt.value)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseOption(%q, %q) returned error: %v", tt.name, tt.value, err)
			continue
		}
		if msg == "" || !tt.check(p) {
			t.Errorf("parseOption(%q, %q) = %+v, %q", tt.name, tt.value, p, msg)
		}
	}
}

func TestInvalidDurationMessageMentionsDefault(t *testing.T) {
	_, msg, err := parseOption("duration", "0")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg, "1500ms") {
		t.Fatalf("message = %q, want the default mentioned", msg)
	}
}

func TestWhitelistEdits(t *testing.T) {
	wl := shortcut.NewWhitelist("cmd+c")

	if _, err := addShortcut(wl, "Shift + Cmd + P"); err != nil {
		t.Fatalf("addShortcut returned error: %v", err)
	}
	if !wl.Contains("cmd+shift+p") {
		t.Fatalf("whitelist = %v, want canonical cmd+shift+p", wl.Sorted())
	}
	if _, err := addShortcut(wl, "cmd+shift+p"); !errors.Is(err, errAlreadyWhitelisted) {
		t.Fatalf("duplicate add error = %v, want errAlreadyWhitelisted", err)
	}
	if _, err := addShortcut(wl, "hyper+k"); !errors.Is(err, shortcut.ErrInvalidShortcut) {
		t.Fatalf("invalid add error = %v, want ErrInvalidShortcut", err)
	}

	if _, err := removeShortcut(wl, "command+c"); err != nil {
		t.Fatalf("removeShortcut returned error: %v", err)
	}
	if _, err := removeShortcut(wl, "cmd+c"); !errors.Is(err, errNotWhitelisted) {
		t.Fatalf("second remove error = %v, want errNotWhitelisted", err)
	}
	if got := wl.Sorted(); len(got) != 1 || got[0] != "cmd+shift+p" {
		t.Fatalf("whitelist = %v", got)
	}
}

func TestParseKeyPress(t *testing.T) {
	tests := []struct {
		in   string
		want shortcut.Event
	}{
		{"cmd+k", shortcut.Event{Meta: true, Key: "k"}},
		{"ctrl+shift+f5", shortcut.Event{Ctrl: true, Shift: true, Key: "f5"}},
		{"esc", shortcut.Event{Key: "escape"}},
		{"option+left", shortcut.Event{Alt: true, Key: "left"}},
	}
	for _, tt := range tests {
		got, err := parseKeyPress(tt.in)
		if err != nil {
			t.Errorf("parseKeyPress(%q) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseKeyPress(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if _, err := parseKeyPress("cmd+shift"); err == nil {
		t.Error("parseKeyPress(cmd+shift) should fail")
	}
}

func TestListenReportsSuppressedKeys(t *testing.T) {
	h := hub.New(hub.Options{Addr: "127.0.0.1:0"})
	coord := coordinator.New(coordinator.Options{
		Store:     settings.NewMemoryStore(),
		Directory: h,
	})
	if err := h.Start(t.Context(), coord); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer h.Stop()
	coord.Toggle(t.Context())

	old := flagAddr
	flagAddr = h.Addr()
	defer func() { flagAddr = old }()

	in := strings.NewReader("cmd+k\ncmd+c\nnonsense+x\n\nshift+a\n")
	var out bytes.Buffer
	if err := runListen(t.Context(), in, &out); err != nil {
		t.Fatalf("runListen returned error: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Shortcuts Blocked",
		"⛔ " + shortcut.Display("cmd+k") + " suppressed",
		"➡️  " + shortcut.Display("cmd+c") + " passed through",
		"❌ ",
		"➡️  " + shortcut.Display("shift+a") + " passed through",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestFormatSettings(t *testing.T) {
	s := settings.Defaults()
	s.Whitelist = shortcut.NewWhitelist()
	got := formatSettings(s)
	if !strings.Contains(got, "1500ms") || !strings.Contains(got, "No whitelisted shortcuts") {
		t.Fatalf("formatSettings = %q", got)
	}
}
