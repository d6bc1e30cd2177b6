// Package settings holds the user settings record, its defaults, and the
// key-value stores it is persisted in.
package settings

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bytehow/HotkeyMuzzle/internal/shortcut"
)

// DefaultNotificationDuration is the toast duration in milliseconds used
// whenever no valid duration is available.
const DefaultNotificationDuration = 1500

// Storage keys, one per settings field.
const (
	KeyShowBlockedNotifications = "showBlockedNotifications"
	KeyShowStateNotifications   = "showStateNotifications"
	KeyNotificationDuration     = "notificationDuration"
	KeyWhitelist                = "whitelist"
)

// Keys returns every storage key in a stable order.
func Keys() []string {
	return []string{
		KeyShowBlockedNotifications,
		KeyShowStateNotifications,
		KeyNotificationDuration,
		KeyWhitelist,
	}
}

// Settings is the fully populated settings record.
type Settings struct {
	ShowBlockedNotifications bool               `json:"showBlockedNotifications"`
	ShowStateNotifications   bool               `json:"showStateNotifications"`
	NotificationDuration     int                `json:"notificationDuration"`
	Whitelist                shortcut.Whitelist `json:"whitelist"`
}

// DefaultWhitelist returns the built-in whitelist: the browser operations
// that keep working while blocking is active.
func DefaultWhitelist() shortcut.Whitelist {
	return shortcut.NewWhitelist(
		"cmd+a",       // select all
		"cmd+c",       // copy
		"cmd+v",       // paste
		"cmd+t",       // new tab
		"cmd+w",       // close tab
		"cmd+r",       // reload
		"cmd+l",       // address bar
		"cmd+shift+t", // reopen closed tab
		"cmd+shift+n", // new incognito window
		"cmd+q",       // quit
	)
}

// Defaults returns the built-in settings record.
func Defaults() Settings {
	return Settings{
		ShowBlockedNotifications: true,
		ShowStateNotifications:   true,
		NotificationDuration:     DefaultNotificationDuration,
		Whitelist:                DefaultWhitelist(),
	}
}

// Duration returns the toast duration, falling back to the default when the
// stored value is not positive.
func (s Settings) Duration() time.Duration {
	ms := s.NotificationDuration
	if ms <= 0 {
		ms = DefaultNotificationDuration
	}
	return time.Duration(ms) * time.Millisecond
}

// DurationMillis is Duration in whole milliseconds.
func (s Settings) DurationMillis() int {
	return int(s.Duration() / time.Millisecond)
}

// Clone returns a copy that shares no mutable state with s.
func (s Settings) Clone() Settings {
	out := s
	out.Whitelist = s.Whitelist.Clone()
	return out
}

// Equal reports whether both records hold the same values.
func (s Settings) Equal(other Settings) bool {
	return s.ShowBlockedNotifications == other.ShowBlockedNotifications &&
		s.ShowStateNotifications == other.ShowStateNotifications &&
		s.NotificationDuration == other.NotificationDuration &&
		s.Whitelist.Equal(other.Whitelist)
}

// Partial is a settings record in which any field may be absent.
type Partial struct {
	ShowBlockedNotifications *bool               `json:"showBlockedNotifications,omitempty"`
	ShowStateNotifications   *bool               `json:"showStateNotifications,omitempty"`
	NotificationDuration     *int                `json:"notificationDuration,omitempty"`
	Whitelist                *shortcut.Whitelist `json:"whitelist,omitempty"`
}

// IsEmpty reports whether no field is present.
func (p Partial) IsEmpty() bool {
	return p.ShowBlockedNotifications == nil &&
		p.ShowStateNotifications == nil &&
		p.NotificationDuration == nil &&
		p.Whitelist == nil
}

// Partial returns s with every field present.
func (s Settings) Partial() Partial {
	blocked := s.ShowBlockedNotifications
	state := s.ShowStateNotifications
	duration := s.NotificationDuration
	wl := s.Whitelist.Clone()
	return Partial{
		ShowBlockedNotifications: &blocked,
		ShowStateNotifications:   &state,
		NotificationDuration:     &duration,
		Whitelist:                &wl,
	}
}

// Merge returns base with every field present in p replacing the base value.
// Fields are replaced whole; the whitelist is never merged entry by entry.
func Merge(p Partial, base Settings) Settings {
	out := base.Clone()
	if p.ShowBlockedNotifications != nil {
		out.ShowBlockedNotifications = *p.ShowBlockedNotifications
	}
	if p.ShowStateNotifications != nil {
		out.ShowStateNotifications = *p.ShowStateNotifications
	}
	if p.NotificationDuration != nil {
		out.NotificationDuration = *p.NotificationDuration
	}
	if p.Whitelist != nil {
		out.Whitelist = p.Whitelist.Clone()
	}
	return out
}

// Values encodes the present fields as storage values keyed by field name.
func (p Partial) Values() (map[string]json.RawMessage, error) {
	values := make(map[string]json.RawMessage, 4)
	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		values[key] = raw
		return nil
	}
	if p.ShowBlockedNotifications != nil {
		if err := put(KeyShowBlockedNotifications, *p.ShowBlockedNotifications); err != nil {
			return nil, err
		}
	}
	if p.ShowStateNotifications != nil {
		if err := put(KeyShowStateNotifications, *p.ShowStateNotifications); err != nil {
			return nil, err
		}
	}
	if p.NotificationDuration != nil {
		if err := put(KeyNotificationDuration, *p.NotificationDuration); err != nil {
			return nil, err
		}
	}
	if p.Whitelist != nil {
		if err := put(KeyWhitelist, *p.Whitelist); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// PartialFromValues decodes storage values. A key whose value does not
// decode is treated as absent so that the default applies.
func PartialFromValues(values map[string]json.RawMessage) Partial {
	var p Partial
	if raw, ok := values[KeyShowBlockedNotifications]; ok {
		var v bool
		if decodeValue(KeyShowBlockedNotifications, raw, &v) {
			p.ShowBlockedNotifications = &v
		}
	}
	if raw, ok := values[KeyShowStateNotifications]; ok {
		var v bool
		if decodeValue(KeyShowStateNotifications, raw, &v) {
			p.ShowStateNotifications = &v
		}
	}
	if raw, ok := values[KeyNotificationDuration]; ok {
		var v int
		if decodeValue(KeyNotificationDuration, raw, &v) {
			p.NotificationDuration = &v
		}
	}
	if raw, ok := values[KeyWhitelist]; ok {
		var v shortcut.Whitelist
		if decodeValue(KeyWhitelist, raw, &v) {
			p.Whitelist = &v
		}
	}
	return p
}

func decodeValue(key string, raw json.RawMessage, out any) bool {
	if err := json.Unmarshal(raw, out); err != nil {
		slog.Warn("[SETTINGS] ignoring undecodable stored value", "key", key, "error", err)
		return false
	}
	return true
}

// ParseDuration validates a user-entered notification duration in
// milliseconds. Anything that is not a positive integer yields the default.
func ParseDuration(input string) int {
	ms, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || ms <= 0 {
		return DefaultNotificationDuration
	}
	return ms
}
