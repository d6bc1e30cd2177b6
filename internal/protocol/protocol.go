// Package protocol defines the messages exchanged between tab listeners,
// control surfaces, and the coordinator.
//
// Every message travels as one JSON object:
//
//	{"id":"…","type":"TOGGLE_BLOCKING"}
//	{"id":"…","type":"RESPONSE","success":true,"blocking":true}
//	{"type":"BLOCKING_STATE_CHANGED","blocking":false}
//
// Requests carry an id and are answered by a RESPONSE with the same id.
// Pushes from the coordinator carry no id and expect no answer.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/bytehow/HotkeyMuzzle/internal/settings"
)

// Type identifies a message.
type Type string

// Requests to the coordinator.
const (
	TypeToggleBlocking   Type = "TOGGLE_BLOCKING"
	TypeGetBlockingState Type = "GET_BLOCKING_STATE"
	TypeGetSettings      Type = "GET_SETTINGS"
	TypeShortcutBlocked  Type = "SHORTCUT_BLOCKED"
	TypeUpdateSettings   Type = "UPDATE_SETTINGS"
)

// Pushes from the coordinator.
const (
	TypeBlockingStateChanged Type = "BLOCKING_STATE_CHANGED"
	TypeSettingsUpdated      Type = "SETTINGS_UPDATED"
	TypeShowToast            Type = "SHOW_TOAST"
)

// TypeResponse marks the answer to a request.
const TypeResponse Type = "RESPONSE"

// ErrUnknownType is the error text of a response to an unrecognised type.
const ErrUnknownType = "unknown message type"

// ToastKind selects the look of a toast.
type ToastKind string

const (
	ToastStateChange     ToastKind = "state-change"
	ToastBlockedShortcut ToastKind = "blocked-shortcut"
)

// Toast is a transient on-screen notification.
type Toast struct {
	Kind       ToastKind `json:"kind"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Shortcut   string    `json:"shortcut,omitempty"`
	Blocking   *bool     `json:"blocking,omitempty"`
	DurationMs int       `json:"durationMs"`
}

// Message is the envelope for requests and pushes.
type Message struct {
	ID       string            `json:"id,omitempty"`
	Type     Type              `json:"type"`
	Blocking *bool             `json:"blocking,omitempty"`
	Shortcut string            `json:"shortcut,omitempty"`
	Settings *settings.Partial `json:"settings,omitempty"`
	Toast    *Toast            `json:"toast,omitempty"`
}

// Response answers a request.
type Response struct {
	ID       string            `json:"id,omitempty"`
	Type     Type              `json:"type"`
	Success  bool              `json:"success"`
	Blocking *bool             `json:"blocking,omitempty"`
	Settings *settings.Partial `json:"settings,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// NewRequest returns a request of type t with a fresh id.
func NewRequest(t Type) Message {
	return Message{ID: uuid.NewString(), Type: t}
}

// BlockingStateChanged builds the state push.
func BlockingStateChanged(blocking bool) Message {
	return Message{Type: TypeBlockingStateChanged, Blocking: &blocking}
}

// SettingsUpdated builds the settings push carrying the full record.
func SettingsUpdated(s settings.Settings) Message {
	p := s.Partial()
	return Message{Type: TypeSettingsUpdated, Settings: &p}
}

// ShowToast builds a toast push.
func ShowToast(t Toast) Message {
	return Message{Type: TypeShowToast, Toast: &t}
}

// OKSettings returns a successful response carrying the full settings record.
func OKSettings(s settings.Settings) Response {
	r := OK()
	p := s.Partial()
	r.Settings = &p
	return r
}

// OK returns a successful response.
func OK() Response {
	return Response{Type: TypeResponse, Success: true}
}

// OKBlocking returns a successful response carrying the blocking state.
func OKBlocking(blocking bool) Response {
	r := OK()
	r.Blocking = &blocking
	return r
}

// Fail returns a failed response.
func Fail(err string) Response {
	return Response{Type: TypeResponse, Success: false, Error: err}
}

// Failf formats a failed response.
func Failf(format string, args ...any) Response {
	return Fail(fmt.Sprintf(format, args...))
}

// IsRequest reports whether t is answered by the coordinator.
func (t Type) IsRequest() bool {
	switch t {
	case TypeToggleBlocking, TypeGetBlockingState, TypeGetSettings,
		TypeShortcutBlocked, TypeUpdateSettings:
		return true
	}
	return false
}

// Frame is the decoded form of any inbound JSON object: a request, a push,
// or a response, told apart by Type.
type Frame struct {
	Message
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Response returns f read as a response.
func (f Frame) Response() Response {
	return Response{
		ID:       f.ID,
		Type:     f.Type,
		Success:  f.Success,
		Blocking: f.Blocking,
		Settings: f.Settings,
		Error:    f.Error,
	}
}

// Decode parses one inbound JSON object.
func Decode(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if f.Type == "" {
		return Frame{}, fmt.Errorf("decode frame: missing type")
	}
	return f, nil
}
