package coordinator

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/bytehow/HotkeyMuzzle/internal/protocol"
)

// Recipient is one tab or control surface the coordinator can push to.
//
// Send must not block on the remote end: transports queue the message and
// deliver it from their own goroutine. A returned error means the message
// will not be delivered and is final for this attempt only.
type Recipient interface {
	ID() string
	Send(msg protocol.Message) error
}

// Directory lists the recipients that are reachable right now.
type Directory interface {
	Tabs() []Recipient
	Surfaces() []Recipient
	Tab(id string) (Recipient, bool)
}

// deliver makes one isolated delivery attempt. Errors and panics are logged
// and swallowed so that they never reach siblings or the caller.
func deliver(r Recipient, msg protocol.Message) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("[COORD] recovered panic during delivery",
				"recipient", r.ID(),
				"type", msg.Type,
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
			ok = false
		}
	}()

	if err := r.Send(msg); err != nil {
		slog.Debug("[COORD] delivery skipped", "recipient", r.ID(), "type", msg.Type, "error", err)
		return false
	}
	return true
}

// broadcast attempts delivery of msg to every recipient and returns how
// many attempts were accepted by the transport.
func broadcast(recipients []Recipient, msg protocol.Message) int {
	delivered := 0
	for _, r := range recipients {
		if r == nil {
			continue
		}
		if deliver(r, msg) {
			delivered++
		}
	}
	return delivered
}

// listRecipients calls list and recovers from a panicking directory.
func listRecipients(kind string, list func() []Recipient) (rs []Recipient) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("[COORD] recovered panic while listing recipients",
				"kind", kind,
				"panic", fmt.Sprint(rec),
			)
			rs = nil
		}
	}()
	return list()
}
