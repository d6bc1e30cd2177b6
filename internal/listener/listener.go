// Package listener is the per-tab half of HotkeyMuzzle: it keeps a cached
// copy of the blocking flag and settings, decides on every key press
// whether to suppress it, and reports what it suppressed.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bytehow/HotkeyMuzzle/internal/protocol"
	"github.com/bytehow/HotkeyMuzzle/internal/settings"
	"github.com/bytehow/HotkeyMuzzle/internal/shortcut"
)

// Remote is the listener's view of the coordinator.
type Remote interface {
	GetBlockingState(ctx context.Context) (bool, error)
	GetSettings(ctx context.Context) (settings.Settings, error)
	ReportBlocked(ctx context.Context, canonical string) error
}

// Suppressor stops a key event from reaching the page.
type Suppressor interface {
	PreventDefault()
	StopPropagation()
}

// Toaster renders toasts pushed by the coordinator.
type Toaster interface {
	ShowToast(t protocol.Toast)
}

// Listener is one tab's key listener. The zero value is not usable; call New.
type Listener struct {
	remote  Remote
	toaster Toaster

	mu       sync.RWMutex
	attached bool
	blocking bool
	settings settings.Settings

	// Set by pushes applied while Attach is fetching, so that the older
	// fetched values do not overwrite them.
	blockingPushed bool
	settingsPushed bool

	// ctx bounds reports to the listener's lifetime.
	ctx     context.Context
	cancel  context.CancelFunc
	reports sync.WaitGroup
}

// New returns a detached Listener with default settings and blocking off.
// toaster may be nil.
func New(remote Remote, toaster Toaster) *Listener {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener{
		remote:   remote,
		toaster:  toaster,
		settings: settings.Defaults(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Attach loads the initial settings and blocking state. Failures leave the
// defaults in place. Calling Attach again does nothing.
func (l *Listener) Attach(ctx context.Context) {
	l.mu.Lock()
	if l.attached {
		l.mu.Unlock()
		return
	}
	l.attached = true
	l.blockingPushed = false
	l.settingsPushed = false
	l.mu.Unlock()

	s, err := l.remote.GetSettings(ctx)
	if err != nil {
		slog.Warn("[LISTENER] settings unavailable, using defaults", "error", err)
		s = settings.Defaults()
	}

	blocking, err := l.remote.GetBlockingState(ctx)
	if err != nil {
		slog.Warn("[LISTENER] blocking state unavailable, assuming off", "error", err)
		blocking = false
	}

	l.mu.Lock()
	if !l.settingsPushed {
		l.settings = s
	}
	if !l.blockingPushed {
		l.blocking = blocking
	}
	blocking, whitelist := l.blocking, l.settings.Whitelist.Len()
	l.mu.Unlock()

	slog.Info("[LISTENER] attached", "blocking", blocking, "whitelist", whitelist)
}

// Attached reports whether Attach has run.
func (l *Listener) Attached() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.attached
}

// Blocking returns the cached blocking flag.
func (l *Listener) Blocking() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.blocking
}

// Settings returns a copy of the cached settings.
func (l *Listener) Settings() settings.Settings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.settings.Clone()
}

// KeyDown handles one key-down event and reports whether it was suppressed.
func (l *Listener) KeyDown(ev shortcut.Event, s Suppressor) bool {
	canonical := shortcut.Normalize(ev)

	l.mu.RLock()
	blocking := l.blocking
	block := blocking && shortcut.ShouldBlock(canonical, l.settings.Whitelist)
	l.mu.RUnlock()

	if !block {
		return false
	}

	if s != nil {
		s.PreventDefault()
		s.StopPropagation()
	}
	slog.Debug("[LISTENER] suppressed", "shortcut", canonical)
	l.report(canonical)
	return true
}

// KeyUp ignores key-up events: they are never suppressed or reported.
func (l *Listener) KeyUp(shortcut.Event) bool { return false }

func (l *Listener) report(canonical string) {
	l.reports.Add(1)
	go func() {
		defer l.reports.Done()
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("[LISTENER] recovered panic while reporting", "panic", fmt.Sprint(rec))
			}
		}()

		if err := l.remote.ReportBlocked(l.ctx, canonical); err != nil {
			slog.Debug("[LISTENER] report failed", "shortcut", canonical, "error", err)
		}
	}()
}

// HandleMessage applies one push from the coordinator.
func (l *Listener) HandleMessage(msg protocol.Message) protocol.Response {
	switch msg.Type {
	case protocol.TypeBlockingStateChanged:
		if msg.Blocking == nil {
			return protocol.Failf("%s without blocking", msg.Type)
		}
		l.mu.Lock()
		l.blocking = *msg.Blocking
		l.blockingPushed = true
		l.mu.Unlock()
		slog.Info("[LISTENER] blocking changed", "blocking", *msg.Blocking)
		return protocol.OK()

	case protocol.TypeSettingsUpdated:
		if msg.Settings == nil {
			return protocol.Failf("%s without settings", msg.Type)
		}
		l.mu.Lock()
		l.settings = settings.Merge(*msg.Settings, l.settings)
		l.settingsPushed = true
		l.mu.Unlock()
		slog.Info("[LISTENER] settings updated")
		return protocol.OK()

	case protocol.TypeShowToast:
		if msg.Toast == nil {
			return protocol.Failf("%s without toast", msg.Type)
		}
		if l.toaster != nil {
			l.toaster.ShowToast(*msg.Toast)
		}
		return protocol.OK()

	default:
		return protocol.Fail(protocol.ErrUnknownType)
	}
}

// Close ends the listener's lifetime and waits for in-flight reports.
// Reports already written to the transport are not withdrawn.
func (l *Listener) Close() {
	l.cancel()
	l.reports.Wait()
}
