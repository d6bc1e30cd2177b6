// Package coordinator owns the process-wide blocking flag and pushes every
// change of it, and of the settings, to all reachable tabs.
//
// Delivery is best effort: every recipient gets its own isolated attempt,
// a failed attempt is logged and dropped, and nothing is retried. Results
// of Toggle and UpdateSettings describe the local state change only.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bytehow/HotkeyMuzzle/internal/protocol"
	"github.com/bytehow/HotkeyMuzzle/internal/settings"
	"github.com/bytehow/HotkeyMuzzle/internal/shortcut"
)

// Toast texts.
const (
	titleBlocked      = "Shortcuts Blocked"
	messageBlocked    = "Click extension icon to disable"
	titleEnabled      = "Shortcuts Enabled"
	messageEnabled    = "Protection disabled"
	titleShortcut     = "Shortcut Blocked"
	messageShortcut   = "was blocked"
	errMissingPayload = "missing settings payload"
)

// StatsRecorder counts blocked shortcuts.
type StatsRecorder interface {
	RecordBlocked(shortcut string) error
}

// Options configures a Coordinator. Store and Directory are required.
type Options struct {
	Store     settings.Store
	Directory Directory
	// Stats is optional.
	Stats StatsRecorder
}

// Coordinator is the single authoritative holder of the blocking flag.
type Coordinator struct {
	store settings.Store
	dir   Directory
	stats StatsRecorder

	// mu guards blocking.
	mu       sync.RWMutex
	blocking bool

	// fanMu serializes fan-out rounds so every recipient sees them in the
	// order the state changed. Never acquire mu before fanMu.
	fanMu sync.Mutex

	hooksMu       sync.RWMutex
	hooks         []func(blocking bool)
	settingsHooks []func(settings.Settings)
}

// New returns a Coordinator with blocking off.
func New(opts Options) *Coordinator {
	if opts.Store == nil {
		panic("coordinator: Options.Store is required")
	}
	if opts.Directory == nil {
		panic("coordinator: Options.Directory is required")
	}
	return &Coordinator{
		store: opts.Store,
		dir:   opts.Directory,
		stats: opts.Stats,
	}
}

// OnStateChange registers fn to run after every toggle, before fan-out.
// Hooks run on the toggling goroutine and must not call Toggle.
func (c *Coordinator) OnStateChange(fn func(blocking bool)) {
	if fn == nil {
		return
	}
	c.hooksMu.Lock()
	c.hooks = append(c.hooks, fn)
	c.hooksMu.Unlock()
}

// OnSettingsPublished registers fn to run with every record PublishSettings
// pushes.
func (c *Coordinator) OnSettingsPublished(fn func(settings.Settings)) {
	if fn == nil {
		return
	}
	c.hooksMu.Lock()
	c.settingsHooks = append(c.settingsHooks, fn)
	c.hooksMu.Unlock()
}

// State returns the current blocking flag.
func (c *Coordinator) State() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocking
}

// Toggle flips the blocking flag, pushes the new state to every tab and
// control surface, shows a state toast in every tab if enabled, and returns
// the new state. Delivery failures never affect the result.
func (c *Coordinator) Toggle(ctx context.Context) bool {
	c.fanMu.Lock()
	defer c.fanMu.Unlock()

	c.mu.Lock()
	c.blocking = !c.blocking
	blocking := c.blocking
	c.mu.Unlock()

	slog.Info("[COORD] blocking toggled", "blocking", blocking)
	c.runHooks(blocking)

	state := protocol.BlockingStateChanged(blocking)
	tabs := listRecipients("tabs", c.dir.Tabs)
	sent := broadcast(tabs, state)
	slog.Debug("[COORD] state pushed to tabs", "delivered", sent, "tabs", len(tabs))

	surfaces := listRecipients("surfaces", c.dir.Surfaces)
	if len(surfaces) == 0 {
		slog.Debug("[COORD] no control surface open")
	} else {
		broadcast(surfaces, state)
	}

	s := c.loadSettings(ctx)
	if s.ShowStateNotifications {
		broadcast(tabs, protocol.ShowToast(stateToast(blocking, s)))
	}

	return blocking
}

// ShortcutBlocked records a shortcut a tab suppressed and, if enabled,
// shows a toast for it in that tab only.
func (c *Coordinator) ShortcutBlocked(ctx context.Context, canonical, originTab string) {
	if canonical == "" {
		slog.Debug("[COORD] ignoring empty blocked shortcut", "tab", originTab)
		return
	}
	slog.Info("[COORD] shortcut blocked", "shortcut", canonical, "tab", originTab)

	if c.stats != nil {
		if err := c.stats.RecordBlocked(canonical); err != nil {
			slog.Warn("[COORD] failed to record blocked shortcut", "shortcut", canonical, "error", err)
		}
	}

	s := c.loadSettings(ctx)
	if !s.ShowBlockedNotifications {
		slog.Debug("[COORD] blocked-shortcut notifications disabled")
		return
	}
	if originTab == "" {
		slog.Debug("[COORD] no origin tab for blocked-shortcut toast", "shortcut", canonical)
		return
	}
	tab, ok := c.dir.Tab(originTab)
	if !ok {
		slog.Debug("[COORD] origin tab is gone", "tab", originTab)
		return
	}
	deliver(tab, protocol.ShowToast(protocol.Toast{
		Kind:       protocol.ToastBlockedShortcut,
		Title:      titleShortcut,
		Message:    messageShortcut,
		Shortcut:   shortcut.Display(canonical),
		DurationMs: s.DurationMillis(),
	}))
}

// UpdateSettings persists the fields present in p and pushes the resulting
// full record to every tab. The error reports persistence only.
func (c *Coordinator) UpdateSettings(ctx context.Context, p settings.Partial) error {
	if err := settings.Save(ctx, c.store, p); err != nil {
		slog.Error("[COORD] failed to save settings", "error", err)
		return err
	}

	full, err := settings.Load(ctx, c.store)
	if err != nil {
		slog.Warn("[COORD] reload after save failed, publishing merged record", "error", err)
		full = settings.Merge(p, settings.Defaults())
	}
	c.PublishSettings(full)
	return nil
}

// PublishSettings pushes s to every tab without persisting it.
func (c *Coordinator) PublishSettings(s settings.Settings) {
	c.fanMu.Lock()
	defer c.fanMu.Unlock()

	tabs := listRecipients("tabs", c.dir.Tabs)
	sent := broadcast(tabs, protocol.SettingsUpdated(s))
	slog.Info("[COORD] settings published", "delivered", sent, "tabs", len(tabs))

	c.hooksMu.RLock()
	hooks := append([]func(settings.Settings){}, c.settingsHooks...)
	c.hooksMu.RUnlock()
	for _, fn := range hooks {
		safeCall("settings hook", func() { fn(s.Clone()) })
	}
}

// Settings returns the stored settings merged with defaults.
func (c *Coordinator) Settings(ctx context.Context) (settings.Settings, error) {
	return settings.Load(ctx, c.store)
}

// Handle answers one request from origin, which is the sender's tab id or
// "" for control surfaces.
func (c *Coordinator) Handle(ctx context.Context, origin string, msg protocol.Message) protocol.Response {
	resp := c.handle(ctx, origin, msg)
	resp.ID = msg.ID
	return resp
}

func (c *Coordinator) handle(ctx context.Context, origin string, msg protocol.Message) protocol.Response {
	switch msg.Type {
	case protocol.TypeToggleBlocking:
		return protocol.OKBlocking(c.Toggle(ctx))

	case protocol.TypeGetBlockingState:
		return protocol.OKBlocking(c.State())

	case protocol.TypeGetSettings:
		s, err := c.Settings(ctx)
		if err != nil {
			return protocol.Fail(err.Error())
		}
		return protocol.OKSettings(s)

	case protocol.TypeShortcutBlocked:
		c.ShortcutBlocked(ctx, msg.Shortcut, origin)
		return protocol.OK()

	case protocol.TypeUpdateSettings:
		if msg.Settings == nil {
			return protocol.Fail(errMissingPayload)
		}
		if err := c.UpdateSettings(ctx, *msg.Settings); err != nil {
			return protocol.Fail(err.Error())
		}
		return protocol.OK()

	default:
		slog.Warn("[COORD] unknown message type", "type", msg.Type, "origin", origin)
		return protocol.Fail(protocol.ErrUnknownType)
	}
}

func (c *Coordinator) loadSettings(ctx context.Context) settings.Settings {
	s, err := settings.Load(ctx, c.store)
	if err != nil {
		slog.Warn("[COORD] using default settings", "error", err)
		return settings.Defaults()
	}
	return s
}

func (c *Coordinator) runHooks(blocking bool) {
	c.hooksMu.RLock()
	hooks := append([]func(bool){}, c.hooks...)
	c.hooksMu.RUnlock()

	for _, fn := range hooks {
		safeCall("state hook", func() { fn(blocking) })
	}
}

func safeCall(what string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("[COORD] recovered panic in "+what, "panic", fmt.Sprint(rec))
		}
	}()
	fn()
}

func stateToast(blocking bool, s settings.Settings) protocol.Toast {
	t := protocol.Toast{
		Kind:       protocol.ToastStateChange,
		Title:      titleEnabled,
		Message:    messageEnabled,
		Blocking:   &blocking,
		DurationMs: s.DurationMillis(),
	}
	if blocking {
		t.Title = titleBlocked
		t.Message = messageBlocked
	}
	return t
}
