package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytehow/HotkeyMuzzle/internal/config"
	"github.com/bytehow/HotkeyMuzzle/internal/coordinator"
	"github.com/bytehow/HotkeyMuzzle/internal/hotkeys"
	"github.com/bytehow/HotkeyMuzzle/internal/hub"
	"github.com/bytehow/HotkeyMuzzle/internal/notify"
	"github.com/bytehow/HotkeyMuzzle/internal/settings"
	"github.com/bytehow/HotkeyMuzzle/internal/stats"
	"github.com/bytehow/HotkeyMuzzle/internal/terminal"
)

type Daemon struct {
	config        *config.Config
	store         settings.Store
	statsManager  *stats.Manager
	formatter     *stats.StatsFormatter
	coord         *coordinator.Coordinator
	hub           *hub.Hub
	indicator     *notify.Indicator
	hotkeyManager *hotkeys.Manager
	watcher       *settings.Watcher
	status        *terminal.StatusLine

	ctx    context.Context
	cancel context.CancelFunc
}

func NewDaemon(cfg *config.Config) *Daemon {
	if cfg == nil {
		cfg = config.Defaults()
	}
	return &Daemon{
		config:    cfg,
		formatter: stats.NewStatsFormatter(),
	}
}

func (d *Daemon) Initialize(ctx context.Context) error {
	d.ctx, d.cancel = context.WithCancel(ctx)

	configDir, err := config.GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	d.store, err = settings.Open(d.config.Storage, configDir)
	if err != nil {
		return fmt.Errorf("failed to open settings storage: %w", err)
	}

	// First start: write defaults for every missing key
	initial, err := settings.InstallDefaults(d.ctx, d.store)
	if err != nil {
		return fmt.Errorf("failed to install default settings: %w", err)
	}
	slog.Info("[DAEMON] settings ready", "backend", d.config.Storage, "whitelist", initial.Whitelist.Len())

	statsDir, err := config.GetStatsDir()
	if err != nil {
		return fmt.Errorf("failed to get stats directory: %w", err)
	}
	d.statsManager, err = stats.NewManager(statsDir)
	if err != nil {
		return fmt.Errorf("failed to initialize stats: %w", err)
	}

	d.status = terminal.NewStatusLine(terminal.NewControl())

	d.hub = hub.New(hub.Options{
		Addr:           d.config.ListenAddr,
		OnPeersChanged: d.onPeersChanged,
	})

	d.coord = coordinator.New(coordinator.Options{
		Store:     d.store,
		Directory: d.hub,
		Stats:     d,
	})

	d.indicator = notify.NewIndicator(d.config.DesktopNotifications, d.config.Beep)
	d.coord.OnStateChange(d.indicator.OnStateChange)
	d.coord.OnStateChange(d.onStateChange)

	if fileStore, ok := d.store.(*settings.FileStore); ok && d.config.WatchSettings {
		d.watcher, err = settings.NewWatcher(fileStore, initial, d.coord.PublishSettings)
		if err != nil {
			// Settings still work; external edits just are not picked up
			fmt.Printf("⚠️  Warning: settings file watcher unavailable: %v\n", err)
		} else {
			d.coord.OnSettingsPublished(d.watcher.Remember)
		}
	}

	if d.config.GlobalHotkey {
		d.hotkeyManager = hotkeys.NewManager(d)
	}

	return nil
}

// Start begins serving tabs and control surfaces.
func (d *Daemon) Start() error {
	if err := d.hub.Start(d.ctx, d.coord); err != nil {
		return fmt.Errorf("failed to start hub: %w", err)
	}

	if d.hotkeyManager != nil {
		if err := d.hotkeyManager.Start(); err != nil {
			if !errors.Is(err, hotkeys.ErrUnsupported) {
				return fmt.Errorf("failed to start hotkey: %w", err)
			}
			slog.Info("[DAEMON] global hotkey unavailable", "error", err)
			d.hotkeyManager = nil
		} else {
			go d.hotkeyManager.Listen()
		}
	}
	return nil
}

func (d *Daemon) Run() error {
	if err := d.Start(); err != nil {
		return err
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	toggle := make(chan os.Signal, 1)
	if len(toggleSignals) > 0 {
		signal.Notify(toggle, toggleSignals...)
		defer signal.Stop(toggle)
	}

	fmt.Println("🤐 HotkeyMuzzle - Shortcut Blocking Daemon Started")
	fmt.Printf("🔌 Tabs connect to %s\n", hub.URLFor(d.hub.Addr(), hub.RoleTab))
	if d.hotkeyManager != nil {
		fmt.Printf("📋 Press %s to toggle blocking\n", d.hotkeyManager.GetHotkeyDisplay())
	}
	if len(toggleSignals) > 0 {
		fmt.Printf("📋 Or run: kill -USR1 %d\n", os.Getpid())
	}
	fmt.Println("🛑 Press Ctrl+C to exit")
	fmt.Println()

	d.refreshStatus()

	for {
		select {
		case <-toggle:
			d.Toggle()
		case <-c:
			fmt.Println("\n🛑 Shutting down...")
			d.Cleanup()
			return nil
		case <-d.ctx.Done():
			d.Cleanup()
			return nil
		}
	}
}

func (d *Daemon) Cleanup() {
	if d.hotkeyManager != nil {
		d.hotkeyManager.Stop()
	}

	if d.watcher != nil {
		d.watcher.Close()
	}

	if d.hub != nil {
		if err := d.hub.Stop(); err != nil {
			slog.Warn("[DAEMON] hub stop failed", "error", err)
		}
	}

	if d.indicator != nil {
		d.indicator.Wait()
	}

	if d.store != nil {
		d.store.Close()
	}

	if d.cancel != nil {
		d.cancel()
	}
}

// Addr returns the address tabs connect to.
func (d *Daemon) Addr() string {
	return d.hub.Addr()
}

// Toggle flips blocking, as the extension action button does.
func (d *Daemon) Toggle() bool {
	return d.coord.Toggle(d.ctx)
}

// OnPress implements hotkeys.EventHandler
func (d *Daemon) OnPress() {
	slog.Debug("[DAEMON] global hotkey pressed")
	d.Toggle()
}

// OnRelease implements hotkeys.EventHandler
func (d *Daemon) OnRelease() {}

// RecordBlocked implements coordinator.StatsRecorder.
func (d *Daemon) RecordBlocked(shortcut string) error {
	if err := d.statsManager.RecordBlocked(shortcut); err != nil {
		return err
	}

	today, err := d.statsManager.GetTodayStats()
	if err != nil {
		return err
	}
	d.status.Log(d.formatter.FormatBlockedLine(shortcut, today))
	d.status.Update(func(st *terminal.Status) { st.BlockedToday = today.TotalBlocked })
	return nil
}

func (d *Daemon) onStateChange(blocking bool) {
	if blocking {
		if err := d.statsManager.RecordActivation(); err != nil {
			slog.Warn("[DAEMON] failed to record activation", "error", err)
		}
	}
	action := d.indicator.Title()
	d.status.Update(func(st *terminal.Status) {
		st.Blocking = blocking
		st.Action = action
	})
}

func (d *Daemon) onPeersChanged(tabs, surfaces int) {
	d.status.Update(func(st *terminal.Status) {
		st.Tabs = tabs
		st.Surfaces = surfaces
	})
}

func (d *Daemon) refreshStatus() {
	blockedToday := 0
	if today, err := d.statsManager.GetTodayStats(); err == nil {
		blockedToday = today.TotalBlocked
	}
	tabs, surfaces := d.hub.Counts()
	d.status.Update(func(st *terminal.Status) {
		st.Blocking = d.coord.State()
		st.Tabs = tabs
		st.Surfaces = surfaces
		st.BlockedToday = blockedToday
		st.Action = d.indicator.Title()
	})
}
