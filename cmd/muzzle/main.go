package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/bytehow/HotkeyMuzzle/internal/app"
	"github.com/bytehow/HotkeyMuzzle/internal/config"
	"github.com/bytehow/HotkeyMuzzle/internal/settings"
	"github.com/bytehow/HotkeyMuzzle/internal/stats"
	"github.com/bytehow/HotkeyMuzzle/internal/version"
)

func main() {
	var (
		showConfig    = flag.Bool("show-config", false, "Show current configuration location and contents")
		initConfig    = flag.Bool("init-config", false, "Write a config file with the default values")
		showVersion   = flag.Bool("version", false, "Show current version")
		showStats     = flag.Bool("stats", false, "Show blocked shortcut statistics")
		resetStats    = flag.Bool("reset-stats", false, "Clear all blocked shortcut statistics")
		resetSettings = flag.Bool("reset-settings", false, "Restore default blocking settings")
		addr          = flag.String("addr", "", "Listen address for tabs and controls (e.g., --addr=127.0.0.1:47800)")
		logLevel      = flag.String("log-level", "", "Log level: debug, info, warn or error")
	)
	flag.Parse()

	if *showVersion {
		handleShowVersion()
		return
	}

	if *initConfig {
		handleInitConfig()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid flags: %v", err)
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if *showConfig {
		handleShowConfig(cfg)
		return
	}

	if *showStats {
		handleShowStats()
		return
	}

	if *resetStats {
		handleResetStats()
		return
	}

	if *resetSettings {
		handleResetSettings(cfg)
		return
	}

	daemon := app.NewDaemon(cfg)
	if err := daemon.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize daemon: %v", err)
	}

	if err := daemon.Run(); err != nil {
		log.Fatalf("Daemon error: %v", err)
	}
}

func handleShowVersion() {
	fmt.Printf("HotkeyMuzzle %s\n", version.VERSION)
}

func handleShowConfig(cfg *config.Config) {
	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Printf("❌ Error getting config path: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Println("📝 Config file does not exist yet (run with --init-config to create it)")
	} else {
		fmt.Printf("📁 Config file location: %s\n", configPath)
		fmt.Println()
		fmt.Println("📋 Config file contents:")

		content, err := os.ReadFile(configPath)
		if err != nil {
			fmt.Printf("❌ Error reading config file: %v\n", err)
			return
		}
		fmt.Println(string(content))
	}

	fmt.Println("⚙️  Effective configuration:")
	fmt.Printf("   listen_addr:           %s\n", cfg.ListenAddr)
	fmt.Printf("   storage:               %s\n", cfg.Storage)
	fmt.Printf("   desktop_notifications: %v\n", cfg.DesktopNotifications)
	fmt.Printf("   beep:                  %v\n", cfg.Beep)
	fmt.Printf("   global_hotkey:         %v\n", cfg.GlobalHotkey)
	fmt.Printf("   watch_settings:        %v\n", cfg.WatchSettings)
	fmt.Printf("   log_level:             %s\n", cfg.LogLevel)
}

func handleInitConfig() {
	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Printf("❌ Error getting config path: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("📁 Config file already exists: %s\n", configPath)
		return
	}

	if err := config.SaveConfig(config.Defaults()); err != nil {
		fmt.Printf("❌ Error writing config file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Config file written to %s\n", configPath)
}

func openStats() *stats.Manager {
	statsDir, err := config.GetStatsDir()
	if err != nil {
		fmt.Printf("❌ Error getting stats directory: %v\n", err)
		os.Exit(1)
	}

	statsManager, err := stats.NewManager(statsDir)
	if err != nil {
		fmt.Printf("❌ Error initializing stats: %v\n", err)
		os.Exit(1)
	}
	return statsManager
}

func handleShowStats() {
	statsManager := openStats()

	totalStats, err := statsManager.GetTotalStats()
	if err != nil {
		fmt.Printf("❌ Error getting total stats: %v\n", err)
		os.Exit(1)
	}

	recentDays, err := statsManager.GetRecentDays(7)
	if err != nil {
		fmt.Printf("⚠️  Warning: Failed to get recent stats: %v\n", err)
	}

	formatter := stats.NewStatsFormatter()

	fmt.Println(formatter.FormatTotalStats(totalStats))
	fmt.Println()

	if len(recentDays) > 0 {
		fmt.Println(formatter.FormatWeeklyStats(recentDays))
	}
}

func handleResetStats() {
	statsManager := openStats()

	if err := statsManager.ClearAllStats(); err != nil {
		fmt.Printf("❌ Error clearing stats: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🗑️  All blocked shortcut statistics have been cleared")
}

func handleResetSettings(cfg *config.Config) {
	configDir, err := config.GetConfigDir()
	if err != nil {
		fmt.Printf("❌ Error getting config directory: %v\n", err)
		os.Exit(1)
	}

	store, err := settings.Open(cfg.Storage, configDir)
	if err != nil {
		fmt.Printf("❌ Error opening settings: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := settings.Reset(context.Background(), store); err != nil {
		fmt.Printf("❌ Error resetting settings: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🔄 Settings restored to defaults")
	fmt.Println("💡 A running daemon picks this up for JSON storage; otherwise use 'muzzlectl settings reset'")
}
