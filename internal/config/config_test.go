package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytehow/HotkeyMuzzle/internal/settings"
)

func useConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvStorage, "")
	t.Setenv(EnvLogLevel, "")
	return dir
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	useConfigDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if *cfg != *Defaults() {
		t.Fatalf("Load = %+v, want defaults", cfg)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := useConfigDir(t)
	data := []byte("listen_addr: 127.0.0.1:9000\nstorage: sqlite\nbeep: false\n")
	if err := os.WriteFile(filepath.Join(dir, configFileName), data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" || cfg.Storage != settings.BackendSQLite || cfg.Beep {
		t.Fatalf("Load = %+v", cfg)
	}
	if !cfg.DesktopNotifications || !cfg.WatchSettings {
		t.Fatal("fields absent from the file should keep their defaults")
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := useConfigDir(t)
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte("listen_addr: 127.0.0.1:9000\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvAddr, "127.0.0.1:9100")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9100" {
		t.Fatalf("ListenAddr = %q, want env value", cfg.ListenAddr)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("SlogLevel = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	useConfigDir(t)
	t.Setenv(EnvStorage, "etcd")

	if _, err := Load(); !errors.Is(err, settings.ErrUnknownBackend) {
		t.Fatalf("Load error = %v, want ErrUnknownBackend", err)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	useConfigDir(t)
	cfg := Defaults()
	cfg.GlobalHotkey = false

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig returned error: %v", err)
	}
	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if *loaded != *cfg {
		t.Fatalf("LoadConfig = %+v, want %+v", loaded, cfg)
	}

	path, _ := GetConfigPath()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("config mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestParseLogLevel(t *testing.T) {
	for _, in := range []string{"debug", "INFO", "warn", "error"} {
		if _, err := ParseLogLevel(in); err != nil {
			t.Errorf("ParseLogLevel(%q) returned error: %v", in, err)
		}
	}
	if _, err := ParseLogLevel("chatty"); err == nil {
		t.Error("ParseLogLevel(chatty) should fail")
	}
}
