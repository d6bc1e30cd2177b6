package stats

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestManager(t *testing.T, now time.Time) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	m.now = func() time.Time { return now }
	return m
}

func TestRecordBlockedCountsPerShortcut(t *testing.T) {
	m := newTestManager(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	for _, s := range []string{"cmd+k", "cmd+k", "ctrl+p"} {
		if err := m.RecordBlocked(s); err != nil {
			t.Fatalf("RecordBlocked(%q) returned error: %v", s, err)
		}
	}
	if err := m.RecordActivation(); err != nil {
		t.Fatalf("RecordActivation returned error: %v", err)
	}

	today, err := m.GetTodayStats()
	if err != nil {
		t.Fatalf("GetTodayStats returned error: %v", err)
	}
	if today.Date != "2026-03-02" || today.TotalBlocked != 3 || today.Activations != 1 {
		t.Fatalf("today = %+v", today)
	}
	if today.Blocked["cmd+k"] != 2 || today.Blocked["ctrl+p"] != 1 {
		t.Fatalf("per-shortcut counts = %v", today.Blocked)
	}
}

func TestConcurrentRecordsAreNotLost(t *testing.T) {
	m := newTestManager(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordBlocked("cmd+k")
		}()
	}
	wg.Wait()

	today, _ := m.GetTodayStats()
	if today.TotalBlocked != 20 {
		t.Fatalf("TotalBlocked = %d, want 20", today.TotalBlocked)
	}
}

func TestTotalsAcrossDays(t *testing.T) {
	m := newTestManager(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	m.RecordBlocked("cmd+k")
	m.RecordBlocked("ctrl+p")

	m.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	m.RecordBlocked("ctrl+p")
	m.RecordBlocked("ctrl+p")

	total, err := m.GetTotalStats()
	if err != nil {
		t.Fatalf("GetTotalStats returned error: %v", err)
	}
	if total.TotalBlocked != 4 || total.ActiveDays != 2 || total.AvgBlockedPerDay != 2 {
		t.Fatalf("total = %+v", total)
	}
	if len(total.TopShortcuts) != 2 || total.TopShortcuts[0].Shortcut != "ctrl+p" || total.TopShortcuts[0].Count != 3 {
		t.Fatalf("top shortcuts = %+v", total.TopShortcuts)
	}

	recent, err := m.GetRecentDays(7)
	if err != nil {
		t.Fatalf("GetRecentDays returned error: %v", err)
	}
	if len(recent) != 7 || recent[6].Date != "2026-03-02" {
		t.Fatalf("recent days = %d, last %q", len(recent), recent[len(recent)-1].Date)
	}
}

func TestCorruptDayIsSkippedInTotals(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, dailyStatsDir, "2026-01-01.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	m.RecordBlocked("cmd+k")

	total, err := m.GetTotalStats()
	if err != nil {
		t.Fatalf("GetTotalStats returned error: %v", err)
	}
	if total.TotalBlocked != 1 {
		t.Fatalf("TotalBlocked = %d, want 1", total.TotalBlocked)
	}
}

func TestClearAllStats(t *testing.T) {
	m := newTestManager(t, time.Now())
	m.RecordBlocked("cmd+k")

	if err := m.ClearAllStats(); err != nil {
		t.Fatalf("ClearAllStats returned error: %v", err)
	}
	total, _ := m.GetTotalStats()
	if total.TotalBlocked != 0 {
		t.Fatalf("TotalBlocked after clear = %d", total.TotalBlocked)
	}
}

func TestFormatter(t *testing.T) {
	sf := NewStatsFormatter()

	if got := sf.FormatTotalStats(&TotalStats{}); !strings.Contains(got, "No statistics yet") {
		t.Fatalf("empty totals = %q", got)
	}

	got := sf.FormatTotalStats(&TotalStats{
		TotalBlocked: 3,
		ActiveDays:   1,
		TopShortcuts: []ShortcutCount{{Shortcut: "cmd+shift+p", Count: 3}},
	})
	if !strings.Contains(got, "Shortcuts blocked: 3") || !strings.Contains(got, "⌘ + Shift + P") {
		t.Fatalf("totals = %q", got)
	}

	line := sf.FormatBlockedLine("ctrl+k", &DailyStats{TotalBlocked: 4})
	if line != "🚫 Blocked ⌃ + K (4 today)" {
		t.Fatalf("blocked line = %q", line)
	}

	if got := sf.FormatWeeklyStats([]*DailyStats{newDailyStats("2026-03-01")}); !strings.Contains(got, "No activity") {
		t.Fatalf("idle week = %q", got)
	}
}
