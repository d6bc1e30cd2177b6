// Package stats counts blocked shortcuts and activations per day.
package stats

import (
	"sort"
	"sync"
	"time"
)

const dateLayout = "2006-01-02"

type DailyStats struct {
	Date         string         `json:"date"`
	Blocked      map[string]int `json:"blocked"`
	TotalBlocked int            `json:"total_blocked"`
	Activations  int            `json:"activations"`
}

type ShortcutCount struct {
	Shortcut string `json:"shortcut"`
	Count    int    `json:"count"`
}

type TotalStats struct {
	TotalBlocked     int             `json:"total_blocked"`
	Activations      int             `json:"activations"`
	ActiveDays       int             `json:"active_days"`
	AvgBlockedPerDay int             `json:"avg_blocked_per_day"`
	TopShortcuts     []ShortcutCount `json:"top_shortcuts"`
}

// Manager records events into daily files. It is safe for concurrent use.
type Manager struct {
	storage *Storage
	now     func() time.Time

	mu sync.Mutex
}

func NewManager(storagePath string) (*Manager, error) {
	storage, err := NewStorage(storagePath)
	if err != nil {
		return nil, err
	}

	return &Manager{
		storage: storage,
		now:     time.Now,
	}, nil
}

// RecordBlocked counts one suppressed shortcut for today.
func (m *Manager) RecordBlocked(shortcut string) error {
	return m.update(func(day *DailyStats) {
		day.Blocked[shortcut]++
		day.TotalBlocked++
	})
}

// RecordActivation counts one switch of blocking to on.
func (m *Manager) RecordActivation() error {
	return m.update(func(day *DailyStats) {
		day.Activations++
	})
}

func (m *Manager) update(apply func(*DailyStats)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	date := m.now().Format(dateLayout)
	day, err := m.storage.GetDailyStats(date)
	if err != nil {
		// Start the day over rather than lose every later event.
		day = newDailyStats(date)
	}
	apply(day)
	return m.storage.SaveDailyStats(day)
}

func (m *Manager) GetTodayStats() (*DailyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storage.GetDailyStats(m.now().Format(dateLayout))
}

func (m *Manager) GetTotalStats() (*TotalStats, error) {
	m.mu.Lock()
	days, err := m.storage.GetAllDailyStats()
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return summarize(days), nil
}

func (m *Manager) GetRecentDays(days int) ([]*DailyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var recent []*DailyStats
	for i := days - 1; i >= 0; i-- {
		date := m.now().AddDate(0, 0, -i).Format(dateLayout)
		day, err := m.storage.GetDailyStats(date)
		if err != nil {
			continue // Skip problematic days
		}
		recent = append(recent, day)
	}
	return recent, nil
}

func (m *Manager) ClearAllStats() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storage.ClearAllStats()
}

func newDailyStats(date string) *DailyStats {
	return &DailyStats{Date: date, Blocked: map[string]int{}}
}

func summarize(days []*DailyStats) *TotalStats {
	total := &TotalStats{}
	counts := map[string]int{}

	for _, day := range days {
		if day.TotalBlocked > 0 || day.Activations > 0 {
			total.ActiveDays++
		}
		total.TotalBlocked += day.TotalBlocked
		total.Activations += day.Activations
		for shortcut, n := range day.Blocked {
			counts[shortcut] += n
		}
	}

	if total.ActiveDays > 0 {
		total.AvgBlockedPerDay = total.TotalBlocked / total.ActiveDays
	}
	total.TopShortcuts = topShortcuts(counts)
	return total
}

// topShortcuts orders counts by frequency, then by name.
func topShortcuts(counts map[string]int) []ShortcutCount {
	out := make([]ShortcutCount, 0, len(counts))
	for s, n := range counts {
		out = append(out, ShortcutCount{Shortcut: s, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Shortcut < out[j].Shortcut
	})
	return out
}
