package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Storage struct {
	baseDir string
}

const dailyStatsDir = "daily"

func NewStorage(baseDir string) (*Storage, error) {
	dailyDir := filepath.Join(baseDir, dailyStatsDir)
	if err := os.MkdirAll(dailyDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	return &Storage{
		baseDir: baseDir,
	}, nil
}

func (s *Storage) dayPath(date string) string {
	return filepath.Join(s.baseDir, dailyStatsDir, fmt.Sprintf("%s.json", date))
}

// GetDailyStats returns the stats for date, empty if none were recorded.
func (s *Storage) GetDailyStats(date string) (*DailyStats, error) {
	data, err := os.ReadFile(s.dayPath(date))
	if os.IsNotExist(err) {
		return newDailyStats(date), nil
	}
	if err != nil {
		return nil, err
	}

	var day DailyStats
	if err := json.Unmarshal(data, &day); err != nil {
		return nil, fmt.Errorf("parse stats for %s: %w", date, err)
	}
	if day.Blocked == nil {
		day.Blocked = map[string]int{}
	}
	return &day, nil
}

func (s *Storage) SaveDailyStats(day *DailyStats) error {
	data, err := json.MarshalIndent(day, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.dayPath(day.Date), data, 0644)
}

// GetAllDailyStats returns every readable day in chronological order.
func (s *Storage) GetAllDailyStats() ([]*DailyStats, error) {
	dailyDir := filepath.Join(s.baseDir, dailyStatsDir)

	files, err := os.ReadDir(dailyDir)
	if err != nil {
		return []*DailyStats{}, nil
	}

	var fileNames []string
	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".json" {
			fileNames = append(fileNames, file.Name())
		}
	}

	// File names are dates, so lexical order is chronological
	sort.Strings(fileNames)

	var all []*DailyStats
	for _, fileName := range fileNames {
		date := fileName[:len(fileName)-len(".json")]
		day, err := s.GetDailyStats(date)
		if err != nil {
			continue // Skip problematic files
		}
		all = append(all, day)
	}

	return all, nil
}

func (s *Storage) ClearAllStats() error {
	dailyDir := filepath.Join(s.baseDir, dailyStatsDir)

	files, err := os.ReadDir(dailyDir)
	if err != nil {
		return nil // Directory doesn't exist, nothing to clear
	}

	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".json" {
			if err := os.Remove(filepath.Join(dailyDir, file.Name())); err != nil {
				return fmt.Errorf("failed to remove %s: %w", file.Name(), err)
			}
		}
	}

	return nil
}
