package stats

import (
	"fmt"
	"strings"

	"github.com/bytehow/HotkeyMuzzle/internal/shortcut"
)

const topShortcutLimit = 5

type StatsFormatter struct {
	topLimit int
}

func NewStatsFormatter() *StatsFormatter {
	return &StatsFormatter{topLimit: topShortcutLimit}
}

// FormatBlockedLine is the one-line daemon output for a suppressed shortcut.
func (sf *StatsFormatter) FormatBlockedLine(canonical string, today *DailyStats) string {
	line := fmt.Sprintf("🚫 Blocked %s", shortcut.Display(canonical))
	if today != nil && today.TotalBlocked > 0 {
		line += fmt.Sprintf(" (%d today)", today.TotalBlocked)
	}
	return line
}

func (sf *StatsFormatter) FormatTotalStats(total *TotalStats) string {
	if total.TotalBlocked == 0 && total.Activations == 0 {
		return "📊 No statistics yet. Turn blocking on to start counting blocked shortcuts!"
	}

	var b strings.Builder
	b.WriteString("📊 Total Statistics:\n")
	fmt.Fprintf(&b, "   Shortcuts blocked: %d\n", total.TotalBlocked)
	fmt.Fprintf(&b, "   Times activated: %d\n", total.Activations)
	fmt.Fprintf(&b, "   Active days: %d\n", total.ActiveDays)
	fmt.Fprintf(&b, "   Avg blocked/day: %d", total.AvgBlockedPerDay)

	if top := sf.FormatTopShortcuts(total.TopShortcuts); top != "" {
		b.WriteString("\n\n")
		b.WriteString(top)
	}
	return b.String()
}

func (sf *StatsFormatter) FormatTopShortcuts(counts []ShortcutCount) string {
	if len(counts) == 0 {
		return ""
	}
	if len(counts) > sf.topLimit {
		counts = counts[:sf.topLimit]
	}

	var b strings.Builder
	b.WriteString("🏆 Most blocked:")
	for i, c := range counts {
		fmt.Fprintf(&b, "\n   %d. %-20s %d", i+1, shortcut.Display(c.Shortcut), c.Count)
	}
	return b.String()
}

func (sf *StatsFormatter) FormatWeeklyStats(week []*DailyStats) string {
	if len(week) == 0 {
		return "📅 No weekly data available yet."
	}

	blocked, activations, activeDays := 0, 0, 0
	for _, day := range week {
		if day.TotalBlocked > 0 || day.Activations > 0 {
			activeDays++
			blocked += day.TotalBlocked
			activations += day.Activations
		}
	}

	if activeDays == 0 {
		return "📅 No activity this week yet."
	}

	stats := "📅 This Week:\n"
	stats += fmt.Sprintf("   Active days: %d/%d\n", activeDays, len(week))
	stats += fmt.Sprintf("   Shortcuts blocked: %d\n", blocked)
	stats += fmt.Sprintf("   Times activated: %d", activations)

	return stats
}
