package shortcut

import "strings"

var modifierSymbols = map[Modifier]string{
	ModCmd:   "⌘",
	ModCtrl:  "⌃",
	ModAlt:   "⌥",
	ModShift: "Shift",
}

var keyLabels = map[string]string{
	"space":     "Space",
	"tab":       "Tab",
	"enter":     "Enter",
	"escape":    "Escape",
	"backspace": "Backspace",
	"delete":    "Delete",
	"up":        "↑",
	"down":      "↓",
	"left":      "←",
	"right":     "→",
}

// Display renders a canonical shortcut for people, e.g. "⌘ + Shift + T".
func Display(canonical string) string {
	if canonical == "" {
		return ""
	}
	c := splitCombo(strings.ToLower(canonical))

	parts := make([]string, 0, 5)
	for _, mo := range modifierOrder {
		if c.Mods&mo.mod != 0 {
			parts = append(parts, modifierSymbols[mo.mod])
		}
	}
	if label, ok := keyLabels[c.Key]; ok {
		parts = append(parts, label)
	} else {
		parts = append(parts, strings.ToUpper(c.Key))
	}
	return strings.Join(parts, " + ")
}
