package shortcut

import "strings"

// keyRenames maps lower-cased key identifiers to their canonical token.
// Keys missing from the table pass through unchanged.
var keyRenames = map[string]string{
	" ":          "space",
	"spacebar":   "space",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
	"return":     "enter",
	"esc":        "escape",
}

// modifierKeys are key identifiers that denote a modifier themselves.
var modifierKeys = map[string]bool{
	"meta":    true,
	"control": true,
	"alt":     true,
	"shift":   true,
}

// normalizeKey lower-cases a raw key identifier and applies the rename table.
func normalizeKey(raw string) string {
	key := strings.ToLower(raw)
	if renamed, ok := keyRenames[key]; ok {
		return renamed
	}
	return key
}

// Normalize returns the canonical shortcut string for ev, or "" when the
// event carries no non-modifier key.
func Normalize(ev Event) string {
	return NormalizeCombo(ev).String()
}

// NormalizeCombo is Normalize without the final serialization.
func NormalizeCombo(ev Event) Combo {
	key := normalizeKey(ev.Key)
	if modifierKeys[key] {
		key = ""
	}
	return Combo{Mods: ev.Modifiers(), Key: key}
}

// IsFunctionKey reports whether key is "f" followed by one or more digits.
func IsFunctionKey(key string) bool {
	if len(key) < 2 || key[0] != 'f' {
		return false
	}
	for i := 1; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return false
		}
	}
	return true
}
