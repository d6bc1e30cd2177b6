package shortcut

import (
	"errors"
	"fmt"
	"strings"
)

// maxKeyLen bounds the length of a user-entered key token.
const maxKeyLen = 20

// ErrInvalidShortcut is returned when a string cannot be read as a shortcut.
var ErrInvalidShortcut = errors.New("invalid shortcut")

// Combo is a decoded shortcut: a modifier set plus one key token.
// The zero value is the absent shortcut.
type Combo struct {
	Mods Modifier
	Key  string
}

// IsZero reports whether c has no key and therefore no canonical form.
func (c Combo) IsZero() bool {
	return c.Key == ""
}

// String returns the canonical form of c, or "" if c has no key.
func (c Combo) String() string {
	if c.Key == "" {
		return ""
	}
	return strings.Join(append(c.Mods.Tokens(), c.Key), "+")
}

// splitCombo peels modifier tokens off the front of s in any order.
// Whatever remains is the key, so "shift++" yields shift and "+".
func splitCombo(s string) Combo {
	var c Combo
	rest := s
	for {
		matched := false
		for _, mo := range modifierOrder {
			prefix := mo.token + "+"
			if len(rest) > len(prefix) && strings.HasPrefix(rest, prefix) {
				c.Mods |= mo.mod
				rest = rest[len(prefix):]
				matched = true
				break
			}
		}
		if !matched {
			break
		}
	}
	c.Key = rest
	return c
}

// Parse decodes a canonical shortcut string. It fails unless s is already in
// canonical form.
func Parse(s string) (Combo, error) {
	if s == "" {
		return Combo{}, fmt.Errorf("%w: empty", ErrInvalidShortcut)
	}
	c := splitCombo(s)
	if c.String() != s {
		return Combo{}, fmt.Errorf("%w: %q is not canonical", ErrInvalidShortcut, s)
	}
	return c, nil
}

// Canonicalize reads a user-entered shortcut such as "Shift + Cmd + T" or
// "control+esc" and returns its canonical form.
func Canonicalize(input string) (string, error) {
	s := strings.ToLower(strings.Join(strings.Fields(input), ""))
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidShortcut)
	}

	var body, key string
	switch {
	case s == "+":
		key = "+"
	case strings.HasSuffix(s, "++"):
		body, key = s[:len(s)-2], "+"
	default:
		if i := strings.LastIndex(s, "+"); i >= 0 {
			body, key = s[:i], s[i+1:]
		} else {
			key = s
		}
	}

	if key == "" {
		return "", fmt.Errorf("%w: %q has no key", ErrInvalidShortcut, input)
	}
	key = normalizeKey(key)
	if modifierKeys[key] || modifierAliases[key] != ModNone {
		return "", fmt.Errorf("%w: %q has only modifiers", ErrInvalidShortcut, input)
	}
	if len(key) > maxKeyLen {
		return "", fmt.Errorf("%w: key %q is longer than %d characters", ErrInvalidShortcut, key, maxKeyLen)
	}

	var mods Modifier
	if body != "" {
		for _, tok := range strings.Split(body, "+") {
			m, ok := modifierAliases[tok]
			if !ok {
				return "", fmt.Errorf("%w: unknown modifier %q", ErrInvalidShortcut, tok)
			}
			mods |= m
		}
	}

	return Combo{Mods: mods, Key: key}.String(), nil
}
