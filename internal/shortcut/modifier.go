package shortcut

// Modifier is a bitmask of the modifier keys that can prefix a shortcut.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModCmd   Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModShift
)

// modifierOrder is the fixed token order of a canonical shortcut string.
var modifierOrder = []struct {
	mod   Modifier
	token string
}{
	{ModCmd, "cmd"},
	{ModCtrl, "ctrl"},
	{ModAlt, "alt"},
	{ModShift, "shift"},
}

// Has reports whether all bits of m2 are set in m.
func (m Modifier) Has(m2 Modifier) bool {
	return m&m2 == m2 && m2 != ModNone
}

// Any reports whether any bit of m2 is set in m.
func (m Modifier) Any(m2 Modifier) bool {
	return m&m2 != 0
}

// Tokens returns the canonical tokens of the set modifiers in fixed order.
func (m Modifier) Tokens() []string {
	tokens := make([]string, 0, len(modifierOrder))
	for _, mo := range modifierOrder {
		if m&mo.mod != 0 {
			tokens = append(tokens, mo.token)
		}
	}
	return tokens
}

// modifierAliases maps user-entered modifier names to canonical bits.
var modifierAliases = map[string]Modifier{
	"cmd":     ModCmd,
	"command": ModCmd,
	"meta":    ModCmd,
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
}
