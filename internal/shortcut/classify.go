package shortcut

// Reason names the rule that decided a classification.
type Reason string

const (
	ReasonEmpty        Reason = "empty"
	ReasonWhitelisted  Reason = "whitelisted"
	ReasonBareSpecial  Reason = "bare function or escape key"
	ReasonPlainKey     Reason = "plain key"
	ReasonModifier     Reason = "cmd, ctrl or alt modifier"
	ReasonShiftFuncKey Reason = "shift with function key"
	ReasonOther        Reason = "no blocking rule"
)

// Decision is the outcome of classifying one canonical shortcut.
type Decision struct {
	Block  bool
	Reason Reason
}

// Decide classifies canonical against wl. Rules are evaluated in order and
// the first match wins: the whitelist overrides every blocking rule, and
// unmodified keys other than function keys and escape are never blocked.
func Decide(canonical string, wl Whitelist) Decision {
	if canonical == "" {
		return Decision{Reason: ReasonEmpty}
	}
	if wl.Contains(canonical) {
		return Decision{Reason: ReasonWhitelisted}
	}

	c := splitCombo(canonical)
	if c.Mods == ModNone {
		if IsFunctionKey(c.Key) || c.Key == "escape" {
			return Decision{Block: true, Reason: ReasonBareSpecial}
		}
		return Decision{Reason: ReasonPlainKey}
	}
	if c.Mods.Any(ModCmd | ModCtrl | ModAlt) {
		return Decision{Block: true, Reason: ReasonModifier}
	}
	if c.Mods.Has(ModShift) && IsFunctionKey(c.Key) {
		return Decision{Block: true, Reason: ReasonShiftFuncKey}
	}
	return Decision{Reason: ReasonOther}
}

// ShouldBlock reports whether canonical should be suppressed while blocking
// is active.
func ShouldBlock(canonical string, wl Whitelist) bool {
	return Decide(canonical, wl).Block
}
