// Package shortcut turns raw keyboard events into canonical shortcut strings
// and decides whether a shortcut should be suppressed.
//
// # Canonical form
//
// A canonical shortcut is zero or more modifier tokens in the fixed order
// cmd, ctrl, alt, shift followed by a single lower-case key token, joined
// with "+":
//
//	cmd+a
//	ctrl+shift+t
//	shift+f5
//	up
//
// A press of modifier keys alone has no canonical form; Normalize returns
// the empty string for it and ShouldBlock never blocks the empty string.
//
// Everything in this package is pure and safe for concurrent use.
package shortcut
