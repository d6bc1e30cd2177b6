package shortcut

import (
	"encoding/json"
	"sort"
)

// Whitelist is a set of canonical shortcuts that are never blocked.
// A nil Whitelist is empty and safe to read.
type Whitelist map[string]struct{}

// NewWhitelist returns a whitelist holding items. Duplicates collapse.
func NewWhitelist(items ...string) Whitelist {
	w := make(Whitelist, len(items))
	for _, item := range items {
		w[item] = struct{}{}
	}
	return w
}

// Contains reports whether canonical is whitelisted.
func (w Whitelist) Contains(canonical string) bool {
	_, ok := w[canonical]
	return ok
}

// Add inserts canonical and reports whether it was new.
func (w Whitelist) Add(canonical string) bool {
	if w.Contains(canonical) {
		return false
	}
	w[canonical] = struct{}{}
	return true
}

// Remove deletes canonical and reports whether it was present.
func (w Whitelist) Remove(canonical string) bool {
	if !w.Contains(canonical) {
		return false
	}
	delete(w, canonical)
	return true
}

// Len returns the number of entries.
func (w Whitelist) Len() int { return len(w) }

// Sorted returns the entries in display order.
func (w Whitelist) Sorted() []string {
	out := make([]string, 0, len(w))
	for item := range w {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (w Whitelist) Clone() Whitelist {
	return NewWhitelist(w.Sorted()...)
}

// Equal reports whether both sets hold the same entries.
func (w Whitelist) Equal(other Whitelist) bool {
	if len(w) != len(other) {
		return false
	}
	for item := range w {
		if !other.Contains(item) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the whitelist as a sorted array.
func (w Whitelist) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Sorted())
}

// UnmarshalJSON decodes an array of strings. null decodes to an empty set.
func (w *Whitelist) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*w = NewWhitelist(items...)
	return nil
}
