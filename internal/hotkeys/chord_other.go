//go:build !darwin

package hotkeys

const (
	chordSupported = false
	chordDisplay   = "Ctrl+Alt+Super"
)

func detectChord() bool {
	return false
}
