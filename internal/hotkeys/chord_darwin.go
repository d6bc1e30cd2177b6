package hotkeys

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework Carbon
#include <CoreGraphics/CoreGraphics.h>
#include <Carbon/Carbon.h>

int checkToggleChord() {
    CGEventFlags flags = CGEventSourceFlagsState(kCGEventSourceStateHIDSystemState);
    int ctrlPressed = (flags & kCGEventFlagMaskControl) != 0;
    int altPressed = (flags & kCGEventFlagMaskAlternate) != 0;
    int cmdPressed = (flags & kCGEventFlagMaskCommand) != 0;
    return ctrlPressed && altPressed && cmdPressed;
}
*/
import "C"

const (
	chordSupported = true
	chordDisplay   = "Ctrl+Option+Cmd"
)

func detectChord() bool {
	return int(C.checkToggleChord()) == 1
}
