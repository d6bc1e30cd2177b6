// Package notify signals blocking state changes outside the browser: a
// desktop notification, a beep, and the action title for the current state.
package notify

import (
	"log/slog"
	"os/exec"
	"runtime"
	"sync"

	"github.com/gen2brain/beeep"
)

const appName = "HotkeyMuzzle"

// Action titles, one per state.
const (
	TitleActive   = "HotkeyMuzzle (ACTIVE - Click to disable)"
	TitleInactive = "HotkeyMuzzle (Click to enable)"
)

// Title returns the action title for a blocking state.
func Title(blocking bool) string {
	if blocking {
		return TitleActive
	}
	return TitleInactive
}

// Indicator reflects the blocking state on the desktop. Signals are sent
// from their own goroutine so that a slow notification daemon never delays
// the caller.
type Indicator struct {
	desktop bool
	sound   bool

	notifyFn func(title, message string, icon any) error
	beepFn   func(freq float64, duration int) error

	mu    sync.Mutex
	title string

	wg sync.WaitGroup
}

// NewIndicator returns an Indicator; desktop and sound enable the two
// signals independently.
func NewIndicator(desktop, sound bool) *Indicator {
	beeep.AppName = appName
	return &Indicator{
		desktop:  desktop,
		sound:    sound,
		notifyFn: beeep.Notify,
		beepFn:   beeep.Beep,
		title:    TitleInactive,
	}
}

// Title returns the title for the last reported state.
func (i *Indicator) Title() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.title
}

// OnStateChange records the new state and fires the enabled signals.
func (i *Indicator) OnStateChange(blocking bool) {
	title := Title(blocking)
	i.mu.Lock()
	i.title = title
	i.mu.Unlock()

	if !i.desktop && !i.sound {
		return
	}

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		if i.sound {
			i.playBeep(blocking)
		}
		if i.desktop {
			if err := i.notifyFn(title, stateMessage(blocking), ""); err != nil {
				slog.Debug("[NOTIFY] desktop notification failed", "error", err)
			}
		}
	}()
}

// Wait blocks until every signal in flight has been sent.
func (i *Indicator) Wait() {
	i.wg.Wait()
}

// playBeep plays a high short tone for off and a lower longer one for on
func (i *Indicator) playBeep(blocking bool) {
	var err error
	if blocking {
		err = i.beepFn(beeep.DefaultFreq, beeep.DefaultDuration/2)
	} else {
		err = i.beepFn(beeep.DefaultFreq*2, beeep.DefaultDuration/3)
	}
	if err == nil {
		return
	}

	slog.Debug("[NOTIFY] beep failed", "error", err)
	if runtime.GOOS == "darwin" {
		// Fallback to system beep command
		_ = exec.Command("osascript", "-e", "beep 1").Run()
	}
}

func stateMessage(blocking bool) string {
	if blocking {
		return "Shortcuts are blocked"
	}
	return "Shortcuts are enabled"
}
