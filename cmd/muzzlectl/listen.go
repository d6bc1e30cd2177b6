package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bytehow/HotkeyMuzzle/internal/hub"
	"github.com/bytehow/HotkeyMuzzle/internal/listener"
	"github.com/bytehow/HotkeyMuzzle/internal/protocol"
	"github.com/bytehow/HotkeyMuzzle/internal/shortcut"
	"github.com/bytehow/HotkeyMuzzle/internal/terminal"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Act as a tab: read key presses from stdin and report what is blocked",
	Long: `Act as a tab connected to the daemon.

Each input line is one key press, written like a whitelist entry
(cmd+k, shift+f5, escape). The line is checked against the current
blocking state and whitelist, exactly as a document listener would,
and toasts pushed by the daemon are rendered in the terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runListen(ctx, os.Stdin, os.Stdout)
	},
}

// pushForwarder hands pushes to the listener once it exists. The client
// needs a push callback before the listener can be built around it.
type pushForwarder struct {
	ready chan struct{}
	l     *listener.Listener
}

func (f *pushForwarder) push(msg protocol.Message) {
	<-f.ready
	if resp := f.l.HandleMessage(msg); !resp.Success {
		fmt.Fprintf(os.Stderr, "⚠️  Ignored %s: %s\n", msg.Type, resp.Error)
	}
}

func runListen(ctx context.Context, in io.Reader, out io.Writer) error {
	fwd := &pushForwarder{ready: make(chan struct{})}

	c, err := hub.Dial(ctx, flagAddr, hub.RoleTab, fwd.push)
	if err != nil {
		return daemonUnreachable(err)
	}
	defer c.Close()

	// Toasts arrive on the client goroutine; all output goes through control.
	control := terminal.NewControlFor(out, false)
	toasts := terminal.NewToastRenderer(control)
	defer toasts.Close()

	l := listener.New(c, toasts)
	fwd.l = l
	close(fwd.ready)
	defer l.Close()

	l.Attach(ctx)
	control.Println(fmt.Sprintf("🗂  Connected as a tab (%s)", stateLine(l.Blocking())))
	control.Println("⌨️  Type a shortcut per line, e.g. cmd+k. Ctrl+D to quit.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.Done():
			return fmt.Errorf("daemon closed the connection")
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			ev, err := parseKeyPress(line)
			if err != nil {
				control.Println(fmt.Sprintf("❌ %v", err))
				continue
			}
			suppressed := l.KeyDown(ev, nil)
			l.KeyUp(ev)
			control.Println(describeKeyPress(ev, suppressed))
		}
	}
}

// parseKeyPress reads a shortcut written like a whitelist entry into the
// key event a document would report for it.
func parseKeyPress(input string) (shortcut.Event, error) {
	canonical, err := shortcut.Canonicalize(input)
	if err != nil {
		return shortcut.Event{}, err
	}
	c, err := shortcut.Parse(canonical)
	if err != nil {
		return shortcut.Event{}, err
	}
	return shortcut.Event{
		Meta:  c.Mods.Any(shortcut.ModCmd),
		Ctrl:  c.Mods.Any(shortcut.ModCtrl),
		Alt:   c.Mods.Any(shortcut.ModAlt),
		Shift: c.Mods.Any(shortcut.ModShift),
		Key:   c.Key,
	}, nil
}

func describeKeyPress(ev shortcut.Event, suppressed bool) string {
	display := shortcut.Display(shortcut.Normalize(ev))
	if suppressed {
		return fmt.Sprintf("⛔ %s suppressed", display)
	}
	return fmt.Sprintf("➡️  %s passed through", display)
}
