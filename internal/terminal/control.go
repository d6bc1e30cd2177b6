package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Control writes ANSI cursor sequences to an output stream
type Control struct {
	out      io.Writer
	terminal bool

	mu sync.Mutex
}

// NewControl creates a control for stdout
func NewControl() *Control {
	return NewControlFor(os.Stdout, isTerminal(os.Stdout))
}

// NewControlFor creates a control for out. When terminal is false, in-place
// updates fall back to plain lines.
func NewControlFor(out io.Writer, terminal bool) *Control {
	return &Control{out: out, terminal: terminal}
}

// IsTerminal reports whether output goes to a terminal
func (c *Control) IsTerminal() bool {
	return c.terminal
}

// moveCursorUp moves the cursor up by the specified number of lines
func (c *Control) moveCursorUp(lines int) {
	if lines <= 0 {
		return
	}
	fmt.Fprintf(c.out, "\033[%dA", lines)
}

// clearLine clears the current line and returns to column 1
func (c *Control) clearLine() {
	fmt.Fprint(c.out, "\033[2K\r")
}

// UpdateInPlace rewrites the last len(lines) lines.
// isFirstUpdate must be true the first time a block of lines is printed.
func (c *Control) UpdateInPlace(lines []string, isFirstUpdate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.terminal {
		// Piped output: just print normally
		for _, line := range lines {
			fmt.Fprintln(c.out, line)
		}
		return
	}

	if !isFirstUpdate {
		c.moveCursorUp(len(lines))
	}
	for _, line := range lines {
		if !isFirstUpdate {
			c.clearLine()
		}
		fmt.Fprintln(c.out, line)
	}
}

// ReplaceLast overwrites the last printed line with lines.
func (c *Control) ReplaceLast(lines []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.terminal {
		c.moveCursorUp(1)
		c.clearLine()
	}
	for _, line := range lines {
		fmt.Fprintln(c.out, line)
	}
}

// Println prints a line
func (c *Control) Println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// HideCursor hides the terminal cursor
func (c *Control) HideCursor() {
	if c.terminal {
		fmt.Fprint(c.out, "\033[?25l")
	}
}

// ShowCursor shows the terminal cursor
func (c *Control) ShowCursor() {
	if c.terminal {
		fmt.Fprint(c.out, "\033[?25h")
	}
}

func isTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	// On Unix-like systems, check if it's a character device
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
