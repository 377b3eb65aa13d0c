// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package terminal renders the upload display and notices on a terminal.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gookit/color"
	"golang.org/x/term"
)

const (
	// Drop target colours: highlighted while a file hovers, idle otherwise.
	colorActive = "#76c7c0"
	colorIdle   = "#d1d8e0"

	barWidth = 20
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return isTerminal(int(f.Fd()))
}

// Terminal implements the controller's View and Notifier. When interactive,
// the progress bar is redrawn in place and validation notices wait for
// Enter; otherwise every update is written on its own line and nothing
// blocks.
type Terminal struct {
	mu          sync.Mutex
	out         io.Writer
	in          *bufio.Reader
	interactive bool
	barShown    bool
	lineOpen    bool // an in-place bar is drawn without a trailing newline
}

// New creates a Terminal writing to out and reading acknowledgements from in.
func New(out io.Writer, in io.Reader, interactive bool) *Terminal {
	return &Terminal{
		out:         out,
		in:          bufio.NewReader(in),
		interactive: interactive,
	}
}

// Highlight prints the drop target state.
func (t *Terminal) Highlight(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if on {
		fmt.Fprintln(t.out, color.HEX(colorActive).Sprint("[ drop target armed ]"))
		return
	}
	fmt.Fprintln(t.out, color.HEX(colorIdle).Sprint("[ drop target idle ]"))
}

// ShowFile prints the name of the file being uploaded.
func (t *Terminal) ShowFile(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "Selected file: %s\n", name)
}

// ShowProgress announces the upload and enables the progress bar.
func (t *Terminal) ShowProgress() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.barShown = true
	fmt.Fprintln(t.out, "Processing your file...")
}

// SetProgress draws the bar at value. It does nothing while the bar is
// hidden. Interactive output ends the line once value reaches 100.
func (t *Terminal) SetProgress(value int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.barShown {
		return
	}
	if t.interactive {
		fmt.Fprint(t.out, "\r"+Bar(value))
		t.lineOpen = value < 100
		if !t.lineOpen {
			fmt.Fprintln(t.out)
		}
		return
	}
	fmt.Fprintln(t.out, Bar(value))
}

// HideProgress clears an in-place bar and disables further updates.
func (t *Terminal) HideProgress() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.barShown && t.interactive {
		fmt.Fprint(t.out, "\r\033[K")
	}
	t.barShown = false
	t.lineOpen = false
}

// Reject prints the validation notice. On an interactive terminal it then
// waits for the user to press Enter.
func (t *Terminal) Reject(filename, notice string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s %s (%s)\n", color.Yellow.Sprint("!"), notice, filename)
	if !t.interactive {
		return
	}
	fmt.Fprint(t.out, "Press Enter to continue...")
	t.in.ReadString('\n')
}

// Failure prints the non-blocking failure notice on its own line.
func (t *Terminal) Failure(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lineOpen {
		fmt.Fprintln(t.out)
		t.lineOpen = false
	}
	fmt.Fprintln(t.out, color.Red.Sprint("Processing failed: "+message))
}

// Bar renders value as a fixed-width progress bar with a percentage.
func Bar(value int) string {
	value = max(0, min(value, 100))
	filled := value * barWidth / 100
	return fmt.Sprintf("[%s%s] %3d%%",
		strings.Repeat("#", filled), strings.Repeat(" ", barWidth-filled), value)
}
