// Package terminal plays a game in an ANSI terminal: raw-mode handling,
// key decoding, board rendering and the input loop.
package terminal

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Terminal handles raw terminal mode.
type Terminal struct {
	in       *os.File
	oldState *term.State
	isRaw    bool
}

// NewTerminal wraps in, normally os.Stdin.
func NewTerminal(in *os.File) *Terminal {
	return &Terminal{in: in}
}

// IsTerminal reports whether the input is an interactive terminal.
func (t *Terminal) IsTerminal() bool {
	return term.IsTerminal(int(t.in.Fd()))
}

// EnterRaw puts the terminal into raw mode.
func (t *Terminal) EnterRaw() error {
	if t.isRaw {
		return fmt.Errorf("terminal already in raw mode")
	}
	oldState, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	t.oldState = oldState
	t.isRaw = true
	return nil
}

// ExitRaw restores the terminal to its original state.
// Safe to call even if not in raw mode.
func (t *Terminal) ExitRaw() error {
	if !t.isRaw || t.oldState == nil {
		return nil
	}
	if err := term.Restore(int(t.in.Fd()), t.oldState); err != nil {
		return fmt.Errorf("failed to restore terminal: %w", err)
	}
	t.isRaw = false
	t.oldState = nil
	return nil
}

// ANSI escape sequences
const (
	ClearScreen = "\033[2J"
	CursorHome  = "\033[H"
	CursorHide  = "\033[?25l"
	CursorShow  = "\033[?25h"

	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Reverse = "\033[7m"
	FgRed   = "\033[31m"
	FgWhite = "\033[97m"
)

// Background returns a 24-bit background colour sequence.
func Background(r, g, b uint8) string {
	return fmt.Sprintf("\033[48;2;%d;%d;%dm", r, g, b)
}
