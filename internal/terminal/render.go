package terminal

import (
	"fmt"
	"strings"

	"github.com/robalobadob/nerdle/internal/game"
)

// Status lines shown once a game has ended.
const (
	WonMessage  = "YIPPIE"
	LostMessage = "GAME OVER"
)

// lineBreak is explicit because raw mode disables newline translation.
const lineBreak = "\r\n"

var (
	bgCorrect = Background(0x24, 0xB3, 0x00)
	bgWrong   = Background(0xB8, 0xA5, 0x00)
	bgMissing = Background(0x00, 0x00, 0x00)
)

// cellStyle returns the ANSI prefix for a cell in state s.
func cellStyle(s game.CellState) string {
	switch s {
	case game.StateCorrectSpot:
		return bgCorrect + FgWhite + Bold
	case game.StateWrongSpot:
		return bgWrong + FgWhite + Bold
	case game.StateNotInSolution:
		return bgMissing + FgWhite
	}
	return ""
}

// Frame renders b as one screen of text. The formula is revealed only after
// the game has ended.
func Frame(b game.Board, target game.Target) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%sEnter a formula resulting in %d%s%s%s", Bold, target.Result, Reset, lineBreak, lineBreak)

	for r, row := range b.Cells {
		sb.WriteString("  ")
		for c, cell := range row {
			ch := cell.Char
			if ch == "" {
				ch = "·"
			}
			style := cellStyle(cell.State)
			active := !b.Status.Terminal() && r == b.Cursor.Row && c == b.Cursor.Col
			if active {
				style += Reverse
			}
			sb.WriteString(style + " " + ch + " " + Reset)
		}
		sb.WriteString(lineBreak)
	}
	sb.WriteString(lineBreak)

	switch b.Status {
	case game.StatusWon:
		sb.WriteString(Bold + WonMessage + Reset + lineBreak)
	case game.StatusLost:
		fmt.Fprintf(&sb, "%s%s%s  (%s = %d)%s", Bold, LostMessage, Reset, target.Formula, target.Result, lineBreak)
	default:
		if b.Error != "" {
			sb.WriteString(FgRed + b.Error + Reset + lineBreak)
		} else {
			sb.WriteString(lineBreak)
		}
		sb.WriteString(Dim + "0-9 + - * /   Enter submits   Backspace deletes   Esc quits" + Reset + lineBreak)
	}
	return sb.String()
}
