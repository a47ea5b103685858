package terminal

import (
	"errors"
	"io"

	"github.com/robalobadob/nerdle/internal/game"
)

// Play runs g against key presses read from in, redrawing the board on out
// after every key. It returns when the game ends, the player quits or in is
// exhausted, reporting the status at that point.
func Play(in io.Reader, out io.Writer, g *game.Game) (game.Status, error) {
	keys := NewKeyReader(in)
	draw := func() error {
		_, err := io.WriteString(out, ClearScreen+CursorHome+Frame(g.Board(), g.Target))
		return err
	}

	if err := draw(); err != nil {
		return g.Status(), err
	}
	for !g.Status().Terminal() {
		ev, err := keys.ReadKey()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return g.Status(), err
		}
		tok, quit := Token(ev)
		if quit {
			break
		}
		if tok == "" {
			continue
		}
		if _, ok := g.Submit(tok); !ok {
			continue
		}
		if err := draw(); err != nil {
			return g.Status(), err
		}
	}
	return g.Status(), nil
}
