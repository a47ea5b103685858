package terminal

import (
	"bufio"
	"io"

	"github.com/robalobadob/nerdle/internal/game"
)

// Key represents a keyboard input.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyCtrlC
	KeyCtrlD
	KeyRune // Regular character
)

// KeyEvent represents a key press event.
type KeyEvent struct {
	Key  Key
	Rune rune // Only valid when Key == KeyRune
}

// KeyReader decodes key presses from a raw terminal.
type KeyReader struct {
	reader *bufio.Reader
}

// NewKeyReader creates a KeyReader from the given io.Reader.
func NewKeyReader(r io.Reader) *KeyReader {
	return &KeyReader{reader: bufio.NewReaderSize(r, 64)}
}

// ReadKey blocks until a key is pressed.
func (k *KeyReader) ReadKey() (KeyEvent, error) {
	b, err := k.reader.ReadByte()
	if err != nil {
		return KeyEvent{}, err
	}

	switch b {
	case 0x03: // Ctrl+C
		return KeyEvent{Key: KeyCtrlC}, nil
	case 0x04: // Ctrl+D
		return KeyEvent{Key: KeyCtrlD}, nil
	case 0x0D, 0x0A: // CR, or LF from piped input
		return KeyEvent{Key: KeyEnter}, nil
	case 0x7F, 0x08: // DEL or BS
		return KeyEvent{Key: KeyBackspace}, nil
	case 0x1B:
		return k.readEscapeSequence()
	}
	if b >= 0x20 && b < 0x7F {
		return KeyEvent{Key: KeyRune, Rune: rune(b)}, nil
	}
	return KeyEvent{Key: KeyUnknown}, nil
}

// readEscapeSequence tells a lone Escape from a CSI/SS3 sequence.
// Terminals write a whole sequence at once, so a lone ESC has nothing buffered behind it.
func (k *KeyReader) readEscapeSequence() (KeyEvent, error) {
	if k.reader.Buffered() == 0 {
		return KeyEvent{Key: KeyEscape}, nil
	}
	b, err := k.reader.ReadByte()
	if err != nil {
		return KeyEvent{Key: KeyEscape}, nil
	}
	if b != '[' && b != 'O' {
		_ = k.reader.UnreadByte()
		return KeyEvent{Key: KeyEscape}, nil
	}

	// parameter bytes up to the final byte (0x40-0x7E)
	var params []byte
	for {
		c, err := k.reader.ReadByte()
		if err != nil {
			return KeyEvent{Key: KeyUnknown}, nil
		}
		if c >= 0x40 && c <= 0x7E {
			if c == '~' && string(params) == "3" {
				return KeyEvent{Key: KeyDelete}, nil
			}
			return KeyEvent{Key: KeyUnknown}, nil
		}
		params = append(params, c)
	}
}

// Token maps a key event to a controller token. quit is true for the keys
// that leave the game. An empty token means the key has no game meaning;
// runes are passed through and left to the controller's filter.
func Token(ev KeyEvent) (token string, quit bool) {
	switch ev.Key {
	case KeyEnter:
		return game.TokenEnter, false
	case KeyBackspace, KeyDelete:
		return game.TokenDelete, false
	case KeyCtrlC, KeyCtrlD, KeyEscape:
		return "", true
	case KeyRune:
		return string(ev.Rune), false
	}
	return "", false
}
