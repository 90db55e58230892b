package lineedit

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirm shows prompt and reports whether the answer was y or Y. On a
// terminal a single keystroke answers; otherwise one line is read.
func (e *Editor) Confirm(prompt string) (ok bool, err error) {
	e.draw(prompt)
	restore, err := e.term.MakeRaw()
	if errors.Is(err, ErrNotTerminal) {
		return e.confirmLine()
	}
	if err != nil {
		return false, fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		if rerr := restore(); rerr != nil && err == nil {
			err = fmt.Errorf("restore terminal: %w", rerr)
		}
	}()

	chunk := make([]byte, 16)
	for {
		n, rerr := e.term.Read(chunk)
		if n == 0 && rerr != nil {
			e.draw("\r\n")
			if errors.Is(rerr, io.EOF) {
				return false, nil
			}
			return false, fmt.Errorf("read terminal: %w", rerr)
		}
		keys := e.dec.decode(chunk[:n])
		if len(keys) == 0 {
			continue
		}
		k := keys[0]
		if k.Kind == KeyRune {
			e.draw(string(k.Rune))
		}
		e.draw("\r\n")
		switch k.Kind {
		case KeyCtrlC:
			return false, ErrInterrupted
		case KeyRune:
			return k.Rune == 'y' || k.Rune == 'Y', nil
		}
		return false, nil
	}
}

func (e *Editor) confirmLine() (bool, error) {
	if e.lines == nil {
		e.lines = bufio.NewReader(e.term)
	}
	line, err := e.lines.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	e.draw("\n")
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}
