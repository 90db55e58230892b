package lineedit

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// StdTerminal reads keys from stdin and draws on stdout.
type StdTerminal struct {
	in  *os.File
	out *os.File
}

func Std() *StdTerminal {
	return &StdTerminal{in: os.Stdin, out: os.Stdout}
}

func (t *StdTerminal) Read(p []byte) (int, error)  { return t.in.Read(p) }
func (t *StdTerminal) Write(p []byte) (int, error) { return t.out.Write(p) }

// Interactive reports whether stdin is a terminal.
func (t *StdTerminal) Interactive() bool {
	fd := t.in.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (t *StdTerminal) MakeRaw() (func() error, error) {
	if !t.Interactive() {
		return nil, ErrNotTerminal
	}
	fd := int(t.in.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("set raw mode: %w", err)
	}
	return func() error { return term.Restore(fd, old) }, nil
}

// Width returns the column count of stdout, or 0 when it is not a terminal.
func (t *StdTerminal) Width() int {
	w, _, err := term.GetSize(int(t.out.Fd()))
	if err != nil || w <= 0 {
		return 0
	}
	return w
}
