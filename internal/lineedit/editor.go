// Package lineedit is a single-line raw-mode editor with an optional ghost
// suggestion, plus a one-keystroke confirmation prompt.
package lineedit

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// ExitError asks the caller to end the process with Code. Raw mode has
// already been restored when it is returned.
type ExitError struct {
	Code   int
	Notice string
}

func (e *ExitError) Error() string {
	if e.Notice != "" {
		return e.Notice
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

var (
	ErrInterrupted = &ExitError{Code: 130}
	ErrEndOfInput  = &ExitError{Code: 0}
	ErrCanceled    = &ExitError{Code: 0, Notice: "nothing changed"}

	ErrNotTerminal = errors.New("standard input is not a terminal")
)

// Terminal is the device the editor draws on. MakeRaw switches input to raw
// mode and returns the function that undoes it.
type Terminal interface {
	io.Reader
	io.Writer
	MakeRaw() (restore func() error, err error)
}

type Options struct {
	Prompt  string
	Prefill string
	// Ghost shows Prefill as a suggestion instead of loading it into the buffer.
	Ghost bool
	// CursorAtEnd places the cursor after a loaded Prefill.
	CursorAtEnd bool
	// Validate, when set, is applied to the trimmed buffer.
	Validate func(string) bool
	// AllowSkip makes Escape return a skipped result instead of ErrCanceled.
	AllowSkip bool
}

type Result struct {
	Text    string
	Skipped bool
}

type Editor struct {
	term  Terminal
	dec   decoder
	lines *bufio.Reader
}

func New(t Terminal) *Editor {
	return &Editor{term: t}
}

type outcome int

const (
	outcomeNone outcome = iota
	outcomeBell
	outcomeSubmit
	outcomeSkip
)

// session is the state of one ReadLine call.
type session struct {
	opts  Options
	buf   buffer
	ghost bool
}

func newSession(opts Options) *session {
	s := &session{opts: opts}
	if opts.Ghost {
		s.ghost = opts.Prefill != ""
		return s
	}
	s.buf.text = opts.Prefill
	if opts.CursorAtEnd {
		s.buf.cursor = len(opts.Prefill)
	}
	return s
}

func (s *session) valid() bool {
	trimmed := strings.TrimSpace(s.buf.text)
	return trimmed != "" && s.opts.Validate(trimmed)
}

func (s *session) handle(k Key) (outcome, error) {
	switch k.Kind {
	case KeyRune:
		if s.ghost {
			s.buf.set("")
			s.ghost = false
		}
		s.buf.insert(k.Rune)
	case KeyBackspace:
		s.buf.backspace()
	case KeyDelete:
		s.buf.delete()
	case KeyLeft:
		s.buf.left()
	case KeyRight:
		s.buf.right()
	case KeyHome:
		s.buf.home()
	case KeyEnd:
		s.buf.end()
	case KeyWordLeft:
		s.buf.wordLeft()
	case KeyWordRight:
		s.buf.wordRight()
	case KeyDeleteWord:
		s.buf.deleteWord()
	case KeyTab, KeyCtrlUp:
		s.buf.set(s.opts.Prefill)
		s.ghost = false
	case KeyEnter:
		if s.opts.Validate != nil && strings.TrimSpace(s.buf.text) != "" && !s.valid() {
			return outcomeBell, nil
		}
		return outcomeSubmit, nil
	case KeyEscape:
		if s.opts.AllowSkip {
			return outcomeSkip, nil
		}
		return outcomeNone, ErrCanceled
	case KeyCtrlC:
		return outcomeNone, ErrInterrupted
	case KeyCtrlD:
		return outcomeNone, ErrEndOfInput
	}
	return outcomeNone, nil
}

// line renders the prompt, buffer and ghost, then moves the cursor into place.
func (s *session) line() string {
	var sb strings.Builder
	sb.WriteString("\r\x1b[2K")
	sb.WriteString(s.opts.Prompt)
	switch {
	case s.opts.Validate == nil:
		sb.WriteString(s.buf.text)
	case s.valid():
		sb.WriteString(text.FgGreen.Sprint(s.buf.text))
	default:
		sb.WriteString(text.FgRed.Sprint(s.buf.text))
	}
	if s.ghost {
		sb.WriteString(text.Faint.Sprint(s.opts.Prefill))
	}
	sb.WriteString("\r")
	if col := text.RuneWidthWithoutEscSequences(s.opts.Prompt) + s.buf.column(); col > 0 {
		fmt.Fprintf(&sb, "\x1b[%dC", col)
	}
	return sb.String()
}

// ReadLine edits one line in raw mode. Raw mode is restored on every return.
func (e *Editor) ReadLine(opts Options) (res Result, err error) {
	restore, err := e.term.MakeRaw()
	if err != nil {
		return Result{}, fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		if rerr := restore(); rerr != nil && err == nil {
			err = fmt.Errorf("restore terminal: %w", rerr)
		}
	}()

	s := newSession(opts)
	e.draw(s.line())
	chunk := make([]byte, 256)
	for {
		n, rerr := e.term.Read(chunk)
		if n == 0 && rerr != nil {
			e.draw("\r\n")
			if errors.Is(rerr, io.EOF) {
				return Result{}, ErrEndOfInput
			}
			return Result{}, fmt.Errorf("read terminal: %w", rerr)
		}
		for _, k := range e.dec.decode(chunk[:n]) {
			out, herr := s.handle(k)
			if herr != nil {
				e.draw("\r\n")
				return Result{}, herr
			}
			switch out {
			case outcomeBell:
				e.draw("\a")
			case outcomeSubmit:
				s.ghost = false
				e.draw(s.line() + "\r\n")
				return Result{Text: s.buf.text}, nil
			case outcomeSkip:
				e.draw("\r\n")
				return Result{Skipped: true}, nil
			}
		}
		e.draw(s.line())
	}
}

func (e *Editor) draw(s string) {
	_, _ = io.WriteString(e.term, s)
}
