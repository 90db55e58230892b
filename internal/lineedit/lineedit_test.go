package lineedit

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rusk/internal/dates"
)

// fakeTerm returns one chunk per Read and records raw mode transitions.
type fakeTerm struct {
	chunks   []string
	out      bytes.Buffer
	raw      int
	restored int
	notTTY   bool
}

func (f *fakeTerm) Read(p []byte) (int, error) {
	if len(f.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.chunks[0])
	f.chunks = f.chunks[1:]
	return n, nil
}

func (f *fakeTerm) Write(p []byte) (int, error) { return f.out.Write(p) }

func (f *fakeTerm) MakeRaw() (func() error, error) {
	if f.notTTY {
		return nil, ErrNotTerminal
	}
	f.raw++
	return func() error {
		f.restored++
		return nil
	}, nil
}

func keys(t *testing.T, in ...string) []Key {
	t.Helper()
	var d decoder
	var out []Key
	for _, c := range in {
		out = append(out, d.decode([]byte(c))...)
	}
	return out
}

func kinds(ks []Key) []KeyKind {
	out := make([]KeyKind, len(ks))
	for i, k := range ks {
		out[i] = k.Kind
	}
	return out
}

func TestDecodeControlKeys(t *testing.T) {
	got := kinds(keys(t, "\r", "\n", "\x7f", "\x08", "\x17", "\t", "\x03", "\x04", "\x1b"))
	assert.Equal(t, []KeyKind{
		KeyEnter, KeyEnter, KeyBackspace, KeyDeleteWord, KeyDeleteWord,
		KeyTab, KeyCtrlC, KeyCtrlD, KeyEscape,
	}, got)
}

func TestDecodeEscapeSequences(t *testing.T) {
	cases := map[string]KeyKind{
		"\x1b[D":    KeyLeft,
		"\x1b[C":    KeyRight,
		"\x1b[H":    KeyHome,
		"\x1b[F":    KeyEnd,
		"\x1b[1~":   KeyHome,
		"\x1b[4~":   KeyEnd,
		"\x1b[3~":   KeyDelete,
		"\x1b[1;5D": KeyWordLeft,
		"\x1b[1;5C": KeyWordRight,
		"\x1b[1;5A": KeyCtrlUp,
		"\x1b[A":    KeyUnknown,
		"\x1bOD":    KeyLeft,
		"\x1bOH":    KeyHome,
		"\x1bb":     KeyWordLeft,
		"\x1bf":     KeyWordRight,
	}
	for in, want := range cases {
		got := keys(t, in)
		require.Len(t, got, 1, "%q", in)
		assert.Equal(t, want, got[0].Kind, "%q", in)
	}
}

func TestDecodeRunesAcrossChunks(t *testing.T) {
	got := keys(t, "a\xc3", "\xa9b")
	require.Len(t, got, 3)
	assert.Equal(t, []rune{'a', 'é', 'b'}, []rune{got[0].Rune, got[1].Rune, got[2].Rune})
}

func TestJumpPrevWord(t *testing.T) {
	cases := []struct {
		s    string
		i    int
		want int
	}{
		{"hello world", 6, 0},
		{"hello world", 3, 0},
		{"hello world test", 12, 6},
		{"hello, world!", 10, 0},
		{"", 0, 0},
		{"snake_case-word", 15, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, jumpPrevWord(c.s, c.i), "%q at %d", c.s, c.i)
	}
}

func TestJumpNextWord(t *testing.T) {
	cases := []struct {
		s    string
		i    int
		want int
	}{
		{"hello world", 0, 6},
		{"hello, world!", 5, 7},
		{"hello world", 11, 11},
		{"hello world", 6, 11},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, jumpNextWord(c.s, c.i), "%q at %d", c.s, c.i)
	}
}

func TestBufferGraphemeBoundaries(t *testing.T) {
	b := buffer{}
	b.set("cafe\u0301")
	b.backspace()
	assert.Equal(t, "caf", b.text)
	assert.Equal(t, 3, b.cursor)

	b.set("日本")
	b.left()
	assert.Equal(t, 3, b.cursor)
	assert.Equal(t, 2, b.column())
	b.home()
	b.delete()
	assert.Equal(t, "本", b.text)
	b.right()
	assert.Equal(t, len("本"), b.cursor)
	b.right()
	assert.Equal(t, len("本"), b.cursor)
}

func TestGhostTypeJumpAccept(t *testing.T) {
	s := newSession(Options{Prefill: "hello world", Ghost: true})
	assert.True(t, s.ghost)
	assert.Empty(t, s.buf.text)

	_, err := s.handle(Key{Kind: KeyRune, Rune: 'x'})
	require.NoError(t, err)
	assert.Equal(t, "x", s.buf.text)
	assert.Equal(t, 1, s.buf.cursor)
	assert.False(t, s.ghost)

	_, err = s.handle(Key{Kind: KeyWordLeft})
	require.NoError(t, err)
	assert.Equal(t, 0, s.buf.cursor)

	_, err = s.handle(Key{Kind: KeyTab})
	require.NoError(t, err)
	assert.Equal(t, "hello world", s.buf.text)
	assert.Equal(t, len("hello world"), s.buf.cursor)
	assert.False(t, s.ghost)
}

func TestGhostSurvivesBackspaceAtStart(t *testing.T) {
	s := newSession(Options{Prefill: "keep", Ghost: true})
	_, err := s.handle(Key{Kind: KeyBackspace})
	require.NoError(t, err)
	assert.True(t, s.ghost)
	assert.Contains(t, s.line(), "keep")
}

func TestPrefillCursorPlacement(t *testing.T) {
	s := newSession(Options{Prefill: "abc"})
	assert.Equal(t, "abc", s.buf.text)
	assert.Equal(t, 0, s.buf.cursor)
	s = newSession(Options{Prefill: "abc", CursorAtEnd: true})
	assert.Equal(t, 3, s.buf.cursor)
}

func TestLineCursorColumn(t *testing.T) {
	s := newSession(Options{Prompt: "Edit: ", Prefill: "日本", CursorAtEnd: true})
	assert.Contains(t, s.line(), "\r\x1b[10C")
}

func TestReadLineSubmits(t *testing.T) {
	ft := &fakeTerm{chunks: []string{"ab", "\x1b[D", "X", "\r"}}
	res, err := New(ft).ReadLine(Options{Prompt: "> "})
	require.NoError(t, err)
	assert.Equal(t, "aXb", res.Text)
	assert.False(t, res.Skipped)
	assert.Equal(t, 1, ft.raw)
	assert.Equal(t, 1, ft.restored)
}

func TestReadLineGhostEnterReturnsEmpty(t *testing.T) {
	ft := &fakeTerm{chunks: []string{"\r"}}
	res, err := New(ft).ReadLine(Options{Prefill: "old", Ghost: true})
	require.NoError(t, err)
	assert.Empty(t, res.Text)
}

func TestReadLineExits(t *testing.T) {
	cases := map[string]*ExitError{
		"\x03": ErrInterrupted,
		"\x04": ErrEndOfInput,
		"\x1b": ErrCanceled,
	}
	for in, want := range cases {
		ft := &fakeTerm{chunks: []string{"typed", in}}
		_, err := New(ft).ReadLine(Options{})
		var exit *ExitError
		require.ErrorAs(t, err, &exit, "%q", in)
		assert.Equal(t, want.Code, exit.Code)
		assert.Same(t, want, exit)
		assert.Equal(t, 1, ft.restored, "raw mode restored after %q", in)
	}
}

func TestReadLineSkip(t *testing.T) {
	ft := &fakeTerm{chunks: []string{"x", "\x1b"}}
	res, err := New(ft).ReadLine(Options{AllowSkip: true})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, 1, ft.restored)
}

func TestReadLineEOFEndsInput(t *testing.T) {
	ft := &fakeTerm{}
	_, err := New(ft).ReadLine(Options{})
	assert.ErrorIs(t, err, ErrEndOfInput)
	assert.Equal(t, 1, ft.restored)
}

func TestReadLineValidatorRings(t *testing.T) {
	ft := &fakeTerm{chunks: []string{"bad", "\r", "\x17", "1/2/25", "\r"}}
	res, err := New(ft).ReadLine(Options{Validate: dates.Valid})
	require.NoError(t, err)
	assert.Equal(t, "1/2/25", res.Text)
	assert.Contains(t, ft.out.String(), "\a")
}

func TestReadLineNotTerminal(t *testing.T) {
	ft := &fakeTerm{notTTY: true}
	_, err := New(ft).ReadLine(Options{})
	assert.ErrorIs(t, err, ErrNotTerminal)
}

func TestConfirmKeystroke(t *testing.T) {
	for in, want := range map[string]bool{"y": true, "Y": true, "n": false, "\r": false, "yes": true} {
		ft := &fakeTerm{chunks: []string{in}}
		ok, err := New(ft).Confirm("Delete? [y/N]: ")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "%q", in)
		assert.Equal(t, 1, ft.restored)
		assert.Contains(t, ft.out.String(), "Delete? [y/N]: ")
	}
}

func TestConfirmInterrupt(t *testing.T) {
	ft := &fakeTerm{chunks: []string{"\x03"}}
	_, err := New(ft).Confirm("? ")
	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestConfirmLineMode(t *testing.T) {
	ft := &fakeTerm{notTTY: true, chunks: []string{"y\nn\n", "Y\n"}}
	ed := New(ft)
	var answers []bool
	for i := 0; i < 4; i++ {
		ok, err := ed.Confirm("? ")
		require.NoError(t, err)
		answers = append(answers, ok)
	}
	assert.Equal(t, []bool{true, false, true, false}, answers)
}
