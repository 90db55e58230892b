package lineedit

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// buffer is the editable line. cursor is a byte offset that always sits on a
// grapheme cluster boundary.
type buffer struct {
	text   string
	cursor int
}

// boundaries returns the byte offsets of every cluster start plus len(s).
func boundaries(s string) []int {
	b := []int{0}
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		_, to := g.Positions()
		b = append(b, to)
	}
	return b
}

// boundaryIndex returns the index in b of the last boundary at or before i.
func boundaryIndex(b []int, i int) int {
	k := 0
	for k+1 < len(b) && b[k+1] <= i {
		k++
	}
	return k
}

func prevBoundary(s string, i int) int {
	b := boundaries(s)
	k := boundaryIndex(b, i)
	if b[k] < i || k == 0 {
		return b[k]
	}
	return b[k-1]
}

func nextBoundary(s string, i int) int {
	b := boundaries(s)
	k := boundaryIndex(b, i)
	if k+1 < len(b) {
		return b[k+1]
	}
	return len(s)
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}

// wordCluster reports whether cluster k of s (spanning b[k]..b[k+1]) is a
// word character.
func wordCluster(s string, b []int, k int) bool {
	r, _ := utf8.DecodeRuneInString(s[b[k]:b[k+1]])
	return isWordChar(r)
}

// jumpPrevWord moves back over word characters, then separators, then the
// word reached.
func jumpPrevWord(s string, i int) int {
	b := boundaries(s)
	k := boundaryIndex(b, i)
	for k > 0 && wordCluster(s, b, k-1) {
		k--
	}
	for k > 0 && !wordCluster(s, b, k-1) {
		k--
	}
	for k > 0 && wordCluster(s, b, k-1) {
		k--
	}
	return b[k]
}

// jumpNextWord moves forward over word characters and then separators.
func jumpNextWord(s string, i int) int {
	b := boundaries(s)
	n := len(b) - 1
	k := boundaryIndex(b, i)
	for k < n && wordCluster(s, b, k) {
		k++
	}
	for k < n && !wordCluster(s, b, k) {
		k++
	}
	return b[k]
}

func (b *buffer) insert(r rune) {
	s := string(r)
	b.text = b.text[:b.cursor] + s + b.text[b.cursor:]
	// a combining rune may merge into the previous cluster
	end := b.cursor + len(s)
	bs := boundaries(b.text)
	b.cursor = bs[boundaryIndex(bs, end)]
	if b.cursor < end {
		b.cursor = nextBoundary(b.text, b.cursor)
	}
}

func (b *buffer) backspace() {
	if b.cursor == 0 {
		return
	}
	start := prevBoundary(b.text, b.cursor)
	b.text = b.text[:start] + b.text[b.cursor:]
	b.cursor = start
}

func (b *buffer) delete() {
	if b.cursor >= len(b.text) {
		return
	}
	end := nextBoundary(b.text, b.cursor)
	b.text = b.text[:b.cursor] + b.text[end:]
}

func (b *buffer) left() {
	b.cursor = prevBoundary(b.text, b.cursor)
}

func (b *buffer) right() {
	b.cursor = nextBoundary(b.text, b.cursor)
}

func (b *buffer) home() { b.cursor = 0 }

func (b *buffer) end() { b.cursor = len(b.text) }

func (b *buffer) wordLeft() {
	b.cursor = jumpPrevWord(b.text, b.cursor)
}

func (b *buffer) wordRight() {
	b.cursor = jumpNextWord(b.text, b.cursor)
}

func (b *buffer) deleteWord() {
	start := jumpPrevWord(b.text, b.cursor)
	b.text = b.text[:start] + b.text[b.cursor:]
	b.cursor = start
}

func (b *buffer) set(s string) {
	b.text = s
	b.cursor = len(s)
}

// column returns the display width of the text left of the cursor.
func (b *buffer) column() int {
	return uniseg.StringWidth(b.text[:b.cursor])
}
