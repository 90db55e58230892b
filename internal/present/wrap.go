package present

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Wrap splits s on whitespace and packs the words into lines no wider than
// width. A word wider than width is cut into chunks of exactly width
// columns, the last one possibly shorter.
func Wrap(s string, width int) []string {
	if width < 1 {
		width = 1
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	cur, curW := "", 0
	for _, w := range words {
		ww := uniseg.StringWidth(w)
		switch {
		case cur == "" && ww <= width:
			cur, curW = w, ww
		case cur != "" && curW+1+ww <= width:
			cur, curW = cur+" "+w, curW+1+ww
		default:
			if cur != "" {
				lines = append(lines, cur)
			}
			chunks := chunk(w, width)
			lines = append(lines, chunks[:len(chunks)-1]...)
			cur = chunks[len(chunks)-1]
			curW = uniseg.StringWidth(cur)
		}
	}
	return append(lines, cur)
}

// chunk cuts w into pieces of at most width columns along grapheme
// cluster boundaries.
func chunk(w string, width int) []string {
	var out []string
	var b strings.Builder
	bw := 0
	g := uniseg.NewGraphemes(w)
	for g.Next() {
		c := g.Str()
		cw := g.Width()
		if bw > 0 && bw+cw > width {
			out = append(out, b.String())
			b.Reset()
			bw = 0
		}
		b.WriteString(c)
		bw += cw
	}
	return append(out, b.String())
}

// MaxWidth returns the room left for text: the terminal width capped at
// maxWidth, minus both margins. A terminal width of 0 means unknown.
func MaxWidth(termWidth, maxWidth, left, right int) int {
	w := maxWidth
	if termWidth > 0 && termWidth < w {
		w = termWidth
	}
	w -= left + right
	if w < 1 {
		return 1
	}
	return w
}
