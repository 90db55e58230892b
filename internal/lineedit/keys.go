package lineedit

import (
	"strings"
	"unicode/utf8"
)

type KeyKind int

const (
	KeyUnknown KeyKind = iota
	KeyRune
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyWordLeft
	KeyWordRight
	KeyDeleteWord
	KeyTab
	KeyCtrlUp
	KeyEscape
	KeyCtrlC
	KeyCtrlD
)

type Key struct {
	Kind KeyKind
	Rune rune
}

// decoder turns raw terminal bytes into keys. A UTF-8 sequence split across
// reads is carried over to the next chunk.
type decoder struct {
	pending []byte
}

func (d *decoder) decode(chunk []byte) []Key {
	buf := append(d.pending, chunk...)
	d.pending = nil
	var keys []Key
	for len(buf) > 0 {
		b := buf[0]
		switch {
		case b == 0x1b:
			k, n := decodeEscape(buf)
			keys = append(keys, k)
			buf = buf[n:]
			continue
		case b == '\r' || b == '\n':
			keys = append(keys, Key{Kind: KeyEnter})
			if b == '\r' && len(buf) > 1 && buf[1] == '\n' {
				buf = buf[1:]
			}
		case b == 0x7f:
			keys = append(keys, Key{Kind: KeyBackspace})
		case b == 0x08 || b == 0x17:
			keys = append(keys, Key{Kind: KeyDeleteWord})
		case b == '\t':
			keys = append(keys, Key{Kind: KeyTab})
		case b == 0x03:
			keys = append(keys, Key{Kind: KeyCtrlC})
		case b == 0x04:
			keys = append(keys, Key{Kind: KeyCtrlD})
		case b < 0x20:
			keys = append(keys, Key{Kind: KeyUnknown})
		default:
			if !utf8.FullRune(buf) {
				d.pending = append([]byte(nil), buf...)
				return keys
			}
			r, n := utf8.DecodeRune(buf)
			if r == utf8.RuneError && n <= 1 {
				keys = append(keys, Key{Kind: KeyUnknown})
			} else {
				keys = append(keys, Key{Kind: KeyRune, Rune: r})
			}
			buf = buf[n:]
			continue
		}
		buf = buf[1:]
	}
	return keys
}

// decodeEscape reads one key starting at an ESC byte and reports how many
// bytes it consumed.
func decodeEscape(buf []byte) (Key, int) {
	if len(buf) == 1 {
		return Key{Kind: KeyEscape}, 1
	}
	switch buf[1] {
	case '[':
		return decodeCSI(buf)
	case 'O':
		if len(buf) < 3 {
			return Key{Kind: KeyUnknown}, len(buf)
		}
		return Key{Kind: finalKey(buf[2], "")}, 3
	case 'b':
		return Key{Kind: KeyWordLeft}, 2
	case 'f':
		return Key{Kind: KeyWordRight}, 2
	case 0x7f:
		return Key{Kind: KeyDeleteWord}, 2
	}
	return Key{Kind: KeyEscape}, 1
}

func decodeCSI(buf []byte) (Key, int) {
	for i := 2; i < len(buf); i++ {
		c := buf[i]
		if c >= 0x40 && c <= 0x7e {
			return Key{Kind: finalKey(c, string(buf[2:i]))}, i + 1
		}
		if (c < '0' || c > '9') && c != ';' {
			return Key{Kind: KeyUnknown}, i + 1
		}
	}
	return Key{Kind: KeyUnknown}, len(buf)
}

func finalKey(final byte, params string) KeyKind {
	fields := strings.Split(params, ";")
	modified := false
	if len(fields) > 1 {
		switch fields[1] {
		case "3", "5":
			modified = true
		}
	}
	switch final {
	case 'A':
		if modified {
			return KeyCtrlUp
		}
	case 'C':
		if modified {
			return KeyWordRight
		}
		return KeyRight
	case 'D':
		if modified {
			return KeyWordLeft
		}
		return KeyLeft
	case 'H':
		return KeyHome
	case 'F':
		return KeyEnd
	case '~':
		switch fields[0] {
		case "1", "7":
			return KeyHome
		case "4", "8":
			return KeyEnd
		case "3":
			return KeyDelete
		}
	}
	return KeyUnknown
}
