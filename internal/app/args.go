package app

import (
	"strconv"
	"strings"

	"rusk/internal/dates"
)

// parseID reads one task id. Ids are 8-bit; 0 is accepted and simply never found.
func parseID(s string) (int, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// idToken parses a single integer or a comma-separated list. Empty and
// invalid parts of a list are dropped; a list with no valid part is not an
// id token.
func idToken(tok string) ([]int, bool) {
	if !strings.Contains(tok, ",") {
		id, ok := parseID(tok)
		if !ok {
			return nil, false
		}
		return []int{id}, true
	}
	var ids []int
	for _, part := range strings.Split(tok, ",") {
		if id, ok := parseID(part); ok {
			ids = append(ids, id)
		}
	}
	return ids, len(ids) > 0
}

// ParseIDs collects ids from every token, in order. Tokens that hold no id
// are ignored.
func ParseIDs(args []string) []int {
	var ids []int
	for _, tok := range args {
		if got, ok := idToken(tok); ok {
			ids = append(ids, got...)
		}
	}
	return ids
}

// SplitEditArgs consumes leading id tokens; everything from the first other
// token on is the replacement text.
func SplitEditArgs(args []string) (ids []int, text []string) {
	for i, tok := range args {
		got, ok := idToken(tok)
		if !ok {
			return ids, args[i:]
		}
		ids = append(ids, got...)
	}
	return ids, nil
}

// TakeDate finds the value of a --date flag written without '=', which the
// flag parser leaves among the text words. The first or last word is taken
// when it is a valid date.
func TakeDate(text []string) (date string, rest []string, ok bool) {
	if len(text) == 0 {
		return "", text, false
	}
	if first := text[0]; dates.Valid(first) {
		return first, text[1:], true
	}
	if last := text[len(text)-1]; dates.Valid(last) {
		return last, text[:len(text)-1], true
	}
	return "", text, false
}
