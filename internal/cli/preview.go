package cli

import (
	"strings"

	"golang.org/x/text/width"
)

// preview flattens s onto one line and cuts it to at most cols terminal
// columns, counting wide (CJK, fullwidth) runes as two. A cut is marked with
// "...", which is not counted.
func preview(s string, cols int) string {
	s = strings.Join(strings.Fields(s), " ")
	used := 0
	for i, r := range s {
		w := runeColumns(r)
		if used+w > cols {
			return s[:i] + "..."
		}
		used += w
	}
	return s
}

func runeColumns(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}
