// Package strings holds text helpers shared by the CLI renderers.
package strings

import (
	"strings"
)

// DefaultCellMaxLen caps free-text columns such as titles and authors in
// the narrow table output.
const DefaultCellMaxLen = 40

// MinTruncateLen leaves room for one character plus "...".
const MinTruncateLen = 4

// TruncateCell flattens s onto one line and shortens it to maxLen runes,
// ending with "..." when cut. maxLen below MinTruncateLen is raised to it.
func TruncateCell(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
