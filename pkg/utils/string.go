package utils

import "github.com/charmbracelet/x/ansi"

// Truncate cuts s to maxLen display cells and appends "..." when anything
// was removed. Multi-byte runes are never split.
func Truncate(s string, maxLen int) string {
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	return ansi.Truncate(s, maxLen, "") + "..."
}
