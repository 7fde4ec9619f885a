package dcui

import "unicode/utf8"

const ellipsis = "..."

// Truncate returns s limited to n runes. Longer strings keep their first n-3
// runes followed by "...", so the result is exactly n runes long.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= len(ellipsis) {
		return ellipsis[:n]
	}
	keep := n - len(ellipsis)
	count := 0
	for i := range s {
		if count == keep {
			return s[:i] + ellipsis
		}
		count++
	}
	return s
}

// runeLen is the platform's notion of string length.
func runeLen(s string) int { return utf8.RuneCountInString(s) }
