package domain

import "strings"

// NormalizeText collapses whitespace runs into a single space and trims the ends.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// CharCount counts characters, not bytes.
func CharCount(text string) int {
	return len([]rune(text))
}
