package telegram

import "unicode/utf16"

// MaxMessageLength is the sendMessage text limit. Telegram counts UTF-16 code units.
const MaxMessageLength = 4096

// TextLength returns the length of s as Telegram measures it.
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// ClipText returns the longest prefix of s that is at most max UTF-16 units long. It never
// splits a character.
func ClipText(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		if n+w > max {
			return s[:i]
		}
		n += w
	}
	return s
}
