// Package sanitize cleans task output before it is shown in a chat.
package sanitize

import (
	"regexp"
	"strings"
)

// TruncationMarker is appended to text cut by Truncate.
const TruncationMarker = "\n\n... (truncated)"

// ansiRegex matches ANSI/VT100 control sequences such as "\x1b[31m" or "\x1b[?25h".
var ansiRegex = regexp.MustCompile(`\x1b\[?\??[0-9;]*[A-Za-z]`)

// StripANSI removes terminal escape sequences from s.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// Clean strips escape sequences, normalizes CRLF to LF and trims surrounding whitespace.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = StripANSI(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text)
}

// Truncate keeps the first maxLength characters of text and appends TruncationMarker
// when text is longer. Length is measured in runes so multi-byte text is never split.
func Truncate(text string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + TruncationMarker
}
