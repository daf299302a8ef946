package datafile

import "strings"

// isEndOfContent reports whether c terminates the meaningful part of a
// line: comment markers, newline, or the NUL terminator.
func isEndOfContent(c byte) bool {
	return c == ';' || c == '#' || c == '\n' || c == 0
}

// atEnd reports whether s holds no further meaningful content.
func atEnd(s string) bool {
	return s == "" || isEndOfContent(s[0])
}

// consumeKeyword tries a case-sensitive prefix match of keyword against *s.
// On success it advances *s past the keyword and any following whitespace
// and returns true. On failure *s is left untouched.
func consumeKeyword(s *string, keyword string) bool {
	if !strings.HasPrefix(*s, keyword) {
		return false
	}
	*s = strings.TrimLeft((*s)[len(keyword):], " \t")
	return true
}
