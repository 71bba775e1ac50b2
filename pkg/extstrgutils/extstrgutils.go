package extstrgutils

import (
	"strings"
	"unicode"
)

// SplitMultiValueParam splits a string into multiple values using white space, comma or semicolon as separator
func SplitMultiValueParam(value string) []string {
	return strings.FieldsFunc(value, isSeparator)
}

// SplitPair splits a string into exactly two values, e.g. "1.34047, 103.70935"
func SplitPair(value string) (first, second string, ok bool) {
	parts := SplitMultiValueParam(value)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func isSeparator(r rune) bool {
	return r == ',' || r == ';' || unicode.IsSpace(r)
}
