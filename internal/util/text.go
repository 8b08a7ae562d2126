package util

import (
	"regexp"
	"strings"
)

var (
	reSpaces   = regexp.MustCompile(`\s+`)
	lineBreaks = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")
)

// NormalizeSpaces collapses whitespace runs and trims. Used for table
// cells, never for record values the normalizer owns.
func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// OneLine replaces tabs and line breaks with single spaces without
// collapsing anything else.
func OneLine(input string) string {
	return lineBreaks.Replace(input)
}

func StripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
