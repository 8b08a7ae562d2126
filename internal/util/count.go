package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	countPattern     = regexp.MustCompile(`^\s*[+-]?(\d{1,3}(?:[,\s]\d{3})+|\d+)(?:\.\d+)?`)
	countUnitPattern = regexp.MustCompile(`(?i)^\s*(nos?\.?|copies|copy|pcs|vols?\.?)\s*$`)
)

// ParseCount reads a leading integer from spreadsheet text such as "3",
// "3.0", "1,000" or "2 Nos". Anything after the number other than a
// count unit makes the whole value unparseable.
func ParseCount(input string) (int, bool) {
	line := strings.ReplaceAll(input, "\u00A0", " ")
	m := countPattern.FindStringSubmatchIndex(line)
	if m == nil {
		return 0, false
	}
	rest := line[m[1]:]
	if strings.TrimSpace(rest) != "" && !countUnitPattern.MatchString(rest) {
		return 0, false
	}
	digits := normalizeDigits(line[m[2]:m[3]])
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	if strings.HasPrefix(strings.TrimSpace(line), "-") {
		n = -n
	}
	return n, true
}

func normalizeDigits(token string) string {
	return strings.NewReplacer(",", "", " ", "").Replace(token)
}
