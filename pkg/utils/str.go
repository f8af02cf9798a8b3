package utils

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// SplitByMultipleDelimiters splits s on any of the given single-character delimiters
func SplitByMultipleDelimiters(s string, delimiters ...string) []string {
	if len(delimiters) == 0 {
		return []string{s}
	}
	re := regexp.MustCompile("[" + regexp.QuoteMeta(strings.Join(delimiters, "")) + "]")
	return re.Split(s, -1)
}

// SplitAddrs splits an address list such as "a:6379, b:6379;c:6379" and drops blanks and repeats
func SplitAddrs(s string) []string {
	parts := SplitByMultipleDelimiters(s, ",", ";")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return lo.Uniq(out)
}
