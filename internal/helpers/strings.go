// Package helpers holds small shared utilities.
package helpers

import "strings"

// SplitAndTrim splits s by sep, trims whitespace from every part and drops
// empty parts. An empty input yields a nil slice.
func SplitAndTrim(s, sep string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
