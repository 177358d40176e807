// Package strutil contains string utilities shared across packages.
package strutil

import "strings"

// ChopLineEnding removes a line ending ("\r\n" or "\n") from the end of s. It
// returns s unchanged if it doesn't end with a line ending.
func ChopLineEnding(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	} else if strings.HasSuffix(s, "\n") {
		return s[:len(s)-1]
	}
	return s
}

// Lines splits s into lines, accepting both "\n" and "\r\n" endings. The
// final line is included even if it has no line ending.
func Lines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
