package stringsutil

import "strings"

// SplitCSV splits a comma-separated value, trimming whitespace and
// dropping empty entries.
func SplitCSV(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
