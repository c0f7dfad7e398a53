package publish

import (
	"fmt"
	"strings"
)

// EncodeLineProtocol flattens a submission into InfluxDB line-protocol
// points, one per folded measurement. Tag keys and values escape spaces
// with a backslash; whole-number measurements are written as integers.
func EncodeLineProtocol(sub Submission) string {
	var sb strings.Builder
	timestamp := sub.Timestamp.UnixNano()

	for _, key := range sub.Results.Keys() {
		for _, value := range sub.Results.Values(key) {
			tags := strings.Join([]string{
				"suite=" + escapeTag(sub.Benchmark.Suite),
				"name=" + escapeTag(key),
				"browser=" + escapeTag(sub.Browser),
				"branch=" + escapeTag(sub.Branch),
				"browser-version=" + escapeTag(sub.Version),
				"machine=" + escapeTag(sub.Machine),
				"os=" + escapeTag(sub.OS),
			}, ",")

			var field string
			if value == float64(int64(value)) {
				field = fmt.Sprintf("value=%di", int64(value))
			} else {
				field = fmt.Sprintf("value=%g", value)
			}

			fmt.Fprintf(&sb, "benchmarks,%s %s %d\n", tags, field, timestamp)
		}
	}
	return sb.String()
}

func escapeTag(s string) string {
	s = strings.ReplaceAll(s, " ", `\ `)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "=", `\=`)
	return s
}
