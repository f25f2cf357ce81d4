package app

import (
	"regexp"
	"strings"
)

// Span attributes have provider-side size limits; a capped, collapsed query
// is enough to recognize the statement in a trace.
const maxTracedQueryLength = 512

var whitespaceRun = regexp.MustCompile(`\s+`)

func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	collapsed := whitespaceRun.ReplaceAllString(query, " ")
	if len(collapsed) <= maxTracedQueryLength {
		return collapsed
	}

	return collapsed[:maxTracedQueryLength] + "..."
}
