package filter

import (
	"regexp"
	"strings"
	"time"
)

// timestampPrefixRe matches datetime strings starting with
// YYYY-MM-DD HH:MM:SS or YYYY-MM-DDTHH:MM:SS with an optional
// millisecond fraction. Capture sources format start times this way but
// may append timezone or sub-millisecond suffixes that Go's layouts
// would otherwise trip over, so the matched prefix is parsed on its own.
var timestampPrefixRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d{1,3})?`)

var prefixLayouts = []string{
	"2006-01-02T15:04:05.999",
	"2006-01-02 15:04:05.999",
}

var genericLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp coerces a string to a timestamp using, in order: a
// strict prefix match for "YYYY-MM-DD[T or space]HH:MM:SS[.fff]",
// generic parsing of the raw string, and generic parsing after replacing
// the first space with a "T" separator. Returns false when no strategy
// yields a valid time.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if prefix := timestampPrefixRe.FindString(s); prefix != "" {
		for _, layout := range prefixLayouts {
			if t, err := time.Parse(layout, prefix); err == nil {
				return t, true
			}
		}
	}

	if t, ok := parseGeneric(s); ok {
		return t, true
	}

	if i := strings.IndexByte(s, ' '); i >= 0 {
		if t, ok := parseGeneric(s[:i] + "T" + s[i+1:]); ok {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseGeneric(s string) (time.Time, bool) {
	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
