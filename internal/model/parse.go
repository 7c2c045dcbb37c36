package model

import (
	"strconv"
	"time"
)

// PostTimeLayout is the export's post timestamp format
// ("Dow Mon DD HH:MM:SS +ZZZZ YYYY", Go's RubyDate).
const PostTimeLayout = time.RubyDate

// FallbackTime is the sort key used for unparseable post timestamps so
// that ordering stays total without aborting a run.
var FallbackTime = time.Unix(0, 0).UTC()

// ParsePostTime parses a post timestamp under the fixed source layout.
func ParsePostTime(s string) (time.Time, bool) {
	t, err := time.Parse(PostTimeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// PostTimeOrFallback never fails; malformed timestamps sort at the epoch.
func PostTimeOrFallback(s string) time.Time {
	if t, ok := ParsePostTime(s); ok {
		return t
	}
	return FallbackTime
}

// ParseMessageTime parses a DM timestamp under the RFC 3339 profile.
func ParseMessageTime(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// ParseCount parses an engagement counter stored as a string, 0 on failure.
func ParseCount(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
