package subscription

import (
	"strings"
	"time"
)

// DateLayout is the date-only ISO-8601 layout accepted on input.
const DateLayout = time.DateOnly

// InvalidDate stands in for a date that could not be parsed. It lies in the
// distant past, so any period ending on it is already over.
var InvalidDate = time.Time{}

// ParseDate parses an ISO-8601 timestamp or date. An empty string yields nil
// (no date); a malformed string yields InvalidDate instead of an error so that
// classification fails toward the restrictive state.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := ParseDateStrict(s)
	if err != nil {
		return ptr(InvalidDate)
	}
	return &t
}

// ParseDateStrict parses an RFC 3339 timestamp or a YYYY-MM-DD date (UTC midnight).
func ParseDateStrict(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FormatDate renders t as RFC 3339 in UTC, or "" for nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
