package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NowFunc is the clock used by services. Mockable.
var NowFunc = time.Now

// Now returns the current UTC time truncated to microseconds, the resolution shared by every supported database.
func Now() time.Time {
	return NowFunc().UTC().Truncate(time.Microsecond)
}

// NewID returns a new random record ID.
func NewID() string {
	return uuid.NewString()
}

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// StringIn reports whether s is one of values.
func StringIn(s string, values ...string) bool {
	for _, v := range values {
		if s == v {
			return true
		}
	}
	return false
}
