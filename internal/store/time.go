package store

import "time"

// sqlTime renders a timestamp the way sqlite's own datetime() does, so
// bound values compare correctly against datetime('now') defaults and
// date() can parse stored columns. Fractional seconds are kept when
// present (the inclusive end-of-day bound relies on them).
func sqlTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05.999999999")
}
