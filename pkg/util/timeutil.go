package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// TruncateMillis rounds a timestamp to milliseconds, matching what the run stores keep.
func TruncateMillis(t time.Time) time.Time {
	return t.Truncate(time.Millisecond)
}
