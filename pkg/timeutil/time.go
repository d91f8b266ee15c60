// Package timeutil collects the timestamp helpers used for staleness checks
// and log-friendly duration formatting across the engine.
package timeutil

import "time"

// UnixMillis returns the current time in Unix milliseconds.
func UnixMillis() int64 {
	return time.Now().UnixMilli()
}

// FromUnixMillis converts Unix milliseconds to a UTC time.Time.
func FromUnixMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ToUTC converts t to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// FormatDuration renders the absolute value of d in time.Duration's String
// form, largest unit hours, keeping at most two non-zero units: at a day or
// more it is truncated to whole hours, at an hour or more to whole minutes,
// otherwise to whole seconds — "45s", "5m30s", "2h15m0s", "77h0m0s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		if hours > 0 {
			return (time.Duration(days*24+hours) * time.Hour).String()
		}
		return (time.Duration(days*24) * time.Hour).String()
	}

	if hours > 0 {
		if minutes > 0 {
			return (time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute).String()
		}
		return (time.Duration(hours) * time.Hour).String()
	}

	if minutes > 0 {
		if seconds > 0 {
			return (time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second).String()
		}
		return (time.Duration(minutes) * time.Minute).String()
	}

	return (time.Duration(seconds) * time.Second).String()
}
