package feed

import (
	"fmt"
	"time"
)

const UnknownTime = "---"

var offsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// FormatTime renders an ISO-8601 timestamp as HH:MM in the wall clock of its own offset.
// Offset-less timestamps are read as local time. Empty or unparsable input gives "---".
func FormatTime(timestamp string) string {
	if timestamp == "" {
		return UnknownTime
	}

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, timestamp); err == nil {
			return t.Format("15:04")
		}
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, timestamp, time.Local); err == nil {
			return t.Format("15:04")
		}
	}

	return UnknownTime
}

// FormatDelay renders a delay in seconds as " (+M)" with whole minutes, or "" unless at least a minute late
func FormatDelay(seconds *int) string {
	if seconds == nil || *seconds == 0 {
		return ""
	}

	minutes := *seconds / 60
	if minutes > 0 {
		return fmt.Sprintf(" (+%d)", minutes)
	}

	return ""
}
