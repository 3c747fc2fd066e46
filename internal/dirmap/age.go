package dirmap

import (
	"os"
	"time"
)

// TimeLayout formats modification times, e.g. "Jan 05 13:42:07 2024".
const TimeLayout = "Jan 02 15:04:05 2006"

const day = 24 * time.Hour

// ModTime returns the modification time of path, following symlinks.
// The second result is false when the time could not be read.
func ModTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}

	return info.ModTime(), true
}

// DaysSince returns the whole days elapsed between mtime and now.
// Modification times in the future count as 0 days.
func DaysSince(mtime, now time.Time) int64 {
	elapsed := now.Sub(mtime)
	if elapsed < 0 {
		return 0
	}

	return int64(elapsed / day)
}

// FormatModTime formats t in local time using TimeLayout.
func FormatModTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}
