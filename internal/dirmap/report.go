package dirmap

import (
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound is returned when the base path does not exist or is not a directory.
	ErrNotFound = errors.New("directory not found")
	// ErrPermission is returned when the base directory cannot be listed.
	ErrPermission = errors.New("permission denied")
	// ErrNoMatches signals that no directory satisfied the filters.
	ErrNoMatches = errors.New("no directories matching criteria found")
)

// NotAvailable is displayed in place of a modification time that could not be read.
const NotAvailable = "N/A"

// DirectoryReport describes a single child directory of the base directory.
type DirectoryReport struct {
	// Path is the base directory as given, a separator unless the base already
	// ends in one, and the child name.
	Path string `json:"path"`
	// SizeMB is the disk usage in whole megabytes, truncated.
	SizeMB int64 `json:"size_mb"`
	// DaysOld is the number of whole days since the last modification.
	DaysOld int64 `json:"days_old"`
	// LastModified is the formatted modification time, or NotAvailable.
	LastModified string `json:"last_modified"`
	// SizeErr holds the cause when the size could not be measured.
	// SizeMB is 0 in that case and the table does not distinguish it.
	SizeErr error `json:"-"`
}

// Options configures a scan.
type Options struct {
	// Path is the base directory whose children are reported.
	Path string
	// MinDays excludes directories younger than this many days (0 = no filter).
	MinDays int64
	// MinSizeMB excludes directories smaller than this many megabytes (0 = no filter).
	MinSizeMB int64
	// Measurer computes directory sizes. Defaults to a DuMeasurer.
	Measurer Measurer
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// Debug enables diagnostics on DebugWriter.
	Debug bool
	// DebugWriter receives debug output. Defaults to os.Stderr.
	DebugWriter io.Writer
	// Progress, if set, is called before and after each directory is measured
	// with the number of directories done, the total, and the kilobytes
	// measured so far.
	Progress func(done, total int, kb int64)
}

// include reports whether r passes the configured thresholds.
// A threshold of 0 disables filtering on that dimension.
func (o Options) include(r DirectoryReport) bool {
	if o.MinDays > 0 && r.DaysOld < o.MinDays {
		return false
	}

	if o.MinSizeMB > 0 && r.SizeMB < o.MinSizeMB {
		return false
	}

	return true
}
