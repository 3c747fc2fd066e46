package dirmap

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
)

// logger provides conditional debug output.
type logger struct {
	enabled bool
	out     io.Writer
}

// printf prints debug output if logging is enabled.
func (l logger) printf(format string, args ...any) {
	if l.enabled {
		fmt.Fprintf(l.out, format, args...)
	}
}

// Run reports the direct child directories of opt.Path.
//
// Each child directory is measured for size with opt.Measurer and for age from
// its modification time. A failed measurement yields 0 MB or an unavailable
// modification time; it never aborts the scan. Directories failing the
// MinDays or MinSizeMB thresholds are dropped and the rest are returned
// largest first.
//
// Measurements run one after another. The scan can be cancelled via ctx.
func Run(ctx context.Context, opt Options) ([]DirectoryReport, error) {
	if opt.Path == "" {
		opt.Path = "."
	}

	if opt.Measurer == nil {
		opt.Measurer = DuMeasurer{}
	}

	if opt.DebugWriter == nil {
		opt.DebugWriter = os.Stderr
	}

	log := logger{enabled: opt.Debug, out: opt.DebugWriter}

	if info, err := os.Stat(opt.Path); err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", opt.Path, ErrNotFound)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("path %q is not a directory: %w", opt.Path, ErrNotFound)
	}

	entries, err := osReadDir(opt.Path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("reading %q: %w", opt.Path, ErrPermission)
		}

		return nil, fmt.Errorf("reading %q: %w", opt.Path, err)
	}

	if opt.Debug {
		if volume, err := VolumeOf(ctx, opt.Path); err != nil {
			log.printf("[debug]: %v\n", err)
		} else {
			log.printf("[debug]: volume %s: %s\n", volume.Path, volume)
		}
	}

	dirs := childDirectories(opt.Path, entries, log)

	log.printf("[debug]: %d child directories in %s\n", len(dirs), opt.Path)

	var (
		reports []DirectoryReport
		totalKB int64
	)

	for i, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if opt.Progress != nil {
			opt.Progress(i, len(dirs), totalKB)
		}

		report, kb := measure(ctx, dir, opt)

		if report.SizeErr != nil {
			log.printf("[debug]: size of %s unavailable: %v\n", dir, report.SizeErr)
		} else {
			log.printf("[debug]: %s: %d MB, %d days old\n", dir, report.SizeMB, report.DaysOld)
		}

		totalKB += kb

		if opt.Progress != nil {
			opt.Progress(i+1, len(dirs), totalKB)
		}

		if !opt.include(report) {
			log.printf("[debug]: excluding %s (min days %d, min size %d MB)\n", dir, opt.MinDays, opt.MinSizeMB)

			continue
		}

		reports = append(reports, report)
	}

	Sort(reports)

	log.printf("[debug]: %d of %d directories reported, %s measured\n",
		len(reports), len(dirs), humanize.IBytes(uint64(totalKB)*1024)) //nolint:gosec // totalKB is never negative

	return reports, nil
}

// childDirectories returns the paths of entries that are directories,
// following symlinks. Entries that cannot be stat'ed are skipped.
func childDirectories(base string, entries []os.DirEntry, log logger) []string {
	dirs := make([]string, 0, len(entries))

	for _, entry := range entries {
		path := joinPath(base, entry.Name())

		info, err := os.Stat(path)
		if err != nil {
			log.printf("[debug]: skipping %s: %v\n", path, err)

			continue
		}

		if !info.IsDir() {
			continue
		}

		dirs = append(dirs, path)
	}

	return dirs
}

// joinPath appends name to base without cleaning base, so "." yields "./name".
func joinPath(base, name string) string {
	if base == "" || os.IsPathSeparator(base[len(base)-1]) {
		return base + name
	}

	return base + string(filepath.Separator) + name
}

// measure builds the report for a single directory and returns it with the
// raw kilobyte reading.
func measure(ctx context.Context, path string, opt Options) (DirectoryReport, int64) {
	report := DirectoryReport{
		Path:         path,
		LastModified: NotAvailable,
	}

	kb, err := opt.Measurer.SizeKB(ctx, path)
	if err != nil {
		report.SizeErr = err
		kb = 0
	} else {
		report.SizeMB = SizeMB(kb)
	}

	if mtime, ok := ModTime(path); ok {
		now := opt.Now
		if now == nil {
			now = time.Now
		}

		report.DaysOld = DaysSince(mtime, now())
		report.LastModified = FormatModTime(mtime)
	}

	return report, kb
}

// Sort orders reports by size, largest first. Equal sizes keep their order.
func Sort(reports []DirectoryReport) {
	slices.SortStableFunc(reports, func(a, b DirectoryReport) int {
		return cmp.Compare(b.SizeMB, a.SizeMB)
	})
}
