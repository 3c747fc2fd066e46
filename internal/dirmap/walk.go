package dirmap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
)

// WalkMeasurer measures disk usage by summing the apparent sizes of regular
// files below a directory. It serves hosts without a du utility.
type WalkMeasurer struct {
	// Timeout bounds each walk. Defaults to DefaultMeasureTimeout.
	Timeout time.Duration
}

// sizeCollector accumulates file sizes from concurrent fastwalk callbacks.
type sizeCollector struct {
	mu         sync.Mutex
	totalBytes int64
}

func (c *sizeCollector) add(size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalBytes += size
}

// kilobytes returns the collected total rounded up to whole kilobytes.
func (c *sizeCollector) kilobytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return (c.totalBytes + 1023) / 1024
}

// SizeKB walks path in parallel and returns the total size in kilobytes.
// Entries that cannot be read are skipped.
func (m WalkMeasurer) SizeKB(ctx context.Context, path string) (int64, error) {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = DefaultMeasureTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	collector := &sizeCollector{}

	conf := &fastwalk.Config{
		Follow: false,
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Unreadable entries do not abort the walk
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // Files removed mid-walk are skipped
		}

		collector.add(info.Size())

		return nil
	})
	if errors.Is(walkErr, context.DeadlineExceeded) {
		return 0, fmt.Errorf("measuring %q: timed out after %v", path, timeout)
	}

	if walkErr != nil {
		return 0, fmt.Errorf("walking %q: %w", path, walkErr)
	}

	return collector.kilobytes(), nil
}
