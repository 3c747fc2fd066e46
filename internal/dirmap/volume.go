package dirmap

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/disk"
)

// Volume summarizes the filesystem holding a path.
type Volume struct {
	Path        string
	Fstype      string
	TotalBytes  uint64
	UsedBytes   uint64
	UsedPercent float64
}

// String renders the volume as "used of total (pct%) on fstype".
func (v Volume) String() string {
	return fmt.Sprintf("%s of %s used (%.1f%%) on %s",
		humanize.IBytes(v.UsedBytes), humanize.IBytes(v.TotalBytes), v.UsedPercent, v.Fstype)
}

// VolumeOf returns usage statistics for the filesystem containing path.
func VolumeOf(ctx context.Context, path string) (Volume, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return Volume{}, fmt.Errorf("reading filesystem usage of %q: %w", path, err)
	}

	return Volume{
		Path:        usage.Path,
		Fstype:      usage.Fstype,
		TotalBytes:  usage.Total,
		UsedBytes:   usage.Used,
		UsedPercent: usage.UsedPercent,
	}, nil
}
