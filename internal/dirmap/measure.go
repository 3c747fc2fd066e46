package dirmap

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultMeasureTimeout bounds a single directory size measurement.
const DefaultMeasureTimeout = 30 * time.Second

// kbPerMB is the number of kilobytes in a megabyte.
const kbPerMB = 1024

// Measurer reports the recursive disk usage of a directory in kilobytes.
type Measurer interface {
	SizeKB(ctx context.Context, path string) (int64, error)
}

// SizeMB converts kilobytes to whole megabytes, truncating the remainder.
func SizeMB(kb int64) int64 {
	if kb <= 0 {
		return 0
	}

	return kb / kbPerMB
}

// DuMeasurer measures disk usage by running "du -sk" on the directory.
type DuMeasurer struct {
	// Command is the du binary to run. Defaults to "du".
	Command string
	// Timeout bounds each invocation. Defaults to DefaultMeasureTimeout.
	Timeout time.Duration
}

// SizeKB runs du and parses the summarized kilobyte count.
func (m DuMeasurer) SizeKB(ctx context.Context, path string) (int64, error) {
	command := m.Command
	if command == "" {
		command = "du"
	}

	timeout := m.Timeout
	if timeout <= 0 {
		timeout = DefaultMeasureTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, command, "-sk", path).Output()
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return 0, fmt.Errorf("measuring %q: timed out after %v", path, timeout)
	}

	if err != nil {
		return 0, fmt.Errorf("running %s on %q: %w", command, path, err)
	}

	return parseDuOutput(string(out))
}

// parseDuOutput extracts the leading kilobyte count from du output
// of the form "<kb>\t<path>".
func parseDuOutput(out string) (int64, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, errors.New("empty du output")
	}

	kb, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing du output %q: %w", fields[0], err)
	}

	if kb < 0 {
		return 0, fmt.Errorf("negative du size %d", kb)
	}

	return kb, nil
}
