package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/idelchi/dirmap/internal/dirmap"
)

const (
	// TableHeader is the first line of the rendered table.
	TableHeader = "Directory|Size (MB)|Last Modified|Days Since Change"
	// SeparatorWidth is the number of '=' characters under the header.
	SeparatorWidth = 70
)

// RenderTable renders reports as a pipe-delimited table without a trailing newline.
func RenderTable(reports []dirmap.DirectoryReport) string {
	lines := make([]string, 0, len(reports)+2)
	lines = append(lines, TableHeader, strings.Repeat("=", SeparatorWidth))

	for _, r := range reports {
		lines = append(lines, fmt.Sprintf("%s|%d MB|%s|%d days", r.Path, r.SizeMB, r.LastModified, r.DaysOld))
	}

	return strings.Join(lines, "\n")
}

// RenderJSON renders reports as indented JSON without a trailing newline.
func RenderJSON(reports []dirmap.DirectoryReport) (string, error) {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding JSON output: %w", err)
	}

	return string(data), nil
}

// Render renders reports in the given format ("table" or "json").
func Render(format string, reports []dirmap.DirectoryReport) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		return RenderJSON(reports)
	case "table":
		return RenderTable(reports), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

// WriteReport writes text to path, replacing any existing content.
func WriteReport(path, text string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	if _, err := file.WriteString(text); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}

	return nil
}
