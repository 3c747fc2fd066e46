// Package dirmap maps the disk usage of the direct children of a directory.
//
// Each child directory is measured for its recursive disk usage (by default
// through the host's du utility) and its last-modification age, filtered by
// minimum thresholds and sorted by size, largest first.
package dirmap
