// Package cli implements the dirmap command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/dirmap/internal/dirmap"
	"github.com/idelchi/dirmap/internal/integration"
)

// Options holds the parsed command-line flags.
type Options struct {
	// Dir is the base directory to scan.
	Dir string
	// MinDays is the minimum age in days (0 = no filter).
	MinDays int64
	// MinSizeMB is the minimum size in MB (0 = no filter).
	MinSizeMB int64
	// Output is an optional file that also receives the report.
	Output string
	// Format is the report format (table or json).
	Format string
	// Walk measures sizes in-process instead of running du.
	Walk bool
	// Timeout bounds each size measurement.
	Timeout time.Duration
	// Debug enables debug output on standard error.
	Debug bool
	// Version indicates whether to show version and exit.
	Version bool
	// Integration indicates whether to output integration script.
	Integration bool
}

// measurer returns the size measurer selected by the options.
func (o Options) measurer() dirmap.Measurer {
	if o.Walk {
		return dirmap.WalkMeasurer{Timeout: o.Timeout}
	}

	return dirmap.DuMeasurer{Timeout: o.Timeout}
}

//nolint:gochecknoglobals // Config constant
var allowedFormats = []string{"table", "json"}

// validate checks option values that the flag parser cannot.
func (o Options) validate() error {
	if !slices.Contains(allowedFormats, o.Format) {
		return fmt.Errorf("invalid output format %q: must be one of %v", o.Format, allowedFormats)
	}

	if o.MinDays < 0 {
		return errors.New("min-days cannot be negative")
	}

	if o.MinSizeMB < 0 {
		return errors.New("min-size cannot be negative")
	}

	if o.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	return nil
}

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	var options Options

	cmd := &cobra.Command{
		Use:   "dirmap [flags] [dir]",
		Short: "Report disk usage and age of the directories directly below a path",
		Long: heredoc.Doc(`
			dirmap measures every direct subdirectory of a base directory and prints
			a table of size and last-modification age, largest first.

			Sizes come from 'du -sk' (or an in-process walk with --walk) and are
			truncated to whole megabytes. A directory that cannot be measured is
			reported as 0 MB.

			The command exits with status 1 when no directory matches the filters.

			The '-i' flag prints a zsh function that browses the results with 'fzf'.
		`),
		Example: heredoc.Doc(`
			# Analyze current directory
			dirmap -d .

			# Find old (>180 days) and large (>20MB) directories
			dirmap -d /path/to/dir -m 180 -s 20

			# Save results to file
			dirmap -d /path/to/dir -m 180 -s 20 -o results.txt
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if options.Version {
				fmt.Fprintln(cmd.OutOrStdout(), c.version)

				return nil
			}

			if options.Integration {
				rendered, err := integration.Render()
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), rendered)

				return nil
			}

			if len(args) == 1 {
				if cmd.Flags().Changed("dir") {
					return errors.New("directory given both as argument and with --dir")
				}

				options.Dir = args[0]
			}

			if err := options.validate(); err != nil {
				return err
			}

			return logic(cmd.Context(), options, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false

	flags.StringVarP(&options.Dir, "dir", "d", ".", "Base directory to analyze")
	flags.Int64VarP(&options.MinDays, "min-days", "m", 0, "Minimum age in days to include (0 = no filter)")
	flags.Int64VarP(&options.MinSizeMB, "min-size", "s", 0, "Minimum size in MB to include (0 = no filter)")
	flags.StringVarP(&options.Output, "output", "o", "", "File to also save the results to")
	flags.StringVar(&options.Format, "format", "table", "Output format: table or json")
	flags.BoolVar(&options.Walk, "walk", false, "Measure sizes by walking the tree instead of running du")
	flags.DurationVar(&options.Timeout, "timeout", dirmap.DefaultMeasureTimeout, "Timeout for measuring a single directory")
	flags.BoolVar(&options.Debug, "debug", false, "Enable debug output")
	flags.BoolVarP(&options.Version, "version", "v", false, "Show version and exit")
	flags.BoolVarP(&options.Integration, "init", "i", false, "Output init script for shell usage")

	return cmd
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().ExecuteContext(context.Background())
}
