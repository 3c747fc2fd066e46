package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/dirmap/internal/dirmap"
)

// noMatchesMessage is printed on standard output when nothing is reported.
const noMatchesMessage = "No directories matching criteria found."

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

func logic(ctx context.Context, options Options, stdout, stderr io.Writer) error {
	enableProgress := !options.Debug && isTerminal(stderr)

	scan := dirmap.Options{
		Path:        options.Dir,
		MinDays:     options.MinDays,
		MinSizeMB:   options.MinSizeMB,
		Measurer:    options.measurer(),
		Debug:       options.Debug,
		DebugWriter: stderr,
	}

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		scan.Progress = func(done, total int, kb int64) {
			msg := fmt.Sprintf("Measuring… %d/%d directories, %s",
				done, total, humanize.IBytes(uint64(kb)*1024)) //nolint:gosec // kb is never negative
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	reports, err := dirmapRun(ctx, scan)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	switch {
	case errors.Is(err, dirmap.ErrNotFound):
		fmt.Fprintf(stderr, "Error: Directory '%s' does not exist\n", options.Dir)
	case errors.Is(err, dirmap.ErrPermission):
		fmt.Fprintf(stderr, "Warning: Permission denied reading %s\n", options.Dir)
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}

	if len(reports) == 0 {
		fmt.Fprintln(stdout, noMatchesMessage)

		return dirmap.ErrNoMatches
	}

	text, err := Render(options.Format, reports)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, text)

	if options.Output == "" {
		return nil
	}

	if err := WriteReport(options.Output, text); err != nil {
		fmt.Fprintf(stderr, "Error writing to file: %v\n", err)

		return nil
	}

	fmt.Fprintf(stdout, "\nResults saved to: %s\n", options.Output)

	return nil
}
