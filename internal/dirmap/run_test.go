package dirmap

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMeasurer returns fixed kilobyte readings keyed by directory name.
type fakeMeasurer struct {
	kb   map[string]int64
	errs map[string]error
}

func (f fakeMeasurer) SizeKB(_ context.Context, path string) (int64, error) {
	name := filepath.Base(path)
	if err, ok := f.errs[name]; ok {
		return 0, err
	}

	return f.kb[name], nil
}

// fixture builds a base directory with the given child directories, each
// modified the given age before now, plus a regular file.
func fixture(t *testing.T, now time.Time, ages map[string]time.Duration) string {
	t.Helper()

	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "notes.txt"), []byte("not a directory"), 0o644))

	for name, age := range ages {
		dir := filepath.Join(base, name)
		require.NoError(t, os.Mkdir(dir, 0o755))

		mtime := now.Add(-age)
		require.NoError(t, os.Chtimes(dir, mtime, mtime))
	}

	return base
}

func paths(reports []DirectoryReport) []string {
	out := make([]string, 0, len(reports))
	for _, r := range reports {
		out = append(out, filepath.Base(r.Path))
	}

	return out
}

func TestRun(t *testing.T) {
	now := time.Now()
	base := fixture(t, now, map[string]time.Duration{
		"A": 200*day + time.Hour,
		"B": 5*day + time.Hour,
	})

	measurer := fakeMeasurer{kb: map[string]int64{"A": 50 * 1024, "B": 10 * 1024}}
	clock := func() time.Time { return now }

	t.Run("no filters", func(t *testing.T) {
		reports, err := Run(context.Background(), Options{Path: base, Measurer: measurer, Now: clock})
		require.NoError(t, err)
		require.Equal(t, []string{"A", "B"}, paths(reports))

		assert.Equal(t, filepath.Join(base, "A"), reports[0].Path)
		assert.Equal(t, int64(50), reports[0].SizeMB)
		assert.Equal(t, int64(200), reports[0].DaysOld)
		assert.Equal(t, FormatModTime(now.Add(-200*day-time.Hour)), reports[0].LastModified)
		assert.Equal(t, int64(10), reports[1].SizeMB)
		assert.Equal(t, int64(5), reports[1].DaysOld)
	})

	t.Run("age and size filters", func(t *testing.T) {
		reports, err := Run(context.Background(), Options{
			Path:      base,
			MinDays:   100,
			MinSizeMB: 20,
			Measurer:  measurer,
			Now:       clock,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, paths(reports))
	})

	t.Run("thresholds are inclusive", func(t *testing.T) {
		reports, err := Run(context.Background(), Options{
			Path:      base,
			MinDays:   5,
			MinSizeMB: 10,
			Measurer:  measurer,
			Now:       clock,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, paths(reports))
	})

	t.Run("nothing matches", func(t *testing.T) {
		reports, err := Run(context.Background(), Options{Path: base, MinDays: 1000, Measurer: measurer, Now: clock})
		require.NoError(t, err)
		assert.Empty(t, reports)
	})
}

func TestRunSortsBySizeDescending(t *testing.T) {
	now := time.Now()
	base := fixture(t, now, map[string]time.Duration{
		"small": day, "large": day, "medium": day, "tie-a": day, "tie-b": day,
	})

	measurer := fakeMeasurer{kb: map[string]int64{
		"small": 1024, "large": 90 * 1024, "medium": 40 * 1024, "tie-a": 5 * 1024, "tie-b": 5 * 1024,
	}}

	reports, err := Run(context.Background(), Options{Path: base, Measurer: measurer})
	require.NoError(t, err)
	require.Len(t, reports, 5)

	for i := 1; i < len(reports); i++ {
		assert.GreaterOrEqual(t, reports[i-1].SizeMB, reports[i].SizeMB)
	}

	// os.ReadDir lists by name, so equal sizes keep name order.
	assert.Equal(t, []string{"large", "medium", "tie-a", "tie-b", "small"}, paths(reports))
}

func TestRunMeasurementFailure(t *testing.T) {
	now := time.Now()
	base := fixture(t, now, map[string]time.Duration{"broken": 3 * day, "ok": 3 * day})

	measurer := fakeMeasurer{
		kb:   map[string]int64{"ok": 4096},
		errs: map[string]error{"broken": errors.New("du exploded")},
	}

	reports, err := Run(context.Background(), Options{Path: base, Measurer: measurer})
	require.NoError(t, err)
	require.Equal(t, []string{"ok", "broken"}, paths(reports))

	broken := reports[1]
	assert.Equal(t, int64(0), broken.SizeMB)
	assert.Error(t, broken.SizeErr)
	assert.Equal(t, int64(3), broken.DaysOld)

	t.Run("excluded by a size threshold", func(t *testing.T) {
		reports, err := Run(context.Background(), Options{Path: base, MinSizeMB: 1, Measurer: measurer})
		require.NoError(t, err)
		assert.Equal(t, []string{"ok"}, paths(reports))
	})
}

func TestRunFollowsDirectorySymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	now := time.Now()
	base := fixture(t, now, map[string]time.Duration{"real": day})
	target := t.TempDir()

	require.NoError(t, os.Symlink(target, filepath.Join(base, "linked")))
	require.NoError(t, os.Symlink(filepath.Join(base, "notes.txt"), filepath.Join(base, "file-link")))
	require.NoError(t, os.Symlink(filepath.Join(base, "gone"), filepath.Join(base, "dangling")))

	reports, err := Run(context.Background(), Options{Path: base, Measurer: fakeMeasurer{}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"linked", "real"}, paths(reports))
}

func TestRunBaseErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		reports, err := Run(context.Background(), Options{
			Path:     filepath.Join(t.TempDir(), "missing"),
			Measurer: fakeMeasurer{},
		})
		require.ErrorIs(t, err, ErrNotFound)
		assert.Empty(t, reports)
	})

	t.Run("regular file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		_, err := Run(context.Background(), Options{Path: file, Measurer: fakeMeasurer{}})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unreadable", func(t *testing.T) {
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced")
		}

		base := fixture(t, time.Now(), map[string]time.Duration{"child": day})
		require.NoError(t, os.Chmod(base, 0o000))
		t.Cleanup(func() { _ = os.Chmod(base, 0o755) })

		reports, err := Run(context.Background(), Options{Path: base, Measurer: fakeMeasurer{}})
		require.ErrorIs(t, err, ErrPermission)
		assert.Empty(t, reports)
	})

	t.Run("listing denied", func(t *testing.T) {
		base := fixture(t, time.Now(), map[string]time.Duration{"child": day})

		original := osReadDir
		t.Cleanup(func() { osReadDir = original })

		osReadDir = func(name string) ([]os.DirEntry, error) {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
		}

		reports, err := Run(context.Background(), Options{Path: base, Measurer: fakeMeasurer{}})
		require.ErrorIs(t, err, ErrPermission)
		assert.Empty(t, reports)
	})

	t.Run("cancelled", func(t *testing.T) {
		base := fixture(t, time.Now(), map[string]time.Duration{"child": day})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Run(ctx, Options{Path: base, Measurer: fakeMeasurer{}})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestRunDebugAndProgress(t *testing.T) {
	now := time.Now()
	base := fixture(t, now, map[string]time.Duration{"A": day, "B": day})

	var (
		debug bytes.Buffer
		calls [][2]int
		lastK int64
	)

	_, err := Run(context.Background(), Options{
		Path:        base,
		Measurer:    fakeMeasurer{kb: map[string]int64{"A": 1024, "B": 3000}},
		Debug:       true,
		DebugWriter: &debug,
		Progress: func(done, total int, kb int64) {
			calls = append(calls, [2]int{done, total})
			lastK = kb
		},
	})
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{0, 2}, {1, 2}, {1, 2}, {2, 2}}, calls)
	assert.Equal(t, int64(4024), lastK)
	assert.Contains(t, debug.String(), "[debug]: 2 child directories in "+base)
	assert.Contains(t, debug.String(), "[debug]: 2 of 2 directories reported")
}

func TestRunKeepsBaseAsGiven(t *testing.T) {
	base := fixture(t, time.Now(), map[string]time.Duration{"A": day})
	chdir(t, base)

	sep := string(filepath.Separator)

	tests := []struct {
		base string
		want string
	}{
		{".", "." + sep + "A"},
		{"." + sep, "." + sep + "A"},
		{base, base + sep + "A"},
		{base + sep, base + sep + "A"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			reports, err := Run(context.Background(), Options{Path: tt.base, Measurer: fakeMeasurer{}})
			require.NoError(t, err)
			require.Len(t, reports, 1)
			assert.Equal(t, tt.want, reports[0].Path)
		})
	}
}

func TestJoinPath(t *testing.T) {
	sep := string(filepath.Separator)

	assert.Equal(t, "."+sep+"A", joinPath(".", "A"))
	assert.Equal(t, "dir"+sep+"A", joinPath("dir"+sep, "A"))
	assert.Equal(t, "A", joinPath("", "A"))
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
