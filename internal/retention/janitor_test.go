package retention

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeAgedFile(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, old, old))
	return path
}

func TestSweep_RemovesOnlyExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	expired := writeAgedFile(t, dir, "ppt_old.json", 48*time.Hour)
	fresh := writeAgedFile(t, dir, "ppt_new.json", time.Hour)

	j, err := NewJanitor(dir, 24*time.Hour)
	require.NoError(t, err)

	removed, err := j.Sweep()
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = os.Stat(expired)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	require.NoError(t, err)
}

func TestSweep_IgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(sub, old, old))

	j, err := NewJanitor(dir, 24*time.Hour)
	require.NoError(t, err)

	removed, err := j.Sweep()
	require.NoError(t, err)
	require.Zero(t, removed)
	_, err = os.Stat(sub)
	require.NoError(t, err)
}

func TestSweep_EmptyDirIsFine(t *testing.T) {
	j, err := NewJanitor(t.TempDir(), time.Hour)
	require.NoError(t, err)

	removed, err := j.Sweep()
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestSweep_MissingDirReportsError(t *testing.T) {
	j, err := NewJanitor(filepath.Join(t.TempDir(), "absent"), time.Hour)
	require.NoError(t, err)

	_, err = j.Sweep()
	require.Error(t, err)
}

func TestJanitor_StartAndStop(t *testing.T) {
	j, err := NewJanitor(t.TempDir(), time.Hour)
	require.NoError(t, err)
	require.NoError(t, j.Start(time.Minute))
	require.NoError(t, j.Stop())
}
