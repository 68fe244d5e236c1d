package monitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/sharewatch/internal/dedup"
	"github.com/aleister1102/sharewatch/internal/models"
)

func newTestShare(t *testing.T) (models.WatchedShare, string) {
	t.Helper()
	dir := t.TempDir()
	return models.WatchedShare{MountPath: dir, Label: filepath.Base(dir)}, dir
}

func TestPollerFirstScanSeedsSilently(t *testing.T) {
	share, dir := newTestShare(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "preexisting.pdf"), []byte("x"), 0o644))

	poller := NewPoller([]models.WatchedShare{share}, dedup.NewMemoryTracker(), zerolog.Nop())

	// Files present before the monitor started are not NEW_FILE events.
	assert.Empty(t, poller.Poll())
	assert.Equal(t, 1, poller.KnownCount())
}

func TestPollerDetectsNewFileOnce(t *testing.T) {
	share, dir := newTestShare(t)
	poller := NewPoller([]models.WatchedShare{share}, dedup.NewMemoryTracker(), zerolog.Nop())
	require.Empty(t, poller.Poll())

	path := filepath.Join(dir, "dropped.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	assert.Equal(t, []string{path}, poller.Poll())
	// Known set never shrinks; the same file is not reported again.
	assert.Empty(t, poller.Poll())
}

func TestPollerSkipsHiddenEntries(t *testing.T) {
	share, dir := newTestShare(t)
	poller := NewPoller([]models.WatchedShare{share}, dedup.NewMemoryTracker(), zerolog.Nop())
	require.Empty(t, poller.Poll())

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".nfs000123"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visible.txt"), []byte("x"), 0o644))

	fresh := poller.Poll()
	require.Len(t, fresh, 1)
	assert.Equal(t, filepath.Join(dir, "visible.txt"), fresh[0])
}

func TestPollerSkipsAlreadyProcessed(t *testing.T) {
	share, dir := newTestShare(t)
	tracker := dedup.NewMemoryTracker()
	poller := NewPoller([]models.WatchedShare{share}, tracker, zerolog.Nop())
	require.Empty(t, poller.Poll())

	path := filepath.Join(dir, "handled.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, tracker.MarkProcessed(path))

	assert.Empty(t, poller.Poll())
}

func TestPollerSortsByAccessTimeNewestFirst(t *testing.T) {
	share, dir := newTestShare(t)
	poller := NewPoller([]models.WatchedShare{share}, dedup.NewMemoryTracker(), zerolog.Nop())
	require.Empty(t, poller.Poll())

	older := filepath.Join(dir, "older.pdf")
	newer := filepath.Join(dir, "newer.pdf")
	require.NoError(t, os.WriteFile(older, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("x"), 0o644))

	base := time.Now()
	require.NoError(t, os.Chtimes(older, base.Add(-2*time.Hour), base.Add(-2*time.Hour)))
	require.NoError(t, os.Chtimes(newer, base, base))

	assert.Equal(t, []string{newer, older}, poller.Poll())
}

func TestPollerDetectsDirectories(t *testing.T) {
	share, dir := newTestShare(t)
	poller := NewPoller([]models.WatchedShare{share}, dedup.NewMemoryTracker(), zerolog.Nop())
	require.Empty(t, poller.Poll())

	dropped := filepath.Join(dir, "q3-reports")
	require.NoError(t, os.MkdirAll(dropped, 0o755))

	assert.Equal(t, []string{dropped}, poller.Poll())
}

func TestPollerUnreadableShare(t *testing.T) {
	share := models.WatchedShare{MountPath: "/does/not/exist", Label: "gone"}
	poller := NewPoller([]models.WatchedShare{share}, dedup.NewMemoryTracker(), zerolog.Nop())

	assert.Empty(t, poller.Poll())
	assert.Zero(t, poller.KnownCount())
}
