package dedup

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/sharewatch/internal/config"
)

func TestMemoryTrackerMarkAndLookup(t *testing.T) {
	tracker := NewMemoryTracker()

	assert.False(t, tracker.AlreadyProcessed("/mnt/anvil/intake/a.pdf"))
	require.NoError(t, tracker.MarkProcessed("/mnt/anvil/intake/a.pdf"))
	assert.True(t, tracker.AlreadyProcessed("/mnt/anvil/intake/a.pdf"))
	assert.Equal(t, 1, tracker.Len())

	// Marking again is a no-op.
	require.NoError(t, tracker.MarkProcessed("/mnt/anvil/intake/a.pdf"))
	assert.Equal(t, 1, tracker.Len())
}

func TestMemoryTrackerConcurrentAccess(t *testing.T) {
	tracker := NewMemoryTracker()
	var wg sync.WaitGroup
	paths := []string{"/a", "/b", "/c", "/d", "/e"}

	for _, p := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			_ = tracker.MarkProcessed(path)
			tracker.AlreadyProcessed(path)
		}(p)
	}
	wg.Wait()

	assert.Equal(t, len(paths), tracker.Len())
}

func TestMemoryTrackerResetsOnRestart(t *testing.T) {
	tracker := NewMemoryTracker()
	require.NoError(t, tracker.MarkProcessed("/mnt/anvil/intake/old.pdf"))

	// A new tracker stands in for a service restart.
	restarted := NewMemoryTracker()
	assert.False(t, restarted.AlreadyProcessed("/mnt/anvil/intake/old.pdf"))
	assert.Equal(t, 0, restarted.Len())
}

func TestSQLiteTrackerPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dedup", "processed.db")

	tracker, err := NewSQLiteTracker(dbPath, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, tracker.MarkProcessed("/mnt/anvil/intake/kept.pdf"))
	assert.Equal(t, 1, tracker.Len())
	require.NoError(t, tracker.Close())

	reopened, err := NewSQLiteTracker(dbPath, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	assert.True(t, reopened.AlreadyProcessed("/mnt/anvil/intake/kept.pdf"))
	assert.False(t, reopened.AlreadyProcessed("/mnt/anvil/intake/never-seen.pdf"))
}

func TestSQLiteTrackerDuplicateMark(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "processed.db")

	tracker, err := NewSQLiteTracker(dbPath, zerolog.Nop())
	require.NoError(t, err)
	defer tracker.Close()

	require.NoError(t, tracker.MarkProcessed("/x"))
	require.NoError(t, tracker.MarkProcessed("/x"))
	assert.Equal(t, 1, tracker.Len())
}

func TestNewTrackerSelection(t *testing.T) {
	memTracker, err := NewTracker(config.DedupConfig{Store: config.DedupStoreMemory}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryTracker{}, memTracker)

	sqliteCfg := config.DedupConfig{
		Store:      config.DedupStoreSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "d.db"),
	}
	sqliteTracker, err := NewTracker(sqliteCfg, zerolog.Nop())
	require.NoError(t, err)
	defer sqliteTracker.Close()
	assert.IsType(t, &SQLiteTracker{}, sqliteTracker)

	_, err = NewTracker(config.DedupConfig{Store: "redis"}, zerolog.Nop())
	assert.Error(t, err)
}
