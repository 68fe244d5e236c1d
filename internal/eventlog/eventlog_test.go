package eventlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/sharewatch/internal/config"
	"github.com/aleister1102/sharewatch/internal/models"
)

func newTestLog(t *testing.T) (*EventLog, config.EventLogConfig) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.EventLogConfig{
		Path:                 filepath.Join(dir, "logs", "ingest_events.log"),
		ArchiveDir:           filepath.Join(dir, "archive"),
		ArchiveRetentionDays: 30,
	}
	el, err := NewEventLog(cfg, zerolog.Nop())
	require.NoError(t, err)
	return el, cfg
}

func fileEventAt(t time.Time, name, eventType string) models.FileEvent {
	return models.FileEvent{
		Timestamp: t,
		EventType: eventType,
		FileName:  name,
		FilePath:  "/mnt/anvil/intake/" + name,
		MD5Hash:   "abc123",
		MimeType:  "application/pdf",
		SizeBytes: 1024,
	}
}

func TestAppendAndQueryAll(t *testing.T) {
	el, _ := newTestLog(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, el.Append(fileEventAt(base, "first.pdf", models.EventTypeNewFile)))
	require.NoError(t, el.Append(fileEventAt(base.Add(time.Minute), "second.pdf", models.EventTypeNewFile)))

	events, err := el.Query(QueryOptions{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first.
	assert.Equal(t, "second.pdf", events[0].FileName)
	assert.Equal(t, "first.pdf", events[1].FileName)
}

func TestQueryByEventType(t *testing.T) {
	el, _ := newTestLog(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, el.Append(fileEventAt(base, "a.pdf", models.EventTypeNewFile)))
	require.NoError(t, el.Append(fileEventAt(base.Add(time.Second), "b.pdf", models.EventTypeRetroactiveTag)))

	events, err := el.Query(QueryOptions{EventType: models.EventTypeRetroactiveTag})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "b.pdf", events[0].FileName)
}

func TestQueryByFilePatternCaseInsensitive(t *testing.T) {
	el, _ := newTestLog(t)
	base := time.Now()

	require.NoError(t, el.Append(fileEventAt(base, "Quarterly-Report.PDF", models.EventTypeNewFile)))
	require.NoError(t, el.Append(fileEventAt(base, "notes.txt", models.EventTypeNewFile)))

	events, err := el.Query(QueryOptions{FilePattern: "report"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Quarterly-Report.PDF", events[0].FileName)
}

func TestQuerySinceIsInclusive(t *testing.T) {
	el, _ := newTestLog(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, el.Append(fileEventAt(base.Add(-time.Hour), "old.pdf", models.EventTypeNewFile)))
	require.NoError(t, el.Append(fileEventAt(base, "boundary.pdf", models.EventTypeNewFile)))
	require.NoError(t, el.Append(fileEventAt(base.Add(time.Hour), "new.pdf", models.EventTypeNewFile)))

	events, err := el.Query(QueryOptions{Since: base})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "new.pdf", events[0].FileName)
	assert.Equal(t, "boundary.pdf", events[1].FileName)
}

func TestQueryLimitKeepsNewest(t *testing.T) {
	el, _ := newTestLog(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, el.Append(fileEventAt(base.Add(time.Duration(i)*time.Minute), "f.pdf", models.EventTypeNewFile)))
	}

	events, err := el.Query(QueryOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, base.Add(4*time.Minute), events[0].Timestamp)
	assert.Equal(t, base.Add(3*time.Minute), events[1].Timestamp)
}

func TestQueryMissingLogFile(t *testing.T) {
	el, _ := newTestLog(t)

	events, err := el.Query(QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestIngestEventShape(t *testing.T) {
	el, _ := newTestLog(t)

	require.NoError(t, el.Append(models.FileEvent{
		Timestamp:      time.Now(),
		EventType:      models.EventTypePDFIngestSuccess,
		FileName:       "doc.pdf",
		FilePath:       "/mnt/anvil/intake/hub/doc.pdf",
		Status:         models.JobStatusSuccess,
		JobType:        models.JobTypePDFIngest,
		CollectionName: "intel_3",
		FileCount:      1,
	}))

	events, err := el.Query(QueryOptions{EventType: models.EventTypePDFIngestSuccess})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "intel_3", events[0].CollectionName)
	assert.Equal(t, models.JobStatusSuccess, events[0].Status)
	assert.Equal(t, models.JobTypePDFIngest, events[0].JobType)
}

func TestCompactMovesAgedEvents(t *testing.T) {
	el, cfg := newTestLog(t)
	now := time.Now()

	require.NoError(t, el.Append(fileEventAt(now.Add(-60*24*time.Hour), "ancient.pdf", models.EventTypeNewFile)))
	require.NoError(t, el.Append(fileEventAt(now.Add(-45*24*time.Hour), "stale.pdf", models.EventTypeRetroactiveTag)))
	require.NoError(t, el.Append(fileEventAt(now, "fresh.pdf", models.EventTypeNewFile)))

	archiver := NewArchiver(el, cfg, zerolog.Nop())
	archived, err := archiver.Compact(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, archived)

	// Live log keeps only the fresh event.
	events, err := el.Query(QueryOptions{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "fresh.pdf", events[0].FileName)

	// The archive holds the aged ones.
	matches, err := filepath.Glob(filepath.Join(cfg.ArchiveDir, "events_*.parquet"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	records, err := ReadArchive(matches[0])
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ancient.pdf", records[0].FileName)
	assert.Equal(t, "stale.pdf", records[1].FileName)
}

func TestCompactNoAgedEvents(t *testing.T) {
	el, cfg := newTestLog(t)
	require.NoError(t, el.Append(fileEventAt(time.Now(), "fresh.pdf", models.EventTypeNewFile)))

	archiver := NewArchiver(el, cfg, zerolog.Nop())
	archived, err := archiver.Compact(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Zero(t, archived)

	matches, err := filepath.Glob(filepath.Join(cfg.ArchiveDir, "events_*.parquet"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
