package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"github.com/aleister1102/sharewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sharewatch/internal/config"
	"github.com/aleister1102/sharewatch/internal/models"
)

// ArchiveRecord is the parquet shape of an archived event. Timestamps are
// stored as unix milliseconds.
type ArchiveRecord struct {
	TimestampMs    int64  `parquet:"timestamp_ms"`
	EventType      string `parquet:"event_type"`
	FileName       string `parquet:"file_name,optional"`
	FilePath       string `parquet:"file_path,optional"`
	MD5Hash        string `parquet:"md5_hash,optional"`
	MimeType       string `parquet:"mime_type,optional"`
	SizeBytes      int64  `parquet:"size_bytes,optional"`
	IngestTimeMs   int64  `parquet:"ingest_time_ms,optional"`
	Status         string `parquet:"status,optional"`
	JobType        string `parquet:"job_type,optional"`
	CollectionName string `parquet:"collection_name,optional"`
	FileCount      int32  `parquet:"file_count,optional"`
	TagName        string `parquet:"tag_name,optional"`
	FilesAffected  int32  `parquet:"files_affected,optional"`
	Operation      string `parquet:"operation,optional"`
}

func toArchiveRecord(ev models.FileEvent) ArchiveRecord {
	rec := ArchiveRecord{
		TimestampMs:    ev.Timestamp.UnixMilli(),
		EventType:      ev.EventType,
		FileName:       ev.FileName,
		FilePath:       ev.FilePath,
		MD5Hash:        ev.MD5Hash,
		MimeType:       ev.MimeType,
		SizeBytes:      ev.SizeBytes,
		Status:         ev.Status,
		JobType:        ev.JobType,
		CollectionName: ev.CollectionName,
		FileCount:      int32(ev.FileCount),
		TagName:        ev.TagName,
		FilesAffected:  int32(ev.FilesAffected),
		Operation:      ev.Operation,
	}
	if !ev.IngestTime.IsZero() {
		rec.IngestTimeMs = ev.IngestTime.UnixMilli()
	}
	return rec
}

// Archiver rotates aged events out of the live JSONL log into compressed
// parquet files, keeping the live log small enough for linear queries.
type Archiver struct {
	eventLog *EventLog
	cfg      config.EventLogConfig
	logger   zerolog.Logger
}

// NewArchiver creates an Archiver over the given event log.
func NewArchiver(eventLog *EventLog, cfg config.EventLogConfig, logger zerolog.Logger) *Archiver {
	return &Archiver{
		eventLog: eventLog,
		cfg:      cfg,
		logger:   logger.With().Str("component", "EventArchiver").Logger(),
	}
}

// Compact moves events older than maxAge into a timestamped parquet file
// under the archive directory and rewrites the live log with the remainder.
// It returns the number of archived events. The live log is only rewritten
// after the archive file has been written successfully.
func (a *Archiver) Compact(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)

	a.eventLog.mu.Lock()
	defer a.eventLog.mu.Unlock()

	events, err := a.eventLog.readAll()
	if err != nil {
		return 0, err
	}

	var aged, recent []models.FileEvent
	for _, ev := range events {
		if ev.Timestamp.Before(cutoff) {
			aged = append(aged, ev)
		} else {
			recent = append(recent, ev)
		}
	}
	if len(aged) == 0 {
		return 0, nil
	}

	archivePath, err := a.writeArchive(aged)
	if err != nil {
		return 0, err
	}

	if err := a.eventLog.replaceAll(recent); err != nil {
		return 0, err
	}

	a.logger.Info().
		Int("archived", len(aged)).
		Int("retained", len(recent)).
		Str("archive", archivePath).
		Msg("Event log compacted")
	return len(aged), nil
}

func (a *Archiver) writeArchive(events []models.FileEvent) (string, error) {
	if err := os.MkdirAll(a.cfg.ArchiveDir, 0o755); err != nil {
		return "", errorwrapper.WrapError(err, "failed to create archive directory")
	}

	name := fmt.Sprintf("events_%s.parquet", time.Now().UTC().Format("20060102_150405"))
	archivePath := filepath.Join(a.cfg.ArchiveDir, name)

	file, err := os.Create(archivePath)
	if err != nil {
		return "", errorwrapper.WrapError(err, "failed to create archive file")
	}
	defer file.Close()

	records := make([]ArchiveRecord, 0, len(events))
	for _, ev := range events {
		records = append(records, toArchiveRecord(ev))
	}

	writer := parquet.NewGenericWriter[ArchiveRecord](file, parquet.Compression(&parquet.Snappy))
	if _, err := writer.Write(records); err != nil {
		writer.Close()
		return "", errorwrapper.WrapError(err, "failed to write archive records")
	}
	if err := writer.Close(); err != nil {
		return "", errorwrapper.WrapError(err, "failed to finalize archive file")
	}
	return archivePath, nil
}

// ReadArchive loads all records from one parquet archive file.
func ReadArchive(path string) ([]ArchiveRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to open archive file")
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to stat archive file")
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse archive file")
	}

	reader := parquet.NewGenericReader[ArchiveRecord](pqFile)
	defer reader.Close()

	var records []ArchiveRecord
	buf := make([]ArchiveRecord, 64)
	for {
		n, err := reader.Read(buf)
		records = append(records, buf[:n]...)
		if err != nil {
			break
		}
	}
	return records, nil
}
