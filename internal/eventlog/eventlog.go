package eventlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/sharewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sharewatch/internal/config"
	"github.com/aleister1102/sharewatch/internal/models"
)

// EventLog is the append-only ingestion history, one JSON object per line.
// Appends are mutex-serialized; the file is opened O_APPEND per write so an
// external rotation never strands a stale handle.
type EventLog struct {
	mu     sync.Mutex
	path   string
	logger zerolog.Logger
}

// NewEventLog creates the event log at the configured path, creating parent
// directories as needed.
func NewEventLog(cfg config.EventLogConfig, logger zerolog.Logger) (*EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create event log directory")
	}
	return &EventLog{
		path:   cfg.Path,
		logger: logger.With().Str("component", "EventLog").Logger(),
	}, nil
}

// Path returns the live log file location.
func (el *EventLog) Path() string {
	return el.path
}

// Append writes one event as a single JSON line.
func (el *EventLog) Append(event models.FileEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to encode event")
	}

	el.mu.Lock()
	defer el.mu.Unlock()

	file, err := os.OpenFile(el.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to open event log")
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return errorwrapper.WrapError(err, "failed to append event")
	}
	return nil
}

// QueryOptions narrows an event log query. Zero values mean "no filter";
// Limit 0 means no cap.
type QueryOptions struct {
	Limit       int
	EventType   string
	FilePattern string
	Since       time.Time
}

// Query returns matching events newest-first. FilePattern is a
// case-insensitive substring match on the file name; Since is inclusive.
func (el *EventLog) Query(opts QueryOptions) ([]models.FileEvent, error) {
	el.mu.Lock()
	defer el.mu.Unlock()

	events, err := el.readAll()
	if err != nil {
		return nil, err
	}

	pattern := strings.ToLower(opts.FilePattern)
	var matched []models.FileEvent
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if opts.EventType != "" && ev.EventType != opts.EventType {
			continue
		}
		if pattern != "" && !strings.Contains(strings.ToLower(ev.FileName), pattern) {
			continue
		}
		if !opts.Since.IsZero() && ev.Timestamp.Before(opts.Since) {
			continue
		}
		matched = append(matched, ev)
		if opts.Limit > 0 && len(matched) >= opts.Limit {
			break
		}
	}
	return matched, nil
}

// readAll parses every line of the live log, skipping malformed ones.
// Caller holds the mutex.
func (el *EventLog) readAll() ([]models.FileEvent, error) {
	file, err := os.Open(el.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errorwrapper.WrapError(err, "failed to open event log")
	}
	defer file.Close()

	var events []models.FileEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev models.FileEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			el.logger.Warn().Err(err).Msg("Skipping malformed event log line")
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read event log")
	}
	return events, nil
}

// replaceAll atomically rewrites the live log with the given events.
// Caller holds the mutex.
func (el *EventLog) replaceAll(events []models.FileEvent) error {
	tmpPath := el.path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to create temporary event log")
	}

	writer := bufio.NewWriter(file)
	for _, ev := range events {
		line, err := json.Marshal(ev)
		if err != nil {
			file.Close()
			return errorwrapper.WrapError(err, "failed to encode event")
		}
		if _, err := writer.Write(append(line, '\n')); err != nil {
			file.Close()
			return errorwrapper.WrapError(err, "failed to write event")
		}
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return errorwrapper.WrapError(err, "failed to flush event log")
	}
	if err := file.Close(); err != nil {
		return errorwrapper.WrapError(err, "failed to close temporary event log")
	}
	if err := os.Rename(tmpPath, el.path); err != nil {
		return errorwrapper.WrapError(err, "failed to replace event log")
	}
	return nil
}
