package dedup

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/aleister1102/sharewatch/internal/common/errorwrapper"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS processed_files (
	path TEXT PRIMARY KEY,
	marked_at TIMESTAMP NOT NULL
);`

// SQLiteTracker persists processed paths so dedup survives restarts. This is
// the opt-in alternative to the in-memory tracker for deployments that must
// not retag after a restart.
type SQLiteTracker struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteTracker opens (creating if needed) the tracker database at dbPath.
func NewSQLiteTracker(dbPath string, logger zerolog.Logger) (*SQLiteTracker, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create dedup database directory")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to open dedup database")
	}
	// One writer at a time keeps modernc's driver happy.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errorwrapper.WrapError(err, "failed to initialize dedup schema")
	}

	return &SQLiteTracker{
		db:     db,
		logger: logger.With().Str("component", "SQLiteTracker").Logger(),
	}, nil
}

func (t *SQLiteTracker) AlreadyProcessed(path string) bool {
	var one int
	err := t.db.QueryRow("SELECT 1 FROM processed_files WHERE path = ?", path).Scan(&one)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.logger.Error().Err(err).Str("path", path).Msg("Dedup lookup failed, treating as unprocessed")
		return false
	}
	return true
}

func (t *SQLiteTracker) MarkProcessed(path string) error {
	_, err := t.db.Exec(
		"INSERT INTO processed_files (path, marked_at) VALUES (?, ?) ON CONFLICT(path) DO NOTHING",
		path, time.Now().UTC(),
	)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to mark path processed")
	}
	return nil
}

func (t *SQLiteTracker) Len() int {
	var count int
	if err := t.db.QueryRow("SELECT COUNT(*) FROM processed_files").Scan(&count); err != nil {
		t.logger.Error().Err(err).Msg("Dedup count failed")
		return 0
	}
	return count
}

func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}
