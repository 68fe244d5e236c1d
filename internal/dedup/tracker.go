package dedup

import (
	"github.com/rs/zerolog"

	"github.com/aleister1102/sharewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sharewatch/internal/config"
)

// Tracker records which paths have completed (or attempted) tagging. A path
// is marked exactly once, right after its single processing attempt,
// regardless of the attempt's outcome.
type Tracker interface {
	AlreadyProcessed(path string) bool
	MarkProcessed(path string) error
	Len() int
	Close() error
}

// NewTracker builds the tracker selected by configuration.
func NewTracker(cfg config.DedupConfig, logger zerolog.Logger) (Tracker, error) {
	switch cfg.Store {
	case config.DedupStoreMemory, "":
		return NewMemoryTracker(), nil
	case config.DedupStoreSQLite:
		return NewSQLiteTracker(cfg.SQLitePath, logger)
	default:
		return nil, errorwrapper.NewError("unknown dedup store: %s", cfg.Store)
	}
}
