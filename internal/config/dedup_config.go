package config

// DedupConfig selects the backing store of the processed-files tracker.
// The in-memory store resets on restart (redundant re-tagging across
// restarts is accepted); the sqlite store persists processed paths for
// cross-restart dedup.
type DedupConfig struct {
	Store      string `json:"store,omitempty" yaml:"store,omitempty" validate:"omitempty,dedupstore"`
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
}

// NewDefaultDedupConfig creates default dedup configuration
func NewDefaultDedupConfig() DedupConfig {
	return DedupConfig{
		Store:      DefaultDedupStore,
		SQLitePath: DefaultDedupSQLitePath,
	}
}
