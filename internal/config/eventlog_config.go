package config

// EventLogConfig defines the append-only ingestion event log and its
// parquet archive.
type EventLogConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// ArchiveDir receives compacted parquet files when events older than
	// the retention window are rotated out of the live log.
	ArchiveDir           string `json:"archive_dir,omitempty" yaml:"archive_dir,omitempty"`
	ArchiveRetentionDays int    `json:"archive_retention_days,omitempty" yaml:"archive_retention_days,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultEventLogConfig creates default event log configuration
func NewDefaultEventLogConfig() EventLogConfig {
	return EventLogConfig{
		Path:                 DefaultEventLogPath,
		ArchiveDir:           DefaultArchiveDir,
		ArchiveRetentionDays: DefaultArchiveRetentionDays,
	}
}
