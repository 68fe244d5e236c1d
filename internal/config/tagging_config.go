package config

import "time"

// TaggingConfig defines how the external tagging toolkit is invoked.
type TaggingConfig struct {
	// HSCLIPath is the path to the storage toolkit binary used for tag and
	// objective operations.
	HSCLIPath string `json:"hs_cli_path,omitempty" yaml:"hs_cli_path,omitempty"`

	// CommandTimeoutSeconds bounds a single toolkit invocation.
	CommandTimeoutSeconds int `json:"command_timeout_seconds,omitempty" yaml:"command_timeout_seconds,omitempty" validate:"omitempty,min=1"`

	// MountRefreshScript is executed when a stale file handle is detected,
	// before the failed operation is retried once. Empty disables refresh.
	MountRefreshScript string `json:"mount_refresh_script,omitempty" yaml:"mount_refresh_script,omitempty"`

	// Tag keys stamped onto every processed file.
	IngestTagKey string `json:"ingest_tag_key,omitempty" yaml:"ingest_tag_key,omitempty"`
	MimeTagKey   string `json:"mime_tag_key,omitempty" yaml:"mime_tag_key,omitempty"`
}

// CommandTimeout returns the per-invocation timeout as a duration.
func (tc TaggingConfig) CommandTimeout() time.Duration {
	return time.Duration(tc.CommandTimeoutSeconds) * time.Second
}

// NewDefaultTaggingConfig creates default tagging configuration
func NewDefaultTaggingConfig() TaggingConfig {
	return TaggingConfig{
		HSCLIPath:             DefaultHSCLIPath,
		CommandTimeoutSeconds: DefaultTagCommandTimeoutSecs,
		MountRefreshScript:    DefaultMountRefreshScript,
		IngestTagKey:          DefaultIngestTagKey,
		MimeTagKey:            DefaultMimeTagKey,
	}
}
