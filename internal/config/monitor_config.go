package config

import "time"

// MonitorConfig defines configuration for the poll scanner, event batcher
// and retroactive scanner. Polling is used instead of inotify because
// change notification is unreliable over NFS.
type MonitorConfig struct {
	PollIntervalSeconds      int `json:"poll_interval_seconds,omitempty" yaml:"poll_interval_seconds,omitempty" validate:"omitempty,min=1"`
	BatchIntervalSeconds     int `json:"batch_interval_seconds,omitempty" yaml:"batch_interval_seconds,omitempty" validate:"omitempty,min=1"`
	BatchFlushThreshold      int `json:"batch_flush_threshold,omitempty" yaml:"batch_flush_threshold,omitempty" validate:"omitempty,min=1"`
	RetroScanIntervalSeconds int `json:"retro_scan_interval_seconds,omitempty" yaml:"retro_scan_interval_seconds,omitempty" validate:"omitempty,min=1"`
	StabilityCheckDelayMs    int `json:"stability_check_delay_ms,omitempty" yaml:"stability_check_delay_ms,omitempty" validate:"omitempty,min=1"`
	MaxConcurrentDispatches  int `json:"max_concurrent_dispatches,omitempty" yaml:"max_concurrent_dispatches,omitempty" validate:"omitempty,min=1"`

	// RetroScanEnabled gates the retroactive scanner independently of the
	// poll loop. RetroScanStartHour/EndHour bound the local hours during
	// which retroactive tagging may run; both zero means always active.
	RetroScanEnabled   bool `json:"retro_scan_enabled" yaml:"retro_scan_enabled"`
	RetroScanStartHour int  `json:"retro_scan_start_hour,omitempty" yaml:"retro_scan_start_hour,omitempty" validate:"omitempty,min=0,max=23"`
	RetroScanEndHour   int  `json:"retro_scan_end_hour,omitempty" yaml:"retro_scan_end_hour,omitempty" validate:"omitempty,min=0,max=23"`

	// RetroScanUserFilesOnly restricts retroactive tagging to files owned by
	// regular users (uid >= 1000), skipping root/system artifacts.
	RetroScanUserFilesOnly bool `json:"retro_scan_user_files_only" yaml:"retro_scan_user_files_only"`
}

// PollInterval returns the poll cadence as a duration.
func (mc MonitorConfig) PollInterval() time.Duration {
	return time.Duration(mc.PollIntervalSeconds) * time.Second
}

// BatchInterval returns the batch hold window as a duration.
func (mc MonitorConfig) BatchInterval() time.Duration {
	return time.Duration(mc.BatchIntervalSeconds) * time.Second
}

// RetroScanInterval returns the retroactive scan cadence as a duration.
func (mc MonitorConfig) RetroScanInterval() time.Duration {
	return time.Duration(mc.RetroScanIntervalSeconds) * time.Second
}

// StabilityCheckDelay returns the pause between the two size probes of the
// in-progress-write check.
func (mc MonitorConfig) StabilityCheckDelay() time.Duration {
	return time.Duration(mc.StabilityCheckDelayMs) * time.Millisecond
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		PollIntervalSeconds:      DefaultPollIntervalSeconds,
		BatchIntervalSeconds:     DefaultBatchIntervalSeconds,
		BatchFlushThreshold:      DefaultBatchFlushThreshold,
		RetroScanIntervalSeconds: DefaultRetroScanIntervalSeconds,
		StabilityCheckDelayMs:    DefaultStabilityCheckDelayMs,
		MaxConcurrentDispatches:  DefaultMaxConcurrentDispatches,
		RetroScanEnabled:         true,
		RetroScanUserFilesOnly:   true,
	}
}
