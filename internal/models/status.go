package models

import "time"

// CPUStats is a point-in-time summary of the process CPU sample window.
type CPUStats struct {
	CurrentPercent float64 `json:"current_cpu_percent"`
	AveragePercent float64 `json:"average_cpu_percent"`
	MaxPercent     float64 `json:"max_cpu_percent"`
	SampleCount    int     `json:"samples_count"`
}

// MonitorStatus is a point-in-time snapshot of the file monitor, exposed to
// callers through the status query.
type MonitorStatus struct {
	Running             bool      `json:"running"`
	WatchPaths          []string  `json:"watch_paths"`
	PollInterval        string    `json:"poll_interval"`
	BatchInterval       string    `json:"batch_interval"`
	PendingEvents       int       `json:"pending_events"`
	KnownFilesCount     int       `json:"known_files_count"`
	ProcessedFilesCount int       `json:"processed_files_count"`
	RetroactiveTags     int       `json:"files_tagged_retroactively"`
	LastBatchTime       time.Time `json:"last_batch_time"`
	LastRetroScanTime   time.Time `json:"last_retro_scan_time"`
	CPUUsage            CPUStats  `json:"cpu_usage"`
	Timestamp           time.Time `json:"timestamp"`
}
