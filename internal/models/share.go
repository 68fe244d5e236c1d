package models

// WatchedShare is a network-mounted export the monitor watches.
// Shares are discovered once at startup and are immutable for the
// lifetime of the service.
type WatchedShare struct {
	MountPath string `json:"mount_path"`
	Label     string `json:"label"`
}
