package config

// DiscoveryConfig defines how watched shares are discovered from the local
// mount table at startup.
type DiscoveryConfig struct {
	// MountRootPrefix is the directory under which network shares are
	// mounted. The root mount itself is never watched.
	MountRootPrefix string `json:"mount_root_prefix,omitempty" yaml:"mount_root_prefix,omitempty"`

	// FilesystemTypes lists the mount filesystem types treated as network
	// shares.
	FilesystemTypes []string `json:"filesystem_types,omitempty" yaml:"filesystem_types,omitempty"`

	// StaticShares bypasses mount-table discovery entirely when non-empty;
	// each entry is watched as-is. Useful for tests and fixed deployments.
	StaticShares []string `json:"static_shares,omitempty" yaml:"static_shares,omitempty"`
}

// NewDefaultDiscoveryConfig creates default discovery configuration
func NewDefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		MountRootPrefix: DefaultMountRootPrefix,
		FilesystemTypes: []string{"nfs", "nfs4"},
	}
}
