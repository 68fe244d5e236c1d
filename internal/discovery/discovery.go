package discovery

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aleister1102/sharewatch/internal/config"
	"github.com/aleister1102/sharewatch/internal/models"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

// partitionLister is the seam over the mount table, so tests can feed a
// synthetic table.
type partitionLister func(ctx context.Context, all bool) ([]disk.PartitionStat, error)

// Discoverer enumerates network-filesystem mounts to watch.
type Discoverer struct {
	cfg        config.DiscoveryConfig
	logger     zerolog.Logger
	partitions partitionLister
}

// NewDiscoverer creates a new share discoverer.
func NewDiscoverer(cfg config.DiscoveryConfig, logger zerolog.Logger) *Discoverer {
	return &Discoverer{
		cfg:        cfg,
		logger:     logger.With().Str("component", "Discoverer").Logger(),
		partitions: disk.PartitionsWithContext,
	}
}

// DiscoverShares returns the watched shares: every network-filesystem mount
// under the configured root prefix, excluding the root mount itself. An
// empty result is not an error; the service simply idles.
func (d *Discoverer) DiscoverShares(ctx context.Context) ([]models.WatchedShare, error) {
	if len(d.cfg.StaticShares) > 0 {
		return d.staticShares(), nil
	}

	parts, err := d.partitions(ctx, true)
	if err != nil {
		return nil, err
	}

	root := filepath.Clean(d.cfg.MountRootPrefix)
	var shares []models.WatchedShare
	for _, p := range parts {
		if !d.isNetworkFS(p.Fstype) {
			continue
		}
		mount := filepath.Clean(p.Mountpoint)
		if mount == root || !strings.HasPrefix(mount, root+string(filepath.Separator)) {
			continue
		}
		shares = append(shares, models.WatchedShare{
			MountPath: mount,
			Label:     filepath.Base(mount),
		})
	}

	sort.Slice(shares, func(i, j int) bool { return shares[i].MountPath < shares[j].MountPath })

	if len(shares) == 0 {
		d.logger.Warn().Str("root_prefix", root).Msg("No network shares found under root prefix")
	} else {
		d.logger.Info().Int("count", len(shares)).Str("root_prefix", root).Msg("Discovered watched shares")
	}
	return shares, nil
}

func (d *Discoverer) isNetworkFS(fstype string) bool {
	for _, t := range d.cfg.FilesystemTypes {
		if strings.EqualFold(t, fstype) {
			return true
		}
	}
	return false
}

func (d *Discoverer) staticShares() []models.WatchedShare {
	shares := make([]models.WatchedShare, 0, len(d.cfg.StaticShares))
	for _, path := range d.cfg.StaticShares {
		mount := filepath.Clean(path)
		shares = append(shares, models.WatchedShare{MountPath: mount, Label: filepath.Base(mount)})
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].MountPath < shares[j].MountPath })
	d.logger.Info().Int("count", len(shares)).Msg("Using statically configured shares")
	return shares
}
