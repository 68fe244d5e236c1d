package monitor

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/sharewatch/internal/common/fileutil"
	"github.com/aleister1102/sharewatch/internal/dedup"
	"github.com/aleister1102/sharewatch/internal/models"
)

// Poller diffs the top level of every watched share against what it has seen
// before. Polling is used instead of change notification because inotify is
// unreliable over NFS. Entries are never recursed into; a dropped directory
// is detected as one new entry.
type Poller struct {
	shares  []models.WatchedShare
	tracker dedup.Tracker
	logger  zerolog.Logger

	mu    sync.Mutex
	known map[string]map[string]struct{}
}

// NewPoller creates a Poller over the given shares.
func NewPoller(shares []models.WatchedShare, tracker dedup.Tracker, logger zerolog.Logger) *Poller {
	return &Poller{
		shares:  shares,
		tracker: tracker,
		logger:  logger.With().Str("component", "Poller").Logger(),
		known:   make(map[string]map[string]struct{}),
	}
}

type observedEntry struct {
	path  string
	atime time.Time
}

// Poll scans every share once and returns the paths not seen before,
// newest access first. The first scan of a share only seeds its known set:
// files predating the monitor are the retroactive scanner's job, not a flood
// of NEW_FILE events.
func (p *Poller) Poll() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var fresh []observedEntry
	for _, share := range p.shares {
		entries, err := os.ReadDir(share.MountPath)
		if err != nil {
			p.logger.Warn().Err(err).Str("share", share.MountPath).Msg("Share scan failed")
			continue
		}

		knownSet, seeded := p.known[share.MountPath]
		if !seeded {
			knownSet = make(map[string]struct{})
			p.known[share.MountPath] = knownSet
		}

		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			path := filepath.Join(share.MountPath, name)
			if _, ok := knownSet[path]; ok {
				continue
			}
			knownSet[path] = struct{}{}
			if !seeded {
				continue
			}
			if p.tracker.AlreadyProcessed(path) {
				continue
			}

			atime := time.Now()
			if info, err := entry.Info(); err == nil {
				atime = fileutil.Atime(info)
			}
			fresh = append(fresh, observedEntry{path: path, atime: atime})
		}
	}

	sort.Slice(fresh, func(i, j int) bool {
		return fresh[i].atime.After(fresh[j].atime)
	})

	paths := make([]string, 0, len(fresh))
	for _, e := range fresh {
		paths = append(paths, e.path)
	}
	return paths
}

// KnownCount returns the total number of entries across all share known
// sets. Known sets never shrink within one service run.
func (p *Poller) KnownCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, set := range p.known {
		total += len(set)
	}
	return total
}
