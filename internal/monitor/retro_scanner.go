package monitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/sharewatch/internal/common/fileutil"
	"github.com/aleister1102/sharewatch/internal/config"
	"github.com/aleister1102/sharewatch/internal/dedup"
	"github.com/aleister1102/sharewatch/internal/models"
)

// firstUserUID is the lowest uid treated as a regular user; files owned by
// system accounts below it are skipped when the user-files-only filter is on.
const firstUserUID = 1000

// RetroScanner gives files that predate the monitor, or that a poll race
// missed, their eventual tags. It routes anything not yet processed through
// the same pipeline as new files, stamped RETROACTIVE_TAG instead of
// NEW_FILE.
type RetroScanner struct {
	cfg     config.MonitorConfig
	shares  []models.WatchedShare
	tracker dedup.Tracker
	process func(ctx context.Context, path, eventType string) error
	logger  zerolog.Logger
	now     func() time.Time
}

// NewRetroScanner creates a RetroScanner feeding paths into process.
func NewRetroScanner(
	cfg config.MonitorConfig,
	shares []models.WatchedShare,
	tracker dedup.Tracker,
	process func(ctx context.Context, path, eventType string) error,
	logger zerolog.Logger,
) *RetroScanner {
	return &RetroScanner{
		cfg:     cfg,
		shares:  shares,
		tracker: tracker,
		process: process,
		logger:  logger.With().Str("component", "RetroScanner").Logger(),
		now:     time.Now,
	}
}

// Active reports whether the scanner may run at this moment, honoring the
// configured hours-of-day window. Start and end both zero means always.
func (rs *RetroScanner) Active() bool {
	if !rs.cfg.RetroScanEnabled {
		return false
	}
	start, end := rs.cfg.RetroScanStartHour, rs.cfg.RetroScanEndHour
	if start == 0 && end == 0 {
		return true
	}
	hour := rs.now().Hour()
	if start < end {
		return hour >= start && hour < end
	}
	// Window wraps past midnight.
	return hour >= start || hour < end
}

// Scan walks every share's top level and processes unseen paths. It returns
// the number of paths tagged retroactively.
func (rs *RetroScanner) Scan(ctx context.Context) int {
	if !rs.Active() {
		return 0
	}

	tagged := 0
	for _, share := range rs.shares {
		entries, err := os.ReadDir(share.MountPath)
		if err != nil {
			rs.logger.Warn().Err(err).Str("share", share.MountPath).Msg("Retroactive scan of share failed")
			continue
		}

		for _, entry := range entries {
			if ctx.Err() != nil {
				return tagged
			}
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			// The retroactive pass backfills file tags only; directories
			// are handled by the new-file path when they first appear.
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(share.MountPath, name)
			if rs.tracker.AlreadyProcessed(path) {
				continue
			}
			if rs.cfg.RetroScanUserFilesOnly {
				info, err := entry.Info()
				if err != nil {
					continue
				}
				if uid := fileutil.OwnerUID(info); uid >= 0 && uid < firstUserUID {
					continue
				}
			}

			if err := rs.process(ctx, path, models.EventTypeRetroactiveTag); err == nil {
				tagged++
			}
		}
	}

	if tagged > 0 {
		rs.logger.Info().Int("tagged", tagged).Msg("Retroactive scan tagged files")
	}
	return tagged
}
