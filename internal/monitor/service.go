package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/sharewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sharewatch/internal/config"
	"github.com/aleister1102/sharewatch/internal/dedup"
	"github.com/aleister1102/sharewatch/internal/eventlog"
	"github.com/aleister1102/sharewatch/internal/ingest"
	"github.com/aleister1102/sharewatch/internal/models"
)

// drainTimeout bounds how long shutdown spends on the final batch.
const drainTimeout = 30 * time.Second

// ServiceDependencies collects the collaborators the Service orchestrates.
type ServiceDependencies struct {
	Poller     *Poller
	Batcher    *Batcher
	Processor  *Processor
	Retro      *RetroScanner
	Sampler    *CPUSampler
	Archiver   *eventlog.Archiver
	Tracker    dedup.Tracker
	Completion *ingest.CompletionChecker
}

// Service owns the periodic scan loops of the share monitor: poll, batch
// flush, retroactive scan, CPU sampling and event log compaction. One
// Service instance maps to one configuration; there is no global state.
type Service struct {
	cfg    *config.GlobalConfig
	shares []models.WatchedShare
	deps   ServiceDependencies
	logger zerolog.Logger

	mu            sync.Mutex
	running       bool
	cancel        context.CancelFunc
	sched         *scheduler
	lastRetroScan time.Time
	retroTagged   int
}

// NewService creates a Service over the discovered shares.
func NewService(cfg *config.GlobalConfig, shares []models.WatchedShare, deps ServiceDependencies, logger zerolog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		shares: shares,
		deps:   deps,
		logger: logger.With().Str("component", "MonitorService").Logger(),
	}
}

// Start launches the periodic task loops. It returns immediately; the loops
// run until Stop or context cancellation.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errorwrapper.NewError("monitor service already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	mcfg := s.cfg.MonitorConfig
	sched := newScheduler(s.logger)
	sched.addTask("poll", mcfg.PollInterval(), s.pollOnce)
	sched.addTask("batch-flush", mcfg.PollInterval(), s.flushBatch)
	if mcfg.RetroScanEnabled {
		sched.addTask("retro-scan", mcfg.RetroScanInterval(), s.retroScanOnce)
	}
	sched.addTask("cpu-sample", mcfg.PollInterval()*time.Duration(s.cfg.ResourceConfig.SampleEveryNTicks), s.sampleCPU)
	if s.deps.Archiver != nil {
		sched.addTask("event-compact", 24*time.Hour, s.compactEvents)
	}
	sched.start(runCtx)

	s.sched = sched
	s.running = true

	paths := make([]string, 0, len(s.shares))
	for _, share := range s.shares {
		paths = append(paths, share.MountPath)
	}
	s.logger.Info().
		Strs("watch_paths", paths).
		Str("poll_interval", mcfg.PollInterval().String()).
		Str("batch_interval", mcfg.BatchInterval().String()).
		Msg("Monitor service started")
	return nil
}

// Stop halts the task loops, drains the pending batch and waits for
// in-flight ingest dispatches before closing the dedup tracker.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	sched := s.sched
	s.mu.Unlock()

	cancel()
	sched.wait()

	// The scan loops are down; give the remaining work its own deadline.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), drainTimeout)
	defer drainCancel()

	remaining := s.deps.Batcher.Drain()
	if len(remaining) > 0 {
		s.logger.Info().Int("count", len(remaining)).Msg("Processing final batch before shutdown")
		s.processBatch(drainCtx, remaining)
	}
	s.deps.Processor.WaitDispatches()
	if s.deps.Completion != nil {
		s.deps.Completion.Wait()
	}

	if err := s.deps.Tracker.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to close dedup tracker")
	}

	s.logger.Info().
		Int("known_files", s.deps.Poller.KnownCount()).
		Int("processed_files", s.deps.Tracker.Len()).
		Msg("Monitor service stopped")
}

// Status returns a point-in-time snapshot of the monitor.
func (s *Service) Status() models.MonitorStatus {
	s.mu.Lock()
	running := s.running
	lastRetro := s.lastRetroScan
	retroTagged := s.retroTagged
	s.mu.Unlock()

	paths := make([]string, 0, len(s.shares))
	for _, share := range s.shares {
		paths = append(paths, share.MountPath)
	}

	status := models.MonitorStatus{
		Running:             running,
		WatchPaths:          paths,
		PollInterval:        s.cfg.MonitorConfig.PollInterval().String(),
		BatchInterval:       s.cfg.MonitorConfig.BatchInterval().String(),
		PendingEvents:       s.deps.Batcher.PendingCount(),
		KnownFilesCount:     s.deps.Poller.KnownCount(),
		ProcessedFilesCount: s.deps.Tracker.Len(),
		RetroactiveTags:     retroTagged,
		LastBatchTime:       s.deps.Batcher.LastFlushTime(),
		LastRetroScanTime:   lastRetro,
		Timestamp:           time.Now(),
	}
	if s.deps.Sampler != nil {
		status.CPUUsage = s.deps.Sampler.Stats()
	}
	return status
}

func (s *Service) pollOnce(context.Context) {
	fresh := s.deps.Poller.Poll()
	if len(fresh) == 0 {
		return
	}
	s.logger.Info().Int("count", len(fresh)).Msg("New entries detected")
	s.deps.Batcher.Add(fresh...)
}

func (s *Service) flushBatch(ctx context.Context) {
	batch := s.deps.Batcher.Flush(time.Now())
	if len(batch) == 0 {
		return
	}
	s.processBatch(ctx, batch)
}

func (s *Service) processBatch(ctx context.Context, batch []string) {
	s.logger.Info().Int("count", len(batch)).Msg("Processing batch")

	for _, path := range batch {
		if ctx.Err() != nil {
			// Put what we could not get to back in the queue.
			s.deps.Batcher.Requeue(path)
			continue
		}

		err := checkStability(path, s.cfg.MonitorConfig.StabilityCheckDelay())
		switch {
		case errors.Is(err, errorwrapper.ErrFileVanished):
			s.logger.Info().Str("path", path).Msg("File vanished before processing")
			continue
		case errors.Is(err, errorwrapper.ErrUnstableFile):
			s.logger.Debug().Str("path", path).Msg("File still being written, deferring")
			s.deps.Batcher.Requeue(path)
			continue
		case err != nil:
			s.logger.Warn().Err(err).Str("path", path).Msg("Stability check failed, leaving for retroactive scan")
			continue
		}

		// Process handles its own failures; the path is marked either way.
		_ = s.deps.Processor.Process(ctx, path, models.EventTypeNewFile)
	}
}

func (s *Service) retroScanOnce(ctx context.Context) {
	tagged := s.deps.Retro.Scan(ctx)

	s.mu.Lock()
	s.lastRetroScan = time.Now()
	s.retroTagged += tagged
	s.mu.Unlock()
}

func (s *Service) sampleCPU(context.Context) {
	if s.deps.Sampler != nil {
		s.deps.Sampler.Sample()
	}
}

func (s *Service) compactEvents(context.Context) {
	retention := time.Duration(s.cfg.EventLogConfig.ArchiveRetentionDays) * 24 * time.Hour
	if _, err := s.deps.Archiver.Compact(retention); err != nil {
		s.logger.Error().Err(err).Msg("Event log compaction failed")
	}
}
