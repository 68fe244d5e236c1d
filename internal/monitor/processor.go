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
	"github.com/aleister1102/sharewatch/internal/fingerprint"
	"github.com/aleister1102/sharewatch/internal/ingest"
	"github.com/aleister1102/sharewatch/internal/models"
	"github.com/aleister1102/sharewatch/internal/tagging"
)

// EventAppender records pipeline events.
type EventAppender interface {
	Append(event models.FileEvent) error
}

// Processor runs one path through the fingerprint, tag and log pipeline, then
// hands eligible documents to the ingest trigger on a bounded set of
// dispatch goroutines so a slow cluster call never stalls the scan loop.
//
// Every path gets exactly one processing attempt: it is marked processed
// even when tagging fails, trading a possibly untagged file for protection
// against retry loops. Only a path that vanished before the attempt stays
// unmarked.
type Processor struct {
	fingerprinter *fingerprint.Fingerprinter
	backend       tagging.Backend
	tracker       dedup.Tracker
	events        EventAppender
	trigger       *ingest.Trigger
	tagCfg        config.TaggingConfig

	dispatchSlots chan struct{}
	dispatchWG    sync.WaitGroup
	logger        zerolog.Logger
}

// NewProcessor creates a Processor. trigger may be nil when ingestion is
// disabled.
func NewProcessor(
	fingerprinter *fingerprint.Fingerprinter,
	backend tagging.Backend,
	tracker dedup.Tracker,
	events EventAppender,
	trigger *ingest.Trigger,
	tagCfg config.TaggingConfig,
	maxDispatches int,
	logger zerolog.Logger,
) *Processor {
	if maxDispatches < 1 {
		maxDispatches = 1
	}
	return &Processor{
		fingerprinter: fingerprinter,
		backend:       backend,
		tracker:       tracker,
		events:        events,
		trigger:       trigger,
		tagCfg:        tagCfg,
		dispatchSlots: make(chan struct{}, maxDispatches),
		logger:        logger.With().Str("component", "Processor").Logger(),
	}
}

// Process runs the pipeline for one path, stamping eventType on the logged
// record. A vanished file returns ErrFileVanished without marking the path,
// leaving it eligible for a later cycle. A path already in the tracker is
// skipped outright: the batch queue and the retroactive scanner can race on
// the same path, and whichever loses the race must not tag or log it again.
func (p *Processor) Process(ctx context.Context, path, eventType string) error {
	if p.tracker.AlreadyProcessed(path) {
		p.logger.Debug().Str("path", path).Msg("Path already processed, skipping")
		return nil
	}

	result, err := p.fingerprinter.Fingerprint(path)
	if err != nil {
		if errors.Is(err, errorwrapper.ErrFileVanished) {
			p.logger.Info().Str("path", path).Msg("File vanished before processing")
			return err
		}
		p.markProcessed(path)
		p.logger.Error().Err(err).Str("path", path).Msg("Fingerprinting failed")
		return err
	}

	tagErr := p.applyTags(ctx, path, result)
	if tagErr != nil {
		p.logger.Error().Err(tagErr).Str("path", path).Msg("Tagging failed, path will not be retried")
	}

	now := time.Now()
	event := models.NewFileEvent(eventType, path, result.MD5Hash, result.MimeType, result.SizeBytes, now)
	if err := p.events.Append(event); err != nil {
		p.logger.Error().Err(err).Str("path", path).Msg("Failed to record tagging event")
	} else {
		p.logger.Info().
			Str("event", eventType).
			Str("path", path).
			Str("md5", result.MD5Hash).
			Str("mime", result.MimeType).
			Msg("File tagged")
	}

	p.markProcessed(path)

	// Only freshly detected files spawn ingest jobs. The retroactive scan
	// exists to backfill tags; letting it submit jobs would re-ingest every
	// inbox folder after a restart.
	if eventType == models.EventTypeNewFile {
		p.dispatchIngest(ctx, path, result)
	}
	return tagErr
}

func (p *Processor) applyTags(ctx context.Context, path string, result *fingerprint.Result) error {
	if err := p.backend.SetTag(ctx, path, p.tagCfg.IngestTagKey, result.MD5Hash); err != nil {
		return err
	}
	return p.backend.SetTag(ctx, path, p.tagCfg.MimeTagKey, result.MimeType)
}

func (p *Processor) markProcessed(path string) {
	if err := p.tracker.MarkProcessed(path); err != nil {
		p.logger.Error().Err(err).Str("path", path).Msg("Failed to mark path processed")
	}
}

// dispatchIngest starts the ingest evaluation on its own goroutine. The slot
// channel bounds how many submissions run at once; excess dispatches queue
// inside their goroutines instead of blocking the caller.
func (p *Processor) dispatchIngest(ctx context.Context, path string, result *fingerprint.Result) {
	if p.trigger == nil {
		return
	}
	if result.IsDir {
		if !p.trigger.ShouldIngestFolder(path) {
			return
		}
	} else if !p.trigger.ShouldIngest(path, result.MimeType) {
		return
	}

	p.dispatchWG.Add(1)
	go func() {
		defer p.dispatchWG.Done()
		select {
		case p.dispatchSlots <- struct{}{}:
			defer func() { <-p.dispatchSlots }()
		case <-ctx.Done():
			return
		}

		var job *models.IngestJob
		var err error
		if result.IsDir {
			job, err = p.trigger.RunFolder(ctx, path)
		} else {
			job, err = p.trigger.RunFile(ctx, path)
		}
		if err != nil {
			p.logger.Error().Err(err).Str("path", path).Msg("Ingest dispatch failed")
			return
		}
		if job != nil {
			p.logger.Info().
				Str("job", job.JobName).
				Str("collection", job.CollectionName).
				Int("files", len(job.TargetFiles)).
				Msg("Ingest job dispatched")
		}
	}()
}

// WaitDispatches blocks until all in-flight ingest dispatches finish.
func (p *Processor) WaitDispatches() {
	p.dispatchWG.Wait()
}
