package ingest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/sharewatch/internal/common/cmdrunner"
	"github.com/aleister1102/sharewatch/internal/config"
	"github.com/aleister1102/sharewatch/internal/models"
)

// CompletionChecker verifies, some time after submission, that an ingest job
// actually ran to completion in the cluster, and records the outcome. A
// submitted job only means the manifests were applied; the job itself can
// still fail or hang.
type CompletionChecker struct {
	cfg    config.IngestConfig
	runner cmdrunner.CommandRunner
	events EventAppender
	logger zerolog.Logger

	wg sync.WaitGroup
}

// NewCompletionChecker creates a CompletionChecker.
func NewCompletionChecker(cfg config.IngestConfig, runner cmdrunner.CommandRunner, events EventAppender, logger zerolog.Logger) *CompletionChecker {
	return &CompletionChecker{
		cfg:    cfg,
		runner: runner,
		events: events,
		logger: logger.With().Str("component", "CompletionChecker").Logger(),
	}
}

// ScheduleCheck queues a completion check for job after the configured delay,
// on its own goroutine. A zero delay disables checking; a cancelled context
// abandons the check without an event.
func (c *CompletionChecker) ScheduleCheck(ctx context.Context, job *models.IngestJob) {
	if job == nil || c.cfg.CompletionCheckDelaySeconds <= 0 {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		timer := time.NewTimer(c.cfg.CompletionCheckDelay())
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		c.check(ctx, job)
	}()
}

// Wait blocks until every scheduled check has finished or been abandoned.
func (c *CompletionChecker) Wait() {
	c.wg.Wait()
}

// check asks the cluster for the job's succeeded count and emits an
// EMBEDDING_COMPLETE or EMBEDDING_INCOMPLETE event.
func (c *CompletionChecker) check(ctx context.Context, job *models.IngestJob) {
	checkCtx, cancel := context.WithTimeout(ctx, c.cfg.SubmitTimeout())
	defer cancel()

	stdout, stderr, err := c.runner.Run(checkCtx, nil, c.cfg.KubectlPath,
		"get", "job", job.JobName,
		"-n", c.cfg.JobNamespace,
		"-o", "jsonpath={.status.succeeded}")

	succeeded := strings.TrimSpace(stdout)
	complete := err == nil && succeeded != "" && succeeded != "0"
	if err != nil {
		c.logger.Warn().Err(err).
			Str("job", job.JobName).
			Str("stderr", strings.TrimSpace(stderr)).
			Msg("Job completion check failed")
	}

	event := models.FileEvent{
		Timestamp:      time.Now(),
		EventType:      models.EventTypeEmbeddingComplete,
		Status:         models.JobStatusSuccess,
		JobType:        job.JobType,
		CollectionName: job.CollectionName,
		FileCount:      len(job.TargetFiles),
	}
	if !complete {
		event.EventType = models.EventTypeEmbeddingIncomplete
		event.Status = models.JobStatusFailure
	}
	if appendErr := c.events.Append(event); appendErr != nil {
		c.logger.Error().Err(appendErr).Str("job", job.JobName).Msg("Failed to record completion event")
	}

	c.logger.Info().
		Str("job", job.JobName).
		Str("collection", job.CollectionName).
		Bool("complete", complete).
		Msg("Ingest job completion checked")
}
