package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/sharewatch/internal/config"
	"github.com/aleister1102/sharewatch/internal/models"
)

func testJob() *models.IngestJob {
	return &models.IngestJob{
		JobName:        "pdf-ingest-20260801-120000",
		JobType:        models.JobTypePDFIngest,
		CollectionName: "intel_2",
		TargetFiles:    []string{"/data/doc.pdf"},
		Status:         models.JobStatusSuccess,
		SubmittedAt:    time.Now(),
	}
}

func TestCompletionCheckSucceededJob(t *testing.T) {
	runner := &scriptedRunner{stdout: "1\n"}
	appender := &fakeAppender{}
	checker := NewCompletionChecker(config.NewDefaultIngestConfig(), runner, appender, zerolog.Nop())

	checker.check(context.Background(), testJob())

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "kubectl", call.name)
	assert.Equal(t, []string{
		"get", "job", "pdf-ingest-20260801-120000",
		"-n", "default",
		"-o", "jsonpath={.status.succeeded}",
	}, call.args)

	require.Len(t, appender.events, 1)
	event := appender.events[0]
	assert.Equal(t, models.EventTypeEmbeddingComplete, event.EventType)
	assert.Equal(t, models.JobStatusSuccess, event.Status)
	assert.Equal(t, models.JobTypePDFIngest, event.JobType)
	assert.Equal(t, "intel_2", event.CollectionName)
	assert.Equal(t, 1, event.FileCount)
}

func TestCompletionCheckJobNotFinished(t *testing.T) {
	runner := &scriptedRunner{stdout: ""}
	appender := &fakeAppender{}
	checker := NewCompletionChecker(config.NewDefaultIngestConfig(), runner, appender, zerolog.Nop())

	checker.check(context.Background(), testJob())

	require.Len(t, appender.events, 1)
	assert.Equal(t, models.EventTypeEmbeddingIncomplete, appender.events[0].EventType)
	assert.Equal(t, models.JobStatusFailure, appender.events[0].Status)
}

func TestCompletionCheckKubectlError(t *testing.T) {
	runner := &scriptedRunner{stderr: "not found", err: errors.New("exit status 1")}
	appender := &fakeAppender{}
	checker := NewCompletionChecker(config.NewDefaultIngestConfig(), runner, appender, zerolog.Nop())

	checker.check(context.Background(), testJob())

	require.Len(t, appender.events, 1)
	assert.Equal(t, models.EventTypeEmbeddingIncomplete, appender.events[0].EventType)
}

func TestScheduleCheckDisabledByZeroDelay(t *testing.T) {
	cfg := config.NewDefaultIngestConfig()
	cfg.CompletionCheckDelaySeconds = 0
	runner := &scriptedRunner{stdout: "1"}
	appender := &fakeAppender{}
	checker := NewCompletionChecker(cfg, runner, appender, zerolog.Nop())

	checker.ScheduleCheck(context.Background(), testJob())
	checker.Wait()

	assert.Empty(t, runner.calls)
	assert.Empty(t, appender.events)
}

func TestScheduleCheckAbandonedOnCancel(t *testing.T) {
	cfg := config.NewDefaultIngestConfig()
	cfg.CompletionCheckDelaySeconds = 60
	runner := &scriptedRunner{stdout: "1"}
	appender := &fakeAppender{}
	checker := NewCompletionChecker(cfg, runner, appender, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	checker.ScheduleCheck(ctx, testJob())
	cancel()
	checker.Wait()

	assert.Empty(t, runner.calls)
	assert.Empty(t, appender.events)
}

func TestTriggerSchedulesCompletionCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("timing-dependent completion test")
	}
	submitter := &fakeSubmitter{collection: "intel_1"}
	appender := &fakeAppender{}
	trigger, root := newTestTrigger(t, submitter, appender)

	cfg := config.NewDefaultIngestConfig()
	cfg.CompletionCheckDelaySeconds = 1
	runner := &scriptedRunner{stdout: "1"}
	trigger.AttachCompletionChecker(NewCompletionChecker(cfg, runner, appender, zerolog.Nop()))

	path := writeInboxFile(t, root, "doc.pdf")
	_, err := trigger.RunFile(context.Background(), path)
	require.NoError(t, err)

	trigger.completion.Wait()

	require.Len(t, runner.calls, 1)
	require.Len(t, appender.events, 2)
	assert.Equal(t, models.EventTypePDFIngestSuccess, appender.events[0].EventType)
	assert.Equal(t, models.EventTypeEmbeddingComplete, appender.events[1].EventType)
	assert.Equal(t, models.JobTypePDFIngest, appender.events[1].JobType)
}
