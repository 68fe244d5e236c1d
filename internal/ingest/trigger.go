package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/sharewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sharewatch/internal/common/fileutil"
	"github.com/aleister1102/sharewatch/internal/config"
	"github.com/aleister1102/sharewatch/internal/models"
)

// EventAppender receives the success and failure events the trigger emits.
type EventAppender interface {
	Append(event models.FileEvent) error
}

var collectionNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Trigger decides whether a freshly tagged document spawns a downstream
// ingestion job, and creates that job. Submission failures are recorded as
// events and never propagate into the scan loop.
type Trigger struct {
	cfg        config.IngestConfig
	inboxDir   string
	submitter  JobSubmitter
	events     EventAppender
	completion *CompletionChecker
	logger     zerolog.Logger
}

// NewTrigger creates a Trigger. mountRoot is the prefix the watched shares
// are mounted under; the hot inbox lives at mountRoot/InboxSubPath.
func NewTrigger(cfg config.IngestConfig, mountRoot string, submitter JobSubmitter, events EventAppender, logger zerolog.Logger) *Trigger {
	return &Trigger{
		cfg:       cfg,
		inboxDir:  filepath.Join(mountRoot, cfg.InboxSubPath),
		submitter: submitter,
		events:    events,
		logger:    logger.With().Str("component", "IngestTrigger").Logger(),
	}
}

// AttachCompletionChecker enables post-submission completion verification of
// every job this trigger submits.
func (t *Trigger) AttachCompletionChecker(checker *CompletionChecker) {
	t.completion = checker
}

// ShouldIngest reports whether the file at path is eligible: a PDF by media
// type or extension, located under the hot inbox, last accessed within the
// recency window.
func (t *Trigger) ShouldIngest(path, mimeType string) bool {
	if !t.cfg.Enabled {
		return false
	}
	if mimeType != "application/pdf" && !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return false
	}
	if !strings.Contains(path, t.inboxDir) {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		t.logger.Warn().Err(err).Str("path", path).Msg("Cannot stat file for ingest eligibility")
		return false
	}
	age := time.Since(fileutil.Atime(info))
	if age > t.cfg.RecencyWindow() {
		t.logger.Info().
			Str("path", path).
			Dur("age", age).
			Msg("Document outside recency window, skipping ingest")
		return false
	}
	return true
}

// ShouldIngestFolder reports whether a newly observed directory sits inside
// the hot inbox and so qualifies for a folder ingest.
func (t *Trigger) ShouldIngestFolder(path string) bool {
	return t.cfg.Enabled && strings.Contains(path, t.inboxDir)
}

// RunFile submits one ingestion job for a single document and emits a
// PDF_INGEST_SUCCESS or PDF_INGEST_FAILURE event.
func (t *Trigger) RunFile(ctx context.Context, path string) (*models.IngestJob, error) {
	collection := t.submitter.NextCollectionName(ctx)
	jobName := fmt.Sprintf("pdf-ingest-%s", time.Now().Format("20060102-150405"))

	job, err := t.submit(ctx, jobName, models.JobTypePDFIngest, collection, []string{path})
	t.emitFileEvent(path, collection, err)
	if err != nil {
		return job, errorwrapper.WrapError(err, "ingest job submission failed for "+path)
	}
	return job, nil
}

// RunFolder submits one ingestion job covering every PDF under folderPath.
// The collection is named after the sanitized folder name. Folders with no
// PDFs are skipped without an event.
func (t *Trigger) RunFolder(ctx context.Context, folderPath string) (*models.IngestJob, error) {
	var pdfs []string
	walkErr := filepath.WalkDir(folderPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			pdfs = append(pdfs, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, errorwrapper.WrapError(walkErr, "failed to scan folder "+folderPath)
	}
	if len(pdfs) == 0 {
		t.logger.Info().Str("folder", folderPath).Msg("No PDF documents in folder, skipping ingest")
		return nil, nil
	}

	collection := sanitizeCollectionName(filepath.Base(folderPath))
	jobName := fmt.Sprintf("folder-ingest-%s", time.Now().Format("20060102-150405"))

	job, err := t.submit(ctx, jobName, models.JobTypeFolderIngest, collection, pdfs)
	t.emitFolderEvent(folderPath, collection, len(pdfs), err)
	if err != nil {
		return job, errorwrapper.WrapError(err, "folder ingest submission failed for "+folderPath)
	}
	return job, nil
}

func (t *Trigger) submit(ctx context.Context, jobName, jobType, collection string, files []string) (*models.IngestJob, error) {
	containerFiles := make([]string, 0, len(files))
	for _, f := range files {
		containerFiles = append(containerFiles, t.rewriteToContainerPath(f))
	}

	job := &models.IngestJob{
		JobName:        jobName,
		JobType:        jobType,
		CollectionName: collection,
		TargetFiles:    containerFiles,
		Status:         models.JobStatusSubmitted,
		SubmittedAt:    time.Now(),
	}

	manifests, err := buildManifests(t.cfg, jobName, collection, containerFiles)
	if err != nil {
		job.Status = models.JobStatusFailure
		return job, err
	}

	t.logger.Info().
		Str("job", jobName).
		Str("collection", collection).
		Int("files", len(files)).
		Msg("Submitting ingest job")
	if err := t.submitter.Submit(ctx, manifests); err != nil {
		job.Status = models.JobStatusFailure
		return job, err
	}
	job.Status = models.JobStatusSuccess

	if t.completion != nil {
		t.completion.ScheduleCheck(ctx, job)
	}
	return job, nil
}

// rewriteToContainerPath maps an inbox path to the volume mount the job
// container sees. Paths outside the inbox pass through unchanged.
func (t *Trigger) rewriteToContainerPath(path string) string {
	prefix := t.inboxDir + string(os.PathSeparator)
	if strings.HasPrefix(path, prefix) {
		return filepath.Join(t.cfg.DataMountPrefix, strings.TrimPrefix(path, prefix))
	}
	return path
}

func (t *Trigger) emitFileEvent(path, collection string, submitErr error) {
	event := models.FileEvent{
		Timestamp:      time.Now(),
		EventType:      models.EventTypePDFIngestSuccess,
		FileName:       filepath.Base(path),
		FilePath:       path,
		Status:         models.JobStatusSuccess,
		JobType:        models.JobTypePDFIngest,
		CollectionName: collection,
		FileCount:      1,
		IngestTime:     time.Now(),
	}
	if submitErr != nil {
		event.EventType = models.EventTypePDFIngestFailure
		event.Status = models.JobStatusFailure
	}
	if err := t.events.Append(event); err != nil {
		t.logger.Error().Err(err).Str("path", path).Msg("Failed to record ingest event")
	}
}

func (t *Trigger) emitFolderEvent(folderPath, collection string, fileCount int, submitErr error) {
	event := models.FileEvent{
		Timestamp:      time.Now(),
		EventType:      models.EventTypeFolderIngestSuccess,
		FileName:       filepath.Base(folderPath),
		FilePath:       folderPath,
		Status:         models.JobStatusSuccess,
		JobType:        models.JobTypeFolderIngest,
		CollectionName: collection,
		FileCount:      fileCount,
		IngestTime:     time.Now(),
	}
	if submitErr != nil {
		event.EventType = models.EventTypeFolderIngestFailure
		event.Status = models.JobStatusFailure
	}
	if err := t.events.Append(event); err != nil {
		t.logger.Error().Err(err).Str("folder", folderPath).Msg("Failed to record ingest event")
	}
}

// sanitizeCollectionName maps a folder name to a valid collection name:
// non-alphanumeric characters become underscores, and names that are empty
// or start with a digit get a folder_ prefix.
func sanitizeCollectionName(name string) string {
	sanitized := collectionNameSanitizer.ReplaceAllString(name, "_")
	if sanitized == "" || (sanitized[0] >= '0' && sanitized[0] <= '9') {
		sanitized = "folder_" + sanitized
	}
	return sanitized
}
