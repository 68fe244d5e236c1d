package models

import "time"

// Ingest job status transitions: SUBMITTED -> SUCCESS | FAILURE.
const (
	JobStatusSubmitted = "SUBMITTED"
	JobStatusSuccess   = "SUCCESS"
	JobStatusFailure   = "FAILURE"
)

// Job types reported in ingest events.
const (
	JobTypePDFIngest    = "pdf_ingest"
	JobTypeFolderIngest = "folder_ingest"
)

// IngestJob describes a downstream batch-processing job created for
// qualifying documents.
type IngestJob struct {
	JobName        string    `json:"job_name"`
	JobType        string    `json:"job_type"`
	CollectionName string    `json:"collection_name"`
	TargetFiles    []string  `json:"target_files"`
	Status         string    `json:"status"`
	SubmittedAt    time.Time `json:"submitted_at"`
}
