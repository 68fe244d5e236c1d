package models

import (
	"path/filepath"
	"time"
)

// Event types written to the ingestion event log.
const (
	EventTypeNewFile        = "NEW_FILE"
	EventTypeRetroactiveTag = "RETROACTIVE_TAG"

	EventTypePDFIngestSuccess = "PDF_INGEST_SUCCESS"
	EventTypePDFIngestFailure = "PDF_INGEST_FAILURE"

	EventTypeFolderIngestSuccess = "FOLDER_INGEST_SUCCESS"
	EventTypeFolderIngestFailure = "FOLDER_INGEST_FAILURE"

	EventTypeEmbeddingComplete   = "EMBEDDING_COMPLETE"
	EventTypeEmbeddingIncomplete = "EMBEDDING_INCOMPLETE"

	EventTypeTierPromotionByTag = "TIER0_PROMOTION_BY_TAG"
	EventTypeTierDemotionByTag  = "TIER0_DEMOTION_BY_TAG"
)

// FileEvent is one record of the append-only ingestion event log.
// It is serialized as a single JSON object per line. The same struct carries
// file-tagging events, ingest-job events and tier bulk-operation events;
// fields not relevant to an event type are omitted from the JSON output.
type FileEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	EventType  string    `json:"event_type"`
	FileName   string    `json:"file_name,omitempty"`
	FilePath   string    `json:"file_path,omitempty"`
	MD5Hash    string    `json:"md5_hash,omitempty"`
	MimeType   string    `json:"mime_type,omitempty"`
	SizeBytes  int64     `json:"size_bytes,omitempty"`
	IngestTime time.Time `json:"ingest_time,omitzero"`

	// Ingest job events.
	Status         string `json:"status,omitempty"`
	JobType        string `json:"job_type,omitempty"`
	CollectionName string `json:"collection_name,omitempty"`
	FileCount      int    `json:"file_count,omitempty"`

	// Tier bulk-operation events.
	TagName       string `json:"tag_name,omitempty"`
	FilesAffected int    `json:"files_affected,omitempty"`
	Operation     string `json:"operation,omitempty"`
}

// NewFileEvent builds a tagging event for a freshly fingerprinted file.
func NewFileEvent(eventType, filePath, md5Hash, mimeType string, sizeBytes int64, ingestTime time.Time) FileEvent {
	return FileEvent{
		Timestamp:  ingestTime,
		EventType:  eventType,
		FileName:   filepath.Base(filePath),
		FilePath:   filePath,
		MD5Hash:    md5Hash,
		MimeType:   mimeType,
		SizeBytes:  sizeBytes,
		IngestTime: ingestTime,
	}
}
