package config

import "time"

// IngestConfig defines when a freshly tagged document spawns a downstream
// batch ingestion job and how that job is submitted.
type IngestConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// InboxSubPath is the share-relative directory ("hot inbox") whose
	// documents are eligible for ingestion.
	InboxSubPath string `json:"inbox_sub_path,omitempty" yaml:"inbox_sub_path,omitempty"`

	// RecencyWindowHours bounds eligibility by last-access age.
	RecencyWindowHours int `json:"recency_window_hours,omitempty" yaml:"recency_window_hours,omitempty" validate:"omitempty,min=1"`

	// CollectionPrefix names target collections (prefix_1, prefix_2, ...).
	CollectionPrefix string `json:"collection_prefix,omitempty" yaml:"collection_prefix,omitempty"`

	// KubectlPath is the cluster CLI used to submit the file-list artifact
	// and the batch job.
	KubectlPath string `json:"kubectl_path,omitempty" yaml:"kubectl_path,omitempty"`

	// JobNamespace is the namespace jobs and their file lists are created in.
	JobNamespace string `json:"job_namespace,omitempty" yaml:"job_namespace,omitempty"`

	// DataMountPrefix replaces the share mount prefix in file paths handed
	// to the job, matching the volume mount inside the job container.
	DataMountPrefix string `json:"data_mount_prefix,omitempty" yaml:"data_mount_prefix,omitempty"`

	SubmitTimeoutSeconds int `json:"submit_timeout_seconds,omitempty" yaml:"submit_timeout_seconds,omitempty" validate:"omitempty,min=1"`

	// JobImage runs the upload loop inside the batch job.
	JobImage string `json:"job_image,omitempty" yaml:"job_image,omitempty"`

	// PVCName is the persistent volume claim mounted at DataMountPrefix.
	PVCName string `json:"pvc_name,omitempty" yaml:"pvc_name,omitempty"`

	// IngestAPIURL is the ingestion service endpoint the job uploads to.
	IngestAPIURL string `json:"ingest_api_url,omitempty" yaml:"ingest_api_url,omitempty"`

	// CompletionCheckDelaySeconds is how long after submission the job's
	// completion status is verified. Zero disables the check.
	CompletionCheckDelaySeconds int `json:"completion_check_delay_seconds,omitempty" yaml:"completion_check_delay_seconds,omitempty" validate:"omitempty,min=1"`
}

// RecencyWindow returns the eligibility age bound as a duration.
func (ic IngestConfig) RecencyWindow() time.Duration {
	return time.Duration(ic.RecencyWindowHours) * time.Hour
}

// SubmitTimeout returns the job submission timeout as a duration.
func (ic IngestConfig) SubmitTimeout() time.Duration {
	return time.Duration(ic.SubmitTimeoutSeconds) * time.Second
}

// CompletionCheckDelay returns the delay before the completion check runs.
func (ic IngestConfig) CompletionCheckDelay() time.Duration {
	return time.Duration(ic.CompletionCheckDelaySeconds) * time.Second
}

// NewDefaultIngestConfig creates default ingest configuration
func NewDefaultIngestConfig() IngestConfig {
	return IngestConfig{
		Enabled:              true,
		InboxSubPath:         DefaultInboxSubPath,
		RecencyWindowHours:   DefaultRecencyWindowHours,
		CollectionPrefix:     DefaultCollectionPrefix,
		KubectlPath:          DefaultKubectlPath,
		JobNamespace:         DefaultJobNamespace,
		DataMountPrefix:      DefaultJobDataMountPrefix,
		SubmitTimeoutSeconds: DefaultJobSubmitTimeoutSec,
		JobImage:             DefaultJobImage,
		PVCName:              DefaultJobPVCName,
		IngestAPIURL:         DefaultIngestAPIURL,

		CompletionCheckDelaySeconds: DefaultCompletionCheckDelaySec,
	}
}
