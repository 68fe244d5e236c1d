package config

// Default values applied by the NewDefault*Config constructors. Intervals
// are expressed in the unit named by the field.
const (
	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Discovery Defaults
	DefaultMountRootPrefix = "/mnt/anvil"

	// Monitor Defaults
	DefaultPollIntervalSeconds      = 2
	DefaultBatchIntervalSeconds     = 15
	DefaultBatchFlushThreshold      = 5
	DefaultRetroScanIntervalSeconds = 5
	DefaultStabilityCheckDelayMs    = 100
	DefaultMaxConcurrentDispatches  = 4

	// Tagging Defaults
	DefaultHSCLIPath             = "hs"
	DefaultTagCommandTimeoutSecs = 10
	DefaultMountRefreshScript    = ""
	DefaultIngestTagKey          = "user.ingestid"
	DefaultMimeTagKey            = "user.mimeid"

	// Dedup Defaults
	DefaultDedupStore        = "memory"
	DefaultDedupSQLitePath   = "database/dedup/processed_files.db"
	DedupStoreMemory         = "memory"
	DedupStoreSQLite         = "sqlite"

	// Event Log Defaults
	DefaultEventLogPath        = "logs/ingest_events.log"
	DefaultArchiveDir          = "database/events"
	DefaultArchiveRetentionDays = 30

	// Ingest Defaults
	DefaultInboxSubPath        = "hub"
	DefaultRecencyWindowHours  = 12
	DefaultCollectionPrefix    = "intel"
	DefaultKubectlPath         = "kubectl"
	DefaultJobNamespace        = "default"
	DefaultJobDataMountPrefix  = "/data"
	DefaultJobSubmitTimeoutSec = 60
	DefaultJobImage            = "alpine:3.19"
	DefaultJobPVCName          = "hammerspace-hub-pvc"
	DefaultIngestAPIURL        = "http://ingestor-server:8082"

	DefaultCompletionCheckDelaySec = 300

	// Resource Defaults
	DefaultCPUSampleEveryNTicks = 10
	DefaultCPUSampleCapacity    = 100
	DefaultCPUWarnThreshold     = 50.0
)
