package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/sharewatch/internal/common/errorwrapper"
	"gopkg.in/yaml.v3"
)

// GlobalConfig aggregates every configurable section of the service.
type GlobalConfig struct {
	LogConfig       LogConfig       `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	DiscoveryConfig DiscoveryConfig `json:"discovery_config,omitempty" yaml:"discovery_config,omitempty"`
	MonitorConfig   MonitorConfig   `json:"monitor_config,omitempty" yaml:"monitor_config,omitempty"`
	TaggingConfig   TaggingConfig   `json:"tagging_config,omitempty" yaml:"tagging_config,omitempty"`
	DedupConfig     DedupConfig     `json:"dedup_config,omitempty" yaml:"dedup_config,omitempty"`
	EventLogConfig  EventLogConfig  `json:"event_log_config,omitempty" yaml:"event_log_config,omitempty"`
	IngestConfig    IngestConfig    `json:"ingest_config,omitempty" yaml:"ingest_config,omitempty"`
	TieringConfig   TieringConfig   `json:"tiering_config,omitempty" yaml:"tiering_config,omitempty"`
	ResourceConfig  ResourceConfig  `json:"resource_config,omitempty" yaml:"resource_config,omitempty"`
}

// NewDefaultGlobalConfig assembles the defaults of every section.
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		LogConfig:       NewDefaultLogConfig(),
		DiscoveryConfig: NewDefaultDiscoveryConfig(),
		MonitorConfig:   NewDefaultMonitorConfig(),
		TaggingConfig:   NewDefaultTaggingConfig(),
		DedupConfig:     NewDefaultDedupConfig(),
		EventLogConfig:  NewDefaultEventLogConfig(),
		IngestConfig:    NewDefaultIngestConfig(),
		TieringConfig:   NewDefaultTieringConfig(),
		ResourceConfig:  NewDefaultResourceConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath and supports both
// JSON and YAML formats; values not present in the file keep their defaults.
// A missing config file is not an error: the defaults are returned.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read config file "+filePath)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to parse YAML config "+filePath)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to parse JSON config "+filePath)
		}
	default:
		return nil, errorwrapper.NewError("unsupported config file extension '%s' for %s", ext, filePath)
	}

	return cfg, nil
}
