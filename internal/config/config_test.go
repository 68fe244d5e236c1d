package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGlobalConfigYAMLOverridesKeepDefaults(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", `
monitor_config:
  poll_interval_seconds: 30
  batch_flush_threshold: 10
tagging_config:
  hs_cli_path: /usr/local/bin/hs
`)

	cfg, err := LoadGlobalConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.MonitorConfig.PollIntervalSeconds)
	assert.Equal(t, 10, cfg.MonitorConfig.BatchFlushThreshold)
	assert.Equal(t, "/usr/local/bin/hs", cfg.TaggingConfig.HSCLIPath)

	// Sections absent from the file keep their defaults.
	assert.Equal(t, DefaultBatchIntervalSeconds, cfg.MonitorConfig.BatchIntervalSeconds)
	assert.Equal(t, DefaultCollectionPrefix, cfg.IngestConfig.CollectionPrefix)
	assert.Equal(t, DefaultMountRootPrefix, cfg.DiscoveryConfig.MountRootPrefix)
}

func TestLoadGlobalConfigJSON(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{"dedup_config":{"store":"sqlite"}}`)

	cfg, err := LoadGlobalConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DedupStoreSQLite, cfg.DedupConfig.Store)
}

func TestLoadGlobalConfigUnsupportedExtension(t *testing.T) {
	path := writeConfigFile(t, "config.toml", "x = 1")

	_, err := LoadGlobalConfig(path)
	assert.Error(t, err)
}

func TestLoadGlobalConfigMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", "monitor_config: [not a map")

	_, err := LoadGlobalConfig(path)
	assert.Error(t, err)
}

func TestValidateConfigDefaultsPass(t *testing.T) {
	assert.NoError(t, ValidateConfig(NewDefaultGlobalConfig()))
}

func TestValidateConfigRejectsUnknownLogLevel(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.LogConfig.LogLevel = "verbose"
	assert.Error(t, ValidateConfig(cfg))
}

func TestValidateConfigRejectsUnknownDedupStore(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.DedupConfig.Store = "redis"
	assert.Error(t, ValidateConfig(cfg))
}

func TestValidateConfigRejectsBatchIntervalShorterThanPoll(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.MonitorConfig.PollIntervalSeconds = 20
	cfg.MonitorConfig.BatchIntervalSeconds = 5
	assert.Error(t, ValidateConfig(cfg))
}

func TestGetConfigPathPrefersFlagWhenFileExists(t *testing.T) {
	path := writeConfigFile(t, "custom.yaml", "")
	assert.Equal(t, path, GetConfigPath(path))
}

func TestGetConfigPathFallsBackToEnv(t *testing.T) {
	path := writeConfigFile(t, "env.yaml", "")
	t.Setenv("SHAREWATCH_CONFIG_PATH", path)

	assert.Equal(t, path, GetConfigPath(filepath.Join(t.TempDir(), "missing.yaml")))
}
