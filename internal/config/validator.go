package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()

	// Register custom validation for LogLevel
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		level := strings.ToLower(fl.Field().String())
		switch level {
		case "", "debug", "info", "warn", "error", "fatal", "panic": // Allow empty for omitempty
			return true
		default:
			return false
		}
	})

	// Register custom validation for LogFormat
	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		format := strings.ToLower(fl.Field().String())
		switch format {
		case "", "console", "text", "json": // Allow empty for omitempty
			return true
		default:
			return false
		}
	})

	// Register custom validation for the dedup store selector
	_ = validate.RegisterValidation("dedupstore", func(fl validator.FieldLevel) bool {
		store := strings.ToLower(fl.Field().String())
		switch store {
		case "", DedupStoreMemory, DedupStoreSQLite:
			return true
		default:
			return false
		}
	})

	if err := validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var sb strings.Builder
			sb.WriteString("configuration validation failed:")
			for _, fieldError := range validationErrors {
				sb.WriteString(fmt.Sprintf(" field '%s' failed on '%s' (value: '%v');", fieldError.Namespace(), fieldError.Tag(), fieldError.Value()))
			}
			return fmt.Errorf("%s", sb.String())
		}
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	// Cross-field checks the tag language cannot express.
	if cfg.MonitorConfig.BatchFlushThreshold > 0 && cfg.MonitorConfig.BatchIntervalSeconds < cfg.MonitorConfig.PollIntervalSeconds {
		return fmt.Errorf("configuration validation failed: batch_interval_seconds (%d) must not be shorter than poll_interval_seconds (%d)",
			cfg.MonitorConfig.BatchIntervalSeconds, cfg.MonitorConfig.PollIntervalSeconds)
	}

	return nil
}
