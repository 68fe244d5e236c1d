package config

// ResourceConfig defines the process CPU sampler. The sampler is purely
// observational; it never throttles other components.
type ResourceConfig struct {
	// SampleEveryNTicks samples CPU usage once per this many poll ticks.
	SampleEveryNTicks int `json:"sample_every_n_ticks,omitempty" yaml:"sample_every_n_ticks,omitempty" validate:"omitempty,min=1"`

	// SampleCapacity bounds the rolling sample window; the oldest sample is
	// evicted first.
	SampleCapacity int `json:"sample_capacity,omitempty" yaml:"sample_capacity,omitempty" validate:"omitempty,min=1"`

	// WarnThresholdPercent triggers a warning log when a sample exceeds it.
	WarnThresholdPercent float64 `json:"warn_threshold_percent,omitempty" yaml:"warn_threshold_percent,omitempty" validate:"omitempty,gt=0,lte=100"`
}

// NewDefaultResourceConfig creates default resource monitor configuration
func NewDefaultResourceConfig() ResourceConfig {
	return ResourceConfig{
		SampleEveryNTicks:    DefaultCPUSampleEveryNTicks,
		SampleCapacity:       DefaultCPUSampleCapacity,
		WarnThresholdPercent: DefaultCPUWarnThreshold,
	}
}
