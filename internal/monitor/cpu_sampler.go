package monitor

import (
	"math"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/aleister1102/sharewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sharewatch/internal/config"
	"github.com/aleister1102/sharewatch/internal/models"
)

// CPUSampler keeps a bounded rolling window of process CPU readings. It is
// purely observational: it logs a warning above the threshold but never
// throttles anything.
type CPUSampler struct {
	cfg  config.ResourceConfig
	proc *process.Process

	mu      sync.Mutex
	samples []float64

	logger zerolog.Logger
}

// NewCPUSampler creates a sampler bound to the current process.
func NewCPUSampler(cfg config.ResourceConfig, logger zerolog.Logger) (*CPUSampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to attach CPU sampler to process")
	}
	return &CPUSampler{
		cfg:    cfg,
		proc:   proc,
		logger: logger.With().Str("component", "CPUSampler").Logger(),
	}, nil
}

// Sample takes one CPU reading and records it.
func (cs *CPUSampler) Sample() {
	pct, err := cs.proc.CPUPercent()
	if err != nil {
		cs.logger.Warn().Err(err).Msg("CPU sample failed")
		return
	}
	cs.Record(pct)
}

// Record adds one reading to the window, evicting the oldest when full, and
// warns when the reading crosses the configured threshold.
func (cs *CPUSampler) Record(pct float64) {
	cs.mu.Lock()
	cs.samples = append(cs.samples, pct)
	if len(cs.samples) > cs.cfg.SampleCapacity {
		cs.samples = cs.samples[len(cs.samples)-cs.cfg.SampleCapacity:]
	}
	cs.mu.Unlock()

	if pct > cs.cfg.WarnThresholdPercent {
		stats := cs.Stats()
		cs.logger.Warn().
			Float64("current", stats.CurrentPercent).
			Float64("average", stats.AveragePercent).
			Float64("max", stats.MaxPercent).
			Msg("CPU usage above threshold")
	}
}

// Stats summarizes the current window.
func (cs *CPUSampler) Stats() models.CPUStats {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	stats := models.CPUStats{SampleCount: len(cs.samples)}
	if len(cs.samples) == 0 {
		return stats
	}

	var sum float64
	for _, s := range cs.samples {
		sum += s
		stats.MaxPercent = math.Max(stats.MaxPercent, s)
	}
	stats.CurrentPercent = cs.samples[len(cs.samples)-1]
	stats.AveragePercent = sum / float64(len(cs.samples))
	return stats
}
