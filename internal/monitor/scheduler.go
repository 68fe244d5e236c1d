package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// periodicTask is one named loop run by the scheduler on its own cadence.
type periodicTask struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context)
}

// scheduler drives the service's periodic tasks, each on an independent
// ticker, until the context is cancelled.
type scheduler struct {
	tasks  []periodicTask
	wg     sync.WaitGroup
	logger zerolog.Logger
}

func newScheduler(logger zerolog.Logger) *scheduler {
	return &scheduler{
		logger: logger.With().Str("component", "Scheduler").Logger(),
	}
}

func (s *scheduler) addTask(name string, interval time.Duration, run func(ctx context.Context)) {
	s.tasks = append(s.tasks, periodicTask{name: name, interval: interval, run: run})
}

func (s *scheduler) start(ctx context.Context) {
	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.runLoop(ctx, task)
	}
}

func (s *scheduler) runLoop(ctx context.Context, task periodicTask) {
	defer s.wg.Done()

	s.logger.Debug().Str("task", task.name).Dur("interval", task.interval).Msg("Task loop started")
	ticker := time.NewTicker(task.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Str("task", task.name).Msg("Task loop stopped")
			return
		case <-ticker.C:
			task.run(ctx)
		}
	}
}

// wait blocks until every task loop has exited.
func (s *scheduler) wait() {
	s.wg.Wait()
}
