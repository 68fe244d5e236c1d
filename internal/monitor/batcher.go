package monitor

import (
	"sync"
	"time"
)

// Batcher queues detected paths and decides when they are released for
// processing. Small trickles (fewer pending than the threshold) flush
// immediately; anything larger is held until the batch interval elapses so a
// bulk drop is processed in one sweep.
type Batcher struct {
	mu        sync.Mutex
	pending   []string
	threshold int
	interval  time.Duration
	lastFlush time.Time
}

// NewBatcher creates a Batcher.
func NewBatcher(threshold int, interval time.Duration) *Batcher {
	return &Batcher{
		threshold: threshold,
		interval:  interval,
		lastFlush: time.Now(),
	}
}

// Add queues paths for a later flush. Duplicates already pending are
// dropped.
func (b *Batcher) Add(paths ...string) {
	if len(paths) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, path := range paths {
		if !b.contains(path) {
			b.pending = append(b.pending, path)
		}
	}
}

// Requeue puts paths back at the front of the queue, used for files whose
// size was still changing during the stability check.
func (b *Batcher) Requeue(paths ...string) {
	if len(paths) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	requeued := make([]string, 0, len(paths)+len(b.pending))
	requeued = append(requeued, paths...)
	for _, path := range b.pending {
		if !containsPath(requeued, path) {
			requeued = append(requeued, path)
		}
	}
	b.pending = requeued
}

// Flush returns the queued paths when the release condition holds at the
// given instant, or nil when the batch should keep building. A pending count
// below the threshold releases immediately; at or above it, release waits
// for the batch interval.
func (b *Batcher) Flush(now time.Time) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.pending)
	if n == 0 {
		return nil
	}
	if n >= b.threshold && now.Sub(b.lastFlush) < b.interval {
		return nil
	}
	return b.takeAll(now)
}

// Drain unconditionally releases everything pending, used during shutdown.
func (b *Batcher) Drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) == 0 {
		return nil
	}
	return b.takeAll(time.Now())
}

// PendingCount returns the number of queued paths.
func (b *Batcher) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// LastFlushTime returns when the queue last released a batch.
func (b *Batcher) LastFlushTime() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastFlush
}

// takeAll hands the queue over and resets the flush clock. Caller holds the
// mutex.
func (b *Batcher) takeAll(now time.Time) []string {
	batch := b.pending
	b.pending = nil
	b.lastFlush = now
	return batch
}

func (b *Batcher) contains(path string) bool {
	return containsPath(b.pending, path)
}

func containsPath(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}
