package dedup

import "sync"

// MemoryTracker keeps processed paths in a mutex-guarded set. It lives for
// the service's lifetime only; a restart resets it, so files tagged by a
// previous run may be retagged once rediscovered.
type MemoryTracker struct {
	mu        sync.RWMutex
	processed map[string]struct{}
}

// NewMemoryTracker creates an empty MemoryTracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{processed: make(map[string]struct{})}
}

func (t *MemoryTracker) AlreadyProcessed(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.processed[path]
	return ok
}

func (t *MemoryTracker) MarkProcessed(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processed[path] = struct{}{}
	return nil
}

func (t *MemoryTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.processed)
}

func (t *MemoryTracker) Close() error { return nil }
