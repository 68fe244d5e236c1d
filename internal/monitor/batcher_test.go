package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBatcherSmallBatchFlushesImmediately(t *testing.T) {
	b := NewBatcher(5, 15*time.Second)
	b.Add("/a", "/b", "/c", "/d")

	batch := b.Flush(time.Now())
	assert.Len(t, batch, 4)
	assert.Zero(t, b.PendingCount())
}

func TestBatcherLargeBatchHeldUntilInterval(t *testing.T) {
	b := NewBatcher(5, 15*time.Second)
	start := time.Now()
	b.Add("/a", "/b", "/c", "/d", "/e", "/f")

	// Six pending is at the threshold, so the batch keeps building.
	assert.Nil(t, b.Flush(start.Add(time.Second)))
	assert.Equal(t, 6, b.PendingCount())

	batch := b.Flush(start.Add(16 * time.Second))
	assert.Len(t, batch, 6)
}

func TestBatcherThresholdBoundary(t *testing.T) {
	b := NewBatcher(5, 15*time.Second)
	b.Add("/a", "/b", "/c", "/d", "/e")

	// Exactly at the threshold counts as a bulk drop.
	assert.Nil(t, b.Flush(time.Now()))
}

func TestBatcherEmptyFlush(t *testing.T) {
	b := NewBatcher(5, 15*time.Second)
	assert.Nil(t, b.Flush(time.Now()))
}

func TestBatcherDeduplicatesPending(t *testing.T) {
	b := NewBatcher(5, 15*time.Second)
	b.Add("/a")
	b.Add("/a", "/b")

	assert.Equal(t, 2, b.PendingCount())
}

func TestBatcherRequeuePutsPathFirst(t *testing.T) {
	b := NewBatcher(5, 15*time.Second)
	b.Add("/a", "/b")
	b.Requeue("/growing")

	batch := b.Flush(time.Now())
	assert.Equal(t, []string{"/growing", "/a", "/b"}, batch)
}

func TestBatcherDrainIgnoresHoldRule(t *testing.T) {
	b := NewBatcher(5, 15*time.Second)
	b.Add("/a", "/b", "/c", "/d", "/e", "/f")

	assert.Len(t, b.Drain(), 6)
	assert.Zero(t, b.PendingCount())
}

func TestBatcherFlushResetsClock(t *testing.T) {
	b := NewBatcher(5, 15*time.Second)
	start := time.Now()

	b.Add("/a", "/b", "/c", "/d", "/e", "/f")
	assert.Len(t, b.Flush(start.Add(16*time.Second)), 6)

	// The next bulk drop starts a fresh hold window.
	b.Add("/g", "/h", "/i", "/j", "/k")
	assert.Nil(t, b.Flush(start.Add(17*time.Second)))
}
