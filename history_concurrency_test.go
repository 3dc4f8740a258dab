package history

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentReceiveAndQuery hammers a single History from many
// goroutines concurrently delivering samples and querying it, mirroring
// the teacher's cache_test.go "Concurrency" subtest: the point is not to
// assert a specific interleaving, only that the mutex actually serializes
// every public entry point and the invariants never observably break.
func TestConcurrentReceiveAndQuery(t *testing.T) {
	h, _, _ := newTestHistory(true, KeepLast, 4, ResourceLimits{MaxInstances: 8, MaxSamplesPerInstance: 10})

	const writers = 8
	const perWriter = 200

	var (
		wg      sync.WaitGroup
		seq     int64
		rejects int64
	)

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(key byte) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				n := atomic.AddInt64(&seq, 1)
				c := change(SequenceNumber(n), keyPayload(key))
				ok, err := h.ReceivedChange(c, 0)
				if err != nil && err != ErrCapacityExceeded {
					t.Errorf("unexpected error: %v", err)
				}
				if !ok {
					atomic.AddInt64(&rejects, 1)
				}
			}
		}(byte(w))
	}

	var queryWg sync.WaitGroup
	stop := make(chan struct{})
	queryWg.Add(1)
	go func() {
		defer queryWg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_, _, _ = h.LookupInstance(FictitiousHandle, false)
				_, _, _ = h.GetNextDeadline()
			}
		}
	}()

	wg.Wait()
	close(stop)
	queryWg.Wait()

	h.Lock()
	defer h.Unlock()

	require.LessOrEqual(t, h.instances.size(), 8)
	total := 0
	for _, entry := range h.instances.byHandle {
		assert.LessOrEqual(t, len(entry.CacheChanges), 4, "KEEP_LAST depth must be respected under concurrency")
		total += len(entry.CacheChanges)
	}
	assert.Equal(t, total, h.store.size(), "P2: union over instances must equal the global store")
}
