package history

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// PayloadPool is the external collaborator holding reusable CacheChange
// payload buffers (§4.1, §5 "Shared resources"). New creates one for each
// History; the changeStore does not use it, and RemoveChangeNts returns a
// removed change's payload to it when release is set. spec.md
// treats it as out of scope, referenced only by contract, but a concrete
// implementation is still required to exercise the change store end to
// end.
type PayloadPool interface {
	// Get returns a buffer of at least size bytes, reused from the pool
	// when possible.
	Get(size int) []byte

	// Put returns buf to the pool for reuse. Callers must not use buf
	// again after calling Put.
	Put(buf []byte)
}

// boundedPayloadPool is a PayloadPool backed by a size-bounded LRU free
// list: returned buffers are kept around for reuse, but once the free
// list reaches its capacity the least-recently-returned buffer is evicted
// and left for the garbage collector instead of growing without bound.
//
// This mirrors the teacher's two sync.Pool-based reader pools in pool.go
// in spirit (reuse buffers to avoid repeated allocation) but adds an
// explicit capacity ceiling derived from QoS, which a bare sync.Pool
// cannot express — sync.Pool may drop any entry at any GC regardless of
// demand, and never caps how many live entries it holds between GCs.
type boundedPayloadPool struct {
	mu        sync.Mutex
	free      *lru.Cache[uint64, []byte]
	nextSlot  uint64
	bufSize   int
	allocated int
	maxBufs   int
}

// NewBoundedPayloadPool creates a pool whose buffers are sized from sizing
// and whose free list never holds more than sizing.MaxSamples returned
// buffers at once. A non-positive MaxSamples gives a free list capped at
// unlimited.
func NewBoundedPayloadPool(sizing poolSizing) (*boundedPayloadPool, error) {
	capacity := sizing.MaxSamples
	if capacity <= 0 || capacity > unlimited {
		capacity = unlimited
	}
	// lru.New rejects a non-positive size. The clamp above already maps a
	// non-positive capacity to unlimited, so this lower bound of one is not
	// reached through it.
	if capacity < 1 {
		capacity = 1
	}

	free, err := lru.New[uint64, []byte](capacity)
	if err != nil {
		return nil, err
	}

	return &boundedPayloadPool{
		free:    free,
		bufSize: sizing.PayloadSize,
		maxBufs: capacity,
	}, nil
}

// Get implements PayloadPool.
func (p *boundedPayloadPool) Get(size int) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	if key, buf, ok := p.free.RemoveOldest(); ok {
		_ = key
		if cap(buf) >= size {
			return buf[:size]
		}
	}

	p.allocated++
	n := p.bufSize
	if size > n {
		n = size
	}
	return make([]byte, size, n)
}

// Allocated reports how many buffers this pool has ever freshly allocated
// (as opposed to served from the free list). It exists for tests and
// diagnostics, not for the PayloadPool interface itself.
func (p *boundedPayloadPool) Allocated() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allocated
}

// Put implements PayloadPool.
func (p *boundedPayloadPool) Put(buf []byte) {
	if buf == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	slot := p.nextSlot
	p.nextSlot++
	p.free.Add(slot, buf[:0])
}
