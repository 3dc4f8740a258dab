package history

import (
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// InstanceEntry is the per-instance state a keyed topic's history tracks:
// the ordered list of samples currently held for that instance, plus the
// next deadline timestamp QoS deadline tracking expects to see a fresh
// sample by (§3).
type InstanceEntry struct {
	CacheChanges []*CacheChange
	NextDeadline time.Time
}

// instanceTable maps InstanceHandle to InstanceEntry for a keyed topic. It
// is nil on unkeyed topics (I5).
//
// sorted is kept in ascending InstanceHandle order at all times (mirroring
// the original's std::map<InstanceHandle_t, KeyedChanges>, which is
// ordered by key) so that lookup_instance's exact=false query can answer
// "the least instance strictly greater than handle" with a binary search
// instead of a linear scan.
type instanceTable struct {
	byHandle     map[InstanceHandle]*InstanceEntry
	sorted       []InstanceHandle
	maxInstances int
}

func newInstanceTable(maxInstances int) *instanceTable {
	return &instanceTable{
		byHandle:     make(map[InstanceHandle]*InstanceEntry),
		maxInstances: maxInstances,
	}
}

func (t *instanceTable) size() int {
	return len(t.byHandle)
}

// insertSorted adds handle to t.sorted at its ordered position.
func (t *instanceTable) insertSorted(handle InstanceHandle) {
	i := sort.Search(len(t.sorted), func(i int) bool { return !t.sorted[i].Less(handle) })
	t.sorted = append(t.sorted, InstanceHandle{})
	copy(t.sorted[i+1:], t.sorted[i:])
	t.sorted[i] = handle
}

// removeSorted deletes handle from t.sorted.
func (t *instanceTable) removeSorted(handle InstanceHandle) {
	i := sort.Search(len(t.sorted), func(i int) bool { return !t.sorted[i].Less(handle) })
	if i < len(t.sorted) && t.sorted[i] == handle {
		t.sorted = append(t.sorted[:i], t.sorted[i+1:]...)
	}
}

// upperBound returns the least handle strictly greater than handle, and
// whether one exists.
func (t *instanceTable) upperBound(handle InstanceHandle) (InstanceHandle, bool) {
	i := sort.Search(len(t.sorted), func(i int) bool { return handle.Less(t.sorted[i]) })
	if i < len(t.sorted) {
		return t.sorted[i], true
	}
	return InstanceHandle{}, false
}

// keyResolver implements §4.2: resolving an instance handle for an
// arriving change (deserializing and calling TypeSupport.GetKey when the
// RTPS layer left it undefined) and finding or creating the change's
// owning InstanceEntry, reclaiming an empty slot when the table is full.
type keyResolver struct {
	typeSupport TypeSupport
	scratch     any
	keyCache    *keyExtractionCache
	logger      *slog.Logger
	topicName   string
}

func newKeyResolver(ts TypeSupport, logger *slog.Logger, topicName string) (*keyResolver, error) {
	r := &keyResolver{typeSupport: ts, logger: logger, topicName: topicName}
	if ts.HasKey() {
		r.scratch = ts.CreateScratch()
		cache, err := newKeyExtractionCache()
		if err != nil {
			return nil, fmt.Errorf("new key extraction cache: %w", err)
		}
		r.keyCache = cache
	}
	return r, nil
}

func (r *keyResolver) close() {
	if r.typeSupport.HasKey() && r.scratch != nil {
		r.typeSupport.DestroyScratch(r.scratch)
		r.scratch = nil
	}
}

// resolveHandle fills in change.InstanceHandle when it arrived undefined,
// per §4.2 steps 1-2. It returns ErrKeyUnresolvable if no handle could be
// derived.
func (r *keyResolver) resolveHandle(change *CacheChange, isKeyProtected bool) error {
	if change.InstanceHandle.IsDefined() {
		return nil
	}

	if !r.typeSupport.HasKey() {
		r.logger.Warn("no key and no method to obtain it",
			slog.String("topic", r.topicName))
		return ErrKeyUnresolvable
	}

	r.logger.Info("getting key of change with no key transmitted",
		slog.String("topic", r.topicName),
		slog.Uint64("payload_fingerprint", payloadFingerprint(change.SerializedPayload)))

	if handle, ok := r.keyCache.lookup(change.SerializedPayload, isKeyProtected); ok {
		change.InstanceHandle = handle
		return nil
	}

	if err := r.typeSupport.Deserialize(change.SerializedPayload, r.scratch); err != nil {
		r.logger.Warn("failed to deserialize payload while resolving key",
			slog.String("topic", r.topicName), slog.Any("error", err))
		return fmt.Errorf("%w: deserialize: %v", ErrKeyUnresolvable, err)
	}

	handle, ok := r.typeSupport.GetKey(r.scratch, isKeyProtected)
	if !ok {
		r.logger.Warn("get_key failed to resolve an instance handle",
			slog.String("topic", r.topicName))
		return ErrKeyUnresolvable
	}

	r.keyCache.remember(change.SerializedPayload, isKeyProtected, handle)
	change.InstanceHandle = handle
	return nil
}

// findOrCreate implements §4.2 steps 3-6: look up change's instance in the
// table, or create a new entry if there is room, or reclaim an empty
// entry's slot. It reports the entry, whether it was freshly created, and
// an error (ErrCapacityExceeded) if the table is full with no reclaimable
// entry.
func (r *keyResolver) findOrCreate(t *instanceTable, handle InstanceHandle) (entry *InstanceEntry, created bool, err error) {
	if e, ok := t.byHandle[handle]; ok {
		return e, false, nil
	}

	if len(t.byHandle) < t.maxInstances {
		e := &InstanceEntry{}
		t.byHandle[handle] = e
		t.insertSorted(handle)
		return e, true, nil
	}

	for _, h := range t.sorted {
		existing := t.byHandle[h]
		if len(existing.CacheChanges) == 0 {
			delete(t.byHandle, h)
			t.removeSorted(h)
			e := &InstanceEntry{}
			t.byHandle[handle] = e
			t.insertSorted(handle)
			return e, true, nil
		}
	}

	r.logger.Warn("history has reached the maximum number of instances",
		slog.String("topic", r.topicName))
	return nil, false, ErrCapacityExceeded
}
