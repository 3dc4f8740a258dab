// Package history implements the reader-side sample history cache of a
// DDS subscription endpoint: the in-memory store a reader deposits
// received samples into for a single topic, and from which application
// code and the reader's protocol layer read, take, and age them out.
//
// A History enforces per-topic and per-instance resource limits, the two
// DDS history policies (KEEP_ALL and KEEP_LAST), keyed vs. unkeyed topic
// semantics with on-the-fly key extraction, deadline tracking per
// instance, ordered iteration for application read/take operations, and
// the concurrency contract with the enclosing RTPS reader that
// concurrently inserts and removes cache entries.
//
// The network/RTPS receive path, the payload pool's allocation policy
// details, the topic type plugin's serialization, and the user-facing
// DataReader API are all external collaborators consumed through the
// TypeSupport, Reader, and PayloadPool interfaces; History itself is pure
// in-memory bookkeeping with no persistence and no I/O.
package history

import (
	"fmt"
	"log/slog"
	"time"
)

// History is the reader-side sample history cache for one topic (§2-§3).
// The zero value is not usable; construct one with New.
type History struct {
	guarded guardedReader

	store       *changeStore
	instances   *instanceTable // nil for unkeyed topics (I5)
	keyResolver *keyResolver
	payloadPool PayloadPool
	typeSupport TypeSupport
	logger      *slog.Logger

	admit admissionFunc

	hasKeys        bool
	historyKind    HistoryKind
	depth          int
	resourceLimits ResourceLimits
	topicName      string
	typeName       string

	globalNextDeadline time.Time
}

// New constructs a History for topic, backed by typeSupport's key
// extraction capability and sized per qos. A scratch key object is
// allocated iff typeSupport.HasKey() (§3 Lifecycle); it is released by
// Close.
//
// The returned History is inert until Attach binds a Reader and its
// mutex: every method other than Attach, Detach, Close, Lock and Unlock
// returns ErrPrecondition until then (§5).
func New(typeSupport TypeSupport, topicName, typeName string, qos QoS, logger *slog.Logger) (*History, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("topic", topicName), slog.String("type", typeName))

	rl := normalizeResourceLimits(qos.ResourceLimits)
	qos.ResourceLimits = rl

	hasKeys := typeSupport.HasKey()
	sizing := resolvePoolSizing(typeSupport.PayloadSize(), hasKeys, qos)

	pool, err := NewBoundedPayloadPool(sizing)
	if err != nil {
		return nil, fmt.Errorf("new payload pool: %w", err)
	}

	resolver, err := newKeyResolver(typeSupport, logger, topicName)
	if err != nil {
		return nil, fmt.Errorf("new key resolver: %w", err)
	}

	h := &History{
		store:          newChangeStore(sizing.MaxSamples),
		payloadPool:    pool,
		typeSupport:    typeSupport,
		keyResolver:    resolver,
		logger:         logger,
		hasKeys:        hasKeys,
		historyKind:    qos.History.Kind,
		depth:          qos.History.Depth,
		resourceLimits: rl,
		topicName:      topicName,
		typeName:       typeName,
	}

	if hasKeys {
		h.instances = newInstanceTable(rl.MaxInstances)
	}

	h.admit = bindAdmissionFunc(hasKeys, qos.History.Kind)

	return h, nil
}

// Attach binds the enclosing RTPS reader, making the History usable. It
// must be called exactly once before any other method, and the reader
// must be detached (Detach) before the History is discarded (§3
// Lifecycle, §5).
func (h *History) Attach(reader Reader) {
	h.guarded.mu.Lock()
	defer h.guarded.mu.Unlock()
	h.guarded.reader = reader
}

// Detach unbinds the reader. Required before the History's resources
// (notably the scratch key object) are released.
func (h *History) Detach() {
	h.guarded.mu.Lock()
	defer h.guarded.mu.Unlock()
	h.guarded.reader = nil
}

// Close releases the scratch key object allocated by New, if any. The
// reader must already be detached (§3 Lifecycle: "Destruction requires
// the enclosing reader to be detached").
func (h *History) Close() error {
	h.guarded.mu.Lock()
	defer h.guarded.mu.Unlock()
	if h.guarded.reader != nil {
		return fmt.Errorf("history: Close called while reader still attached")
	}
	h.keyResolver.close()
	return nil
}

// lockOrFail acquires the guard, returning ErrPrecondition if no reader
// has been attached yet (§5 "Mutual exclusion").
func (h *History) lockOrFail() error {
	h.guarded.mu.Lock()
	if h.guarded.reader == nil {
		h.guarded.mu.Unlock()
		h.logger.Error("you need to create a reader with this history before using it")
		return ErrPrecondition
	}
	return nil
}

func (h *History) unlock() {
	h.guarded.mu.Unlock()
}

// ReceivedChange admits a newly-arrived sample (§4.3). unknownMissingUpTo
// conveys how many sequence numbers the RTPS layer still expects to fill
// in ahead of change; only the unkeyed KEEP_ALL strategy uses it.
//
// It reports true iff change was accepted and is now visible through the
// query surface.
func (h *History) ReceivedChange(change *CacheChange, unknownMissingUpTo int) (bool, error) {
	if err := h.lockOrFail(); err != nil {
		return false, err
	}
	defer h.unlock()

	return h.admit(h, change, unknownMissingUpTo)
}

// addReceivedChangeNts appends change to the global store, recomputing
// nothing beyond what changeStore.add already tracks. Caller must hold
// the lock. Mirrors add_received_change.
func (h *History) addReceivedChangeNts(change *CacheChange) (bool, error) {
	if h.store.isFull() {
		h.logger.Warn("attempting to add data to full reader history")
		return false, ErrCapacityExceeded
	}

	if !h.store.add(change) {
		return false, ErrCapacityExceeded
	}

	h.logger.Info("change added",
		slog.Int64("sequence_number", int64(change.SequenceNumber)))
	return true, nil
}

// addReceivedChangeWithKeyNts appends change to both the global store and
// the tail of entry's per-instance list. Tail-append is correct because
// this core supports only reception-timestamp ordering and samples arrive
// in that order by construction (§4.3). Mirrors
// add_received_change_with_key.
func (h *History) addReceivedChangeWithKeyNts(change *CacheChange, entry *InstanceEntry) (bool, error) {
	if h.store.isFull() {
		h.logger.Warn("attempting to add data to full reader history")
		return false, ErrCapacityExceeded
	}

	if !h.store.add(change) {
		return false, ErrCapacityExceeded
	}

	entry.CacheChanges = append(entry.CacheChanges, change)

	h.logger.Info("change added with key",
		slog.Int64("sequence_number", int64(change.SequenceNumber)),
		slog.String("instance", change.InstanceHandle.String()))
	return true, nil
}

// resolveEntryNts resolves change's instance handle if undefined, then
// finds or creates its InstanceEntry. Caller must hold the lock. Mirrors
// find_key_for_change + find_key.
func (h *History) resolveEntryNts(change *CacheChange) (*InstanceEntry, error) {
	isKeyProtected := h.guarded.reader.SecurityAttributes().IsKeyProtected

	if err := h.keyResolver.resolveHandle(change, isKeyProtected); err != nil {
		return nil, err
	}

	entry, _, err := h.keyResolver.findOrCreate(h.instances, change.InstanceHandle)
	if err != nil {
		return nil, err
	}
	return entry, nil
}
