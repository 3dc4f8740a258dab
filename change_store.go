package history

// changeStore is the flat, ordered sequence of all currently held samples
// for the topic (§4.1 Change Store). It is append-only with bounded
// capacity plus arbitrary removal, mirroring the original's
// ReaderHistory::m_changes (a capacity-checked std::vector<CacheChange_t*>).
//
// changeStore owns no payload memory itself; a CacheChange's
// SerializedPayload is allocated from a PayloadPool by the caller before
// add is invoked and returned to the pool by the caller after remove
// succeeds. changeStore only orders and bounds the pointers.
type changeStore struct {
	changes []*CacheChange
	max     int
}

// newChangeStore creates an empty store capped at max entries.
func newChangeStore(max int) *changeStore {
	return &changeStore{max: max}
}

// add appends change to the store. It reports false without modifying the
// store if the store is already at capacity.
func (s *changeStore) add(change *CacheChange) bool {
	if len(s.changes) >= s.max {
		return false
	}
	s.changes = append(s.changes, change)
	return true
}

// remove deletes the first occurrence of change (matched by pointer
// identity) from the store. It reports whether change was found.
func (s *changeStore) remove(change *CacheChange) bool {
	for i, c := range s.changes {
		if c == change {
			s.removeAt(i)
			return true
		}
	}
	return false
}

// removeAt deletes the entry at index i, preserving order (I6) among the
// remaining entries.
func (s *changeStore) removeAt(i int) {
	copy(s.changes[i:], s.changes[i+1:])
	s.changes[len(s.changes)-1] = nil
	s.changes = s.changes[:len(s.changes)-1]
}

// front returns the oldest (first, by reception order) entry, or nil if
// the store is empty. KEEP_LAST eviction always targets this entry (§4.3).
func (s *changeStore) front() *CacheChange {
	if len(s.changes) == 0 {
		return nil
	}
	return s.changes[0]
}

// size is the number of entries currently held.
func (s *changeStore) size() int {
	return len(s.changes)
}

// isFull reports whether size() has reached the configured capacity (I4).
func (s *changeStore) isFull() bool {
	return len(s.changes) >= s.max
}

// find returns the index of change, or -1 if it is not present.
func (s *changeStore) find(change *CacheChange) int {
	for i, c := range s.changes {
		if c == change {
			return i
		}
	}
	return -1
}

// iterate returns the store's own backing slice of every held change, in
// reception order; it is not a copy. Callers must not retain it across a
// mutating call.
func (s *changeStore) iterate() []*CacheChange {
	return s.changes
}
