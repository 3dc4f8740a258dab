package history

import "log/slog"

// Lock and Unlock expose the History's internal guard so that the
// enclosing reader can hold it across a sequence of calls that includes
// RemoveChangeNts (§4.4: "the lower-level remove_change_nts... invoked by
// the reader for expiry/cleanup"). Every other public method already
// takes the lock itself; Lock/Unlock exist only for this one
// already-locked entry point.
func (h *History) Lock() { h.guarded.mu.Lock() }

// Unlock releases a lock previously taken with Lock.
func (h *History) Unlock() { h.guarded.mu.Unlock() }

// RemoveChangeSub removes change by pointer identity (§4.4, single-change
// overload). For keyed topics it first scrubs change out of its owning
// InstanceEntry; failure to find it there is logged as an InvariantBreach
// but does not prevent removal from the global store.
func (h *History) RemoveChangeSub(change *CacheChange) error {
	if err := h.lockOrFail(); err != nil {
		return err
	}
	defer h.unlock()

	return h.removeChangeSubNts(change)
}

// removeChangeSubNts is RemoveChangeSub's body, reusable by admission's
// KEEP_LAST eviction path without re-locking (§9 "Recursive locking").
func (h *History) removeChangeSubNts(change *CacheChange) error {
	if h.hasKeys {
		h.scrubFromInstanceNts(change)
	}

	idx := h.store.find(change)
	if idx < 0 {
		h.logger.Info("trying to remove a change not in history")
		return ErrNotFound
	}

	h.store.removeAt(idx)
	return nil
}

// RemoveChangeSubAt removes change, identified both by pointer and by the
// caller's current position it within the global store's iteration order
// (§4.4, iterator overload). It returns the index the caller's iterator
// should resume from: the position that now holds what used to be the
// following element.
func (h *History) RemoveChangeSubAt(change *CacheChange, it int) (next int, err error) {
	if err := h.lockOrFail(); err != nil {
		return it, err
	}
	defer h.unlock()

	if h.hasKeys {
		h.scrubFromInstanceNts(change)
	}

	idx := h.store.find(change)
	if idx < 0 {
		h.logger.Info("trying to remove a change not in history")
		return it, ErrNotFound
	}

	h.store.removeAt(idx)

	if idx < it {
		return it - 1, nil
	}
	return it, nil
}

// scrubFromInstanceNts removes change from its owning InstanceEntry's
// sample list, logging an InvariantBreach if it is not found there (I1
// should guarantee it always is). The instance entry itself is never
// erased here, even if it becomes empty — only findOrCreate's reclaim
// path erases instance entries (§4.2, §4.4).
func (h *History) scrubFromInstanceNts(change *CacheChange) {
	entry, ok := h.instances.byHandle[change.InstanceHandle]
	if !ok {
		h.logger.Error("change not found on this key, something is wrong",
			slog.String("instance", change.InstanceHandle.String()))
		return
	}

	for i, c := range entry.CacheChanges {
		if c.SequenceNumber == change.SequenceNumber && c.WriterGUID == change.WriterGUID {
			entry.CacheChanges = append(entry.CacheChanges[:i], entry.CacheChanges[i+1:]...)
			return
		}
	}

	h.logger.Error("change not found on this key, something is wrong",
		slog.String("instance", change.InstanceHandle.String()))
}

// RemoveChangeNts is the lower-level removal entry point the reader
// invokes directly for expiry and cleanup (§4.4). Unlike RemoveChangeSub
// it does not acquire the lock itself: the caller must already hold it
// via Lock/Unlock, exactly as the original's remove_change_nts assumes
// the reader already holds mp_mutex when it calls in.
//
// It scrubs any reference to the change at index it from its owning
// InstanceEntry (for keyed topics with a defined handle) before removing
// it from the global store. release controls whether the removed
// change's payload buffer is returned to the PayloadPool.
func (h *History) RemoveChangeNts(it int, release bool) (next int, err error) {
	if h.guarded.reader == nil {
		h.logger.Error("you need to create a reader with this history before using it")
		return it, ErrPrecondition
	}

	if it < 0 || it >= h.store.size() {
		return it, ErrNotFound
	}

	change := h.store.changes[it]

	if h.hasKeys && change.InstanceHandle.IsDefined() {
		entry, ok := h.instances.byHandle[change.InstanceHandle]
		if ok {
			for i, c := range entry.CacheChanges {
				if c == change {
					entry.CacheChanges = append(entry.CacheChanges[:i], entry.CacheChanges[i+1:]...)
					break
				}
			}
		}
	}

	h.store.removeAt(it)

	if release && h.payloadPool != nil {
		h.payloadPool.Put(change.SerializedPayload)
		change.SerializedPayload = nil
	}

	return it, nil
}
