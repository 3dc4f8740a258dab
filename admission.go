package history

import "log/slog"

// admissionFunc is the per-History function bound once at construction
// from (hasKeys, historyKind), mirroring the original's receive_fn_ member
// (§4.3, §9 "Strategy dispatch": "bind one of four admission functions at
// construction... avoid per-call indirection where a compile-time dispatch
// suffices"). In Go the closest equivalent to the original's
// std::bind-to-member-function is a method expression such as
// (*History).admitKeepAllNoKey stored in a struct field: History.admit
// holds one and is called with the History as its first argument.
type admissionFunc func(h *History, change *CacheChange, unknownMissingUpTo int) (bool, error)

// bindAdmissionFunc selects the admission strategy for (hasKeys, kind),
// exactly the table in spec.md §4.3.
func bindAdmissionFunc(hasKeys bool, kind HistoryKind) admissionFunc {
	switch {
	case !hasKeys && kind == KeepAll:
		return (*History).admitKeepAllNoKey
	case !hasKeys && kind == KeepLast:
		return (*History).admitKeepLastNoKey
	case hasKeys && kind == KeepAll:
		return (*History).admitKeepAllWithKey
	default: // hasKeys && kind == KeepLast
		return (*History).admitKeepLastWithKey
	}
}

// admitKeepAllNoKey accepts iff the store has room for change plus every
// lower sequence number the RTPS layer still expects to fill in. It never
// evicts.
func (h *History) admitKeepAllNoKey(change *CacheChange, unknownMissingUpTo int) (bool, error) {
	if h.store.size()+unknownMissingUpTo >= h.store.max {
		h.logger.Warn("change not added, resource limits reached",
			slog.String("topic", h.topicName))
		return false, ErrCapacityExceeded
	}
	return h.addReceivedChangeNts(change)
}

// admitKeepLastNoKey accepts if the store is below depth, otherwise evicts
// the oldest sample and accepts in its place.
func (h *History) admitKeepLastNoKey(change *CacheChange, _ int) (bool, error) {
	if h.store.size() >= h.depth {
		if err := h.removeChangeSubNts(h.store.front()); err != nil {
			return false, err
		}
	}
	return h.addReceivedChangeNts(change)
}

// admitKeepAllWithKey resolves the owning instance and accepts iff it has
// room under max_samples_per_instance. It never evicts.
func (h *History) admitKeepAllWithKey(change *CacheChange, _ int) (bool, error) {
	entry, err := h.resolveEntryNts(change)
	if err != nil {
		return false, err
	}

	if len(entry.CacheChanges) >= h.resourceLimits.MaxSamplesPerInstance {
		h.logger.Warn("change not added due to maximum number of samples per instance",
			slog.String("topic", h.topicName),
			slog.String("instance", change.InstanceHandle.String()))
		return false, ErrCapacityExceeded
	}

	return h.addReceivedChangeWithKeyNts(change, entry)
}

// admitKeepLastWithKey resolves the owning instance and accepts if it is
// below depth, otherwise evicts that instance's oldest sample first.
func (h *History) admitKeepLastWithKey(change *CacheChange, _ int) (bool, error) {
	entry, err := h.resolveEntryNts(change)
	if err != nil {
		return false, err
	}

	if len(entry.CacheChanges) >= h.depth {
		if err := h.removeChangeSubNts(entry.CacheChanges[0]); err != nil {
			return false, err
		}
	}

	return h.addReceivedChangeWithKeyNts(change, entry)
}
