package history

import "time"

// InstanceInfo is the result of a LookupInstance query: the resolved
// handle (which may differ from the handle queried for, in the
// exact=false / upper_bound case) paired with the ordered list of cache
// changes belonging to it.
type InstanceInfo struct {
	Handle       InstanceHandle
	CacheChanges []*CacheChange
}

// GetFirstUntakenInfo asks the enclosing reader for its next cache change
// that has not been read by the user; if one exists, it builds a
// SampleInfo from it and marks it read (not taken) (§4.5).
func (h *History) GetFirstUntakenInfo() (SampleInfo, bool, error) {
	if err := h.lockOrFail(); err != nil {
		return SampleInfo{}, false, err
	}
	defer h.unlock()

	change, writerProxy, ok := h.guarded.reader.NextUntakenCache()
	if !ok {
		return SampleInfo{}, false, nil
	}

	info := buildSampleInfo(change)
	h.guarded.reader.ChangeReadByUser(change, writerProxy, false)
	return info, true, nil
}

// LookupInstance resolves handle to an InstanceInfo (§4.5):
//
//   - Unkeyed + HandleNil + !exact: returns the fictitious instance and
//     the whole change store.
//   - Unkeyed otherwise: not found.
//   - Keyed + exact: direct map lookup.
//   - Keyed + !exact: the least instance strictly greater than handle.
func (h *History) LookupInstance(handle InstanceHandle, exact bool) (InstanceInfo, bool, error) {
	if err := h.lockOrFail(); err != nil {
		return InstanceInfo{}, false, err
	}
	defer h.unlock()

	return h.lookupInstanceNts(handle, exact)
}

func (h *History) lookupInstanceNts(handle InstanceHandle, exact bool) (InstanceInfo, bool, error) {
	if !h.hasKeys {
		if handle.IsDefined() {
			// NO_KEY topics can only ever return the fictitious instance;
			// a caller asking about any other defined handle gets nothing,
			// whether searching exactly or for the next-greater instance.
			return InstanceInfo{}, false, nil
		}

		if exact {
			return InstanceInfo{}, false, nil
		}

		return InstanceInfo{Handle: FictitiousHandle, CacheChanges: h.store.iterate()}, true, nil
	}

	if exact {
		entry, ok := h.instances.byHandle[handle]
		if !ok {
			return InstanceInfo{}, false, nil
		}
		return InstanceInfo{Handle: handle, CacheChanges: entry.CacheChanges}, true, nil
	}

	next, ok := h.instances.upperBound(handle)
	if !ok {
		return InstanceInfo{}, false, nil
	}
	entry := h.instances.byHandle[next]
	return InstanceInfo{Handle: next, CacheChanges: entry.CacheChanges}, true, nil
}

// SetNextDeadline records the next time a fresh sample is expected for
// handle (§4.5). On unkeyed topics handle is ignored and the single
// global deadline is updated; on keyed topics handle must already exist
// in the instance table.
func (h *History) SetNextDeadline(handle InstanceHandle, nextDeadline time.Time) error {
	if err := h.lockOrFail(); err != nil {
		return err
	}
	defer h.unlock()

	if !h.hasKeys {
		h.globalNextDeadline = nextDeadline
		return nil
	}

	entry, ok := h.instances.byHandle[handle]
	if !ok {
		return ErrNotFound
	}
	entry.NextDeadline = nextDeadline
	return nil
}

// GetNextDeadline returns the instance (ignored for unkeyed topics) and
// timestamp of the next deadline due to expire. For keyed topics this is
// the entry with the globally minimum NextDeadline (§4.5, P7).
func (h *History) GetNextDeadline() (InstanceHandle, time.Time, error) {
	if err := h.lockOrFail(); err != nil {
		return InstanceHandle{}, time.Time{}, err
	}
	defer h.unlock()

	if !h.hasKeys {
		return InstanceHandle{}, h.globalNextDeadline, nil
	}

	var (
		minHandle InstanceHandle
		minTime   time.Time
		found     bool
	)
	for handle, entry := range h.instances.byHandle {
		if !found || entry.NextDeadline.Before(minTime) {
			minHandle, minTime, found = handle, entry.NextDeadline, true
		}
	}
	if !found {
		return InstanceHandle{}, time.Time{}, ErrNotFound
	}
	return minHandle, minTime, nil
}
