package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupInstanceUnkeyedFictitious(t *testing.T) {
	h, _, _ := newTestHistory(false, KeepAll, 0, ResourceLimits{})

	c1 := changeWithHandle(1, HandleNil)
	c2 := changeWithHandle(2, HandleNil)
	require.NoError(t, mustReceive(t, h, c1))
	require.NoError(t, mustReceive(t, h, c2))

	// B3: exact=true on HANDLE_NIL is not found.
	_, found, err := h.LookupInstance(HandleNil, true)
	require.NoError(t, err)
	assert.False(t, found)

	// B3: exact=false returns the fictitious handle and the whole store.
	info, found, err := h.LookupInstance(HandleNil, false)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, FictitiousHandle, info.Handle)
	assert.Equal(t, []*CacheChange{c1, c2}, info.CacheChanges)

	// Unkeyed + any other defined handle: never found, either mode.
	_, found, err = h.LookupInstance(keyHandle('Z'), true)
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = h.LookupInstance(keyHandle('Z'), false)
	require.NoError(t, err)
	assert.False(t, found)
}

// TestLookupInstanceKeyedUpperBound exercises the exact=false upper_bound
// query across several instances.
func TestLookupInstanceKeyedUpperBound(t *testing.T) {
	h, _, _ := newTestHistory(true, KeepAll, 0, ResourceLimits{MaxInstances: 10, MaxSamplesPerInstance: 10})

	require.NoError(t, mustReceive(t, h, change(1, keyPayload('A'))))
	require.NoError(t, mustReceive(t, h, change(2, keyPayload('C'))))
	require.NoError(t, mustReceive(t, h, change(3, keyPayload('E'))))

	// Exact lookup of an existing key.
	info, found, err := h.LookupInstance(keyHandle('C'), true)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, keyHandle('C'), info.Handle)

	// Exact lookup of a non-existent key.
	_, found, err = h.LookupInstance(keyHandle('B'), true)
	require.NoError(t, err)
	assert.False(t, found)

	// upper_bound('B') -> 'C' (least strictly greater).
	info, found, err = h.LookupInstance(keyHandle('B'), false)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, keyHandle('C'), info.Handle)

	// upper_bound('E') -> nothing greater exists.
	_, found, err = h.LookupInstance(keyHandle('E'), false)
	require.NoError(t, err)
	assert.False(t, found)

	// R2: lookup_instance is idempotent and side-effect-free.
	before := h.store.size()
	_, _, _ = h.LookupInstance(keyHandle('C'), true)
	_, _, _ = h.LookupInstance(keyHandle('C'), true)
	assert.Equal(t, before, h.store.size())
}

func TestGetFirstUntakenInfo(t *testing.T) {
	h, r, _ := newTestHistory(false, KeepAll, 0, ResourceLimits{})

	c := changeWithHandle(1, HandleNil)
	c.Kind = Alive
	r.pending = append(r.pending, c)

	info, ok, err := h.GetFirstUntakenInfo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, NotRead, info.SampleState)
	assert.True(t, info.ValidData)
	assert.Len(t, r.readLog, 1)
	assert.Same(t, c, r.readLog[0])

	// No more pending changes.
	_, ok, err = h.GetFirstUntakenInfo()
	require.NoError(t, err)
	assert.False(t, ok)
}
