package history

import (
	"bytes"
	"encoding/hex"
)

// instanceHandleSize is the wire width of an RTPS InstanceHandle_t: a
// 12-byte GUID-derived prefix plus a 4-byte key hash suffix.
const instanceHandleSize = 16

// InstanceHandle identifies a keyed instance within a topic. Unkeyed topics
// never allocate real handles and instead address their single fictitious
// instance via FictitiousHandle.
//
// InstanceHandle is totally ordered by byte-wise comparison, which is all
// lookup_instance's upper_bound query (§4.5) requires.
type InstanceHandle [instanceHandleSize]byte

// HandleNil is the distinguished "undefined" handle. A CacheChange arrives
// with this value when the RTPS layer did not resolve an instance handle
// for it, requiring the Key Resolver to derive one from the payload.
var HandleNil InstanceHandle

// FictitiousHandle is the sentinel standing in for the single instance of
// an unkeyed topic. It is never stored in the instance table; it is only
// ever returned by lookup_instance as a label for the whole change store.
var FictitiousHandle = InstanceHandle{1}

// IsDefined reports whether h is anything other than HandleNil.
func (h InstanceHandle) IsDefined() bool {
	return h != HandleNil
}

// Less implements the total order used by lookup_instance's exact=false
// (upper_bound) queries. It is plain lexicographic byte comparison, matching
// the original InstanceHandle_t::operator< semantics.
func (h InstanceHandle) Less(other InstanceHandle) bool {
	return bytes.Compare(h[:], other[:]) < 0
}

// String renders h as lowercase hex, useful for log fields and test output.
func (h InstanceHandle) String() string {
	return hex.EncodeToString(h[:])
}
