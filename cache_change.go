package history

import "time"

// GUID identifies an RTPS entity (writer or reader) globally. It is supplied
// by the network layer and treated as an opaque, comparable value by this
// package.
type GUID [16]byte

// SequenceNumber is the per-writer, strictly increasing sample counter RTPS
// assigns to every sample a writer produces.
type SequenceNumber int64

// ChangeKind enumerates the disposition of a sample as the writer published
// it. Only ALIVE and NotAliveDisposed are given first-class instance-state
// handling today (§4.6); the remaining kinds map to Alive pending future
// support, exactly as the original's switch statement does.
type ChangeKind int

const (
	Alive ChangeKind = iota
	NotAliveDisposed
	NotAliveUnregistered
	NotAliveDisposedUnregistered
)

// SampleIdentity uniquely identifies one sample across the whole domain: the
// writer that produced it plus that writer's sequence number for it.
type SampleIdentity struct {
	WriterGUID     GUID
	SequenceNumber SequenceNumber
}

// WriteParams carries the small bundle of metadata the writer attached to a
// sample at write time. This core only reads RelatedSampleIdentity out of it
// (used for request/reply correlation by application code); everything else
// is opaque to the history.
type WriteParams struct {
	SampleIdentity        SampleIdentity
	RelatedSampleIdentity SampleIdentity
}

// CacheChange is one received sample plus its metadata. It is produced by
// the RTPS receive path and owned by the enclosing reader's payload pool;
// this package holds only non-owning pointers to it and never mutates a
// field other than InstanceHandle, which it sets when resolving a key that
// arrived undefined (§3).
type CacheChange struct {
	SequenceNumber     SequenceNumber
	WriterGUID         GUID
	InstanceHandle     InstanceHandle
	SerializedPayload  []byte
	Kind               ChangeKind
	SourceTimestamp    time.Time
	ReceptionTimestamp time.Time
	WriteParams        WriteParams
}
