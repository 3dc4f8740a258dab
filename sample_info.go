package history

import "time"

// SampleState reports whether the application has already read a sample.
type SampleState int

const (
	NotRead SampleState = iota
	Read
)

// ViewState reports whether a sample is the application's first ever view
// of its instance.
type ViewState int

const (
	NotNew ViewState = iota
	ViewNew
)

// InstanceState mirrors the instance's liveliness as seen by the reader.
// Only Alive and Disposed are populated today; every other ChangeKind maps
// to Alive pending future support, matching the original switch's default
// case (§4.6, §9 Open Questions).
type InstanceState int

const (
	InstanceAlive InstanceState = iota
	InstanceNotAliveDisposed
)

// SampleInfo is the metadata record returned alongside a sample to the
// application, built from a CacheChange by buildSampleInfo (§4.6).
type SampleInfo struct {
	SampleState               SampleState
	ViewState                 ViewState
	InstanceState             InstanceState
	DisposedGenerationCount   int
	NoWritersGenerationCount  int
	SampleRank                int
	GenerationRank            int
	AbsoluteGenerationRank    int
	SourceTimestamp           time.Time
	ReceptionTimestamp        time.Time
	InstanceHandle            InstanceHandle
	PublicationHandle         InstanceHandle
	SampleIdentity            SampleIdentity
	RelatedSampleIdentity     SampleIdentity
	ValidData                 bool
}

// publicationHandleFromGUID derives the publication handle DDS associates
// with a writer: the first 16 bytes of its GUID. RTPS GUIDs are already
// 16 bytes wide, so this is a direct copy.
func publicationHandleFromGUID(g GUID) InstanceHandle {
	return InstanceHandle(g)
}

// buildSampleInfo fills a SampleInfo from change, per the field table in
// spec.md §4.6. Generation and rank tracking is stubbed at fixed values —
// a documented fidelity gap (§9): a fully DDS-compliant implementation
// would track disposed/no-writers generations per instance, which this
// core does not do.
func buildSampleInfo(change *CacheChange) SampleInfo {
	info := SampleInfo{
		SampleState:              NotRead,
		ViewState:                NotNew,
		DisposedGenerationCount:  0,
		NoWritersGenerationCount: 1,
		SampleRank:               0,
		GenerationRank:           0,
		AbsoluteGenerationRank:   0,
		SourceTimestamp:          change.SourceTimestamp,
		ReceptionTimestamp:       change.ReceptionTimestamp,
		InstanceHandle:           change.InstanceHandle,
		PublicationHandle:        publicationHandleFromGUID(change.WriterGUID),
		SampleIdentity: SampleIdentity{
			WriterGUID:     change.WriterGUID,
			SequenceNumber: change.SequenceNumber,
		},
		RelatedSampleIdentity: change.WriteParams.RelatedSampleIdentity,
		ValidData:             change.Kind == Alive,
	}

	switch change.Kind {
	case Alive:
		info.InstanceState = InstanceAlive
	case NotAliveDisposed:
		info.InstanceState = InstanceNotAliveDisposed
	default:
		// TODO(fidelity): other kinds (NotAliveUnregistered,
		// NotAliveDisposedUnregistered) should map to their own instance
		// states once this core tracks no-writers liveliness; until then
		// they are treated as Alive, matching the original's default case.
		info.InstanceState = InstanceAlive
	}

	return info
}
