package history

// This file holds the fixtures shared by more than one _test.go file in
// this package and defines no test functions of its own — mirroring the
// teacher's store_test_helpers.go, which does the same for its own test
// suite's shared fixtures.
//
// Being a _test.go file itself, it is compiled only into the package's
// tests and is never referenced by production code; none of these types
// are exported.

// fakeTypeSupport is a TypeSupport whose "serialized payload" is simply
// the raw instance-key bytes (optionally padded/truncated to
// instanceHandleSize), so tests can construct keyed samples without a
// real IDL-generated plugin.
type fakeTypeSupport struct {
	hasKey      bool
	payloadSize int
	// failGetKey, when set, makes every GetKey call fail, exercising the
	// KeyUnresolvable path (scenario 5 / B2).
	failGetKey bool
}

type fakeScratch struct {
	payload []byte
}

func (f *fakeTypeSupport) HasKey() bool      { return f.hasKey }
func (f *fakeTypeSupport) PayloadSize() int  { return f.payloadSize }
func (f *fakeTypeSupport) CreateScratch() any { return &fakeScratch{} }
func (f *fakeTypeSupport) DestroyScratch(any) {}

func (f *fakeTypeSupport) Deserialize(payload []byte, scratch any) error {
	s := scratch.(*fakeScratch)
	s.payload = payload
	return nil
}

func (f *fakeTypeSupport) GetKey(scratch any, _ bool) (InstanceHandle, bool) {
	if f.failGetKey {
		return InstanceHandle{}, false
	}
	s := scratch.(*fakeScratch)
	var h InstanceHandle
	copy(h[:], s.payload)
	return h, true
}

// keyHandle builds the InstanceHandle a fakeTypeSupport derives from
// keyPayload(key), for looking up and comparing against the handle a
// keyed sample resolves to through GetKey.
func keyHandle(key byte) InstanceHandle {
	var h InstanceHandle
	h[0] = key
	return h
}

// keyPayload builds a payload fakeTypeSupport.GetKey would resolve back
// to keyHandle(key).
func keyPayload(key byte) []byte {
	buf := make([]byte, instanceHandleSize)
	buf[0] = key
	return buf
}

// fakeReader is a minimal Reader that tracks a "pending" queue of changes
// the application hasn't read yet, for GetFirstUntakenInfo tests.
type fakeReader struct {
	guid     GUID
	pending  []*CacheChange
	security SecurityAttributes
	readLog  []*CacheChange
}

func newFakeReader() *fakeReader {
	return &fakeReader{guid: GUID{0xAA}}
}

func (r *fakeReader) GUID() GUID { return r.guid }

func (r *fakeReader) NextUntakenCache() (*CacheChange, any, bool) {
	if len(r.pending) == 0 {
		return nil, nil, false
	}
	c := r.pending[0]
	r.pending = r.pending[1:]
	return c, nil, true
}

func (r *fakeReader) ChangeReadByUser(change *CacheChange, _ any, _ bool) {
	r.readLog = append(r.readLog, change)
}

func (r *fakeReader) SecurityAttributes() SecurityAttributes { return r.security }

// newTestHistory builds a History wired to a fakeTypeSupport/fakeReader
// pair, already attached, ready for ReceivedChange calls.
func newTestHistory(hasKey bool, kind HistoryKind, depth int, rl ResourceLimits) (*History, *fakeReader, *fakeTypeSupport) {
	ts := &fakeTypeSupport{hasKey: hasKey, payloadSize: instanceHandleSize}
	qos := QoS{
		History:        HistoryQoS{Kind: kind, Depth: depth},
		ResourceLimits: rl,
	}
	h, err := New(ts, "test/topic", "test::Type", qos, nil)
	if err != nil {
		panic(err)
	}
	r := newFakeReader()
	h.Attach(r)
	return h, r, ts
}

// change builds a minimal CacheChange with the given sequence number and
// payload, undefined instance handle (so keyed tests exercise
// resolution), kind Alive.
func change(seq SequenceNumber, payload []byte) *CacheChange {
	return &CacheChange{
		SequenceNumber:    seq,
		WriterGUID:        GUID{0x01},
		SerializedPayload: payload,
		Kind:              Alive,
	}
}

// changeWithHandle is like change but pre-resolves the instance handle,
// for unkeyed-topic tests where no key extraction happens.
func changeWithHandle(seq SequenceNumber, handle InstanceHandle) *CacheChange {
	c := change(seq, nil)
	c.InstanceHandle = handle
	return c
}
