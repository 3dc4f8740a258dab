// historydemo drives a reader history with a handful of synthetic samples
// and narrates what each query operation returns, without needing a real
// RTPS network stack.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	history "github.com/lio-systems/rtps-readerhistory"
)

func main() {
	fmt.Println("=== Reader History Example ===")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	demonstrateKeyedKeepLast(logger)
	fmt.Println()
	demonstrateUnkeyedKeepAll(logger)
}

// demoTypeSupport treats the first byte of a payload as its key, matching
// the minimal fixture type used throughout this module's own tests.
type demoTypeSupport struct {
	hasKey      bool
	payloadSize int
}

func (t demoTypeSupport) HasKey() bool     { return t.hasKey }
func (t demoTypeSupport) PayloadSize() int { return t.payloadSize }

func (t demoTypeSupport) CreateScratch() any { return new([1]byte) }
func (t demoTypeSupport) DestroyScratch(any) {}

func (t demoTypeSupport) Deserialize(payload []byte, scratch any) error {
	buf := scratch.(*[1]byte)
	if len(payload) == 0 {
		return fmt.Errorf("empty payload")
	}
	buf[0] = payload[0]
	return nil
}

func (t demoTypeSupport) GetKey(scratch any, _ bool) (history.InstanceHandle, bool) {
	buf := scratch.(*[1]byte)
	var h history.InstanceHandle
	h[0] = buf[0]
	return h, true
}

// demoReader is the minimal Reader a History needs attached; it is not
// itself exercised over the network, only enough to let GetFirstUntakenInfo
// walk a FIFO of delivered changes.
type demoReader struct {
	guid    history.GUID
	pending []*history.CacheChange
}

func (r *demoReader) GUID() history.GUID { return r.guid }

func (r *demoReader) NextUntakenCache() (*history.CacheChange, any, bool) {
	if len(r.pending) == 0 {
		return nil, nil, false
	}
	c := r.pending[0]
	r.pending = r.pending[1:]
	return c, nil, true
}

func (r *demoReader) ChangeReadByUser(*history.CacheChange, any, bool) {}

func (r *demoReader) SecurityAttributes() history.SecurityAttributes {
	return history.SecurityAttributes{}
}

func demonstrateKeyedKeepLast(logger *slog.Logger) {
	fmt.Println("--- Keyed topic, KEEP_LAST(2) ---")

	qos := history.QoS{
		History:        history.HistoryQoS{Kind: history.KeepLast, Depth: 2},
		ResourceLimits: history.ResourceLimits{MaxInstances: 4},
	}

	h, err := history.New(demoTypeSupport{hasKey: true, payloadSize: 8}, "Temperature", "SensorReading", qos, logger)
	if err != nil {
		log.Fatalf("new history: %v", err)
	}

	reader := &demoReader{guid: history.GUID{1}}
	h.Attach(reader)
	defer h.Detach()

	now := time.Now()
	for seq, key := range []byte{'A', 'A', 'A', 'B', 'B'} {
		c := &history.CacheChange{
			SequenceNumber:     history.SequenceNumber(seq + 1),
			WriterGUID:         history.GUID{2},
			SerializedPayload:  []byte{key},
			SourceTimestamp:    now,
			ReceptionTimestamp: now,
		}
		reader.pending = append(reader.pending, c)

		ok, err := h.ReceivedChange(c, 0)
		if err != nil {
			log.Fatalf("received change: %v", err)
		}
		fmt.Printf("  delivered key=%c seq=%d accepted=%t\n", key, c.SequenceNumber, ok)
	}

	for _, key := range []byte{'A', 'B'} {
		var handle history.InstanceHandle
		handle[0] = key
		info, ok, err := h.LookupInstance(handle, true)
		if err != nil {
			log.Fatalf("lookup instance: %v", err)
		}
		fmt.Printf("  instance %c: found=%t samples=%d (KEEP_LAST(2) caps retention per instance)\n",
			key, ok, len(info.CacheChanges))
	}

	for {
		info, ok, err := h.GetFirstUntakenInfo()
		if err != nil {
			log.Fatalf("get first untaken: %v", err)
		}
		if !ok {
			break
		}
		fmt.Printf("  untaken sample: instance=%s valid=%t\n", info.InstanceHandle, info.ValidData)
	}
}

func demonstrateUnkeyedKeepAll(logger *slog.Logger) {
	fmt.Println("--- Unkeyed topic, KEEP_ALL, resource-limited ---")

	qos := history.QoS{
		History:        history.HistoryQoS{Kind: history.KeepAll},
		ResourceLimits: history.ResourceLimits{MaxSamples: 3},
	}

	h, err := history.New(demoTypeSupport{hasKey: false, payloadSize: 8}, "Log", "LogLine", qos, logger)
	if err != nil {
		log.Fatalf("new history: %v", err)
	}

	reader := &demoReader{guid: history.GUID{3}}
	h.Attach(reader)
	defer h.Detach()

	for seq := 1; seq <= 4; seq++ {
		c := &history.CacheChange{
			SequenceNumber:    history.SequenceNumber(seq),
			WriterGUID:        history.GUID{4},
			SerializedPayload: []byte("line"),
		}
		ok, err := h.ReceivedChange(c, 0)
		switch {
		case err == history.ErrCapacityExceeded:
			fmt.Printf("  seq=%d rejected: history is full (MaxSamples=3)\n", seq)
		case err != nil:
			log.Fatalf("received change: %v", err)
		default:
			fmt.Printf("  seq=%d accepted=%t\n", seq, ok)
		}
	}

	info, ok, err := h.LookupInstance(history.HandleNil, false)
	if err != nil {
		log.Fatalf("lookup instance: %v", err)
	}
	fmt.Printf("  fictitious instance found=%t samples=%d\n", ok, len(info.CacheChanges))
}
