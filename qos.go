package history

import "math"

// HistoryKind selects one of the two DDS retention strategies for a topic.
type HistoryKind int

const (
	// KeepAll never evicts; admission is refused once resource limits are
	// reached.
	KeepAll HistoryKind = iota
	// KeepLast evicts the oldest sample (globally, or per-instance for keyed
	// topics) to make room for an arriving one, bounding retention to Depth.
	KeepLast
)

// HistoryQoS mirrors the DDS HISTORY QoS policy.
type HistoryQoS struct {
	Kind  HistoryKind
	Depth int
}

// ResourceLimits mirrors the DDS RESOURCE_LIMITS QoS policy. A zero value in
// MaxSamples, MaxInstances or MaxSamplesPerInstance means "unlimited" and is
// rewritten to math.MaxInt32 by normalizeResourceLimits at construction
// time (§3 Lifecycle, B1); AllocatedSamples is left as given.
type ResourceLimits struct {
	AllocatedSamples      int
	MaxSamples            int
	MaxInstances          int
	MaxSamplesPerInstance int
}

// unlimited is the sentinel "effectively unbounded" value zero resource
// limits are rewritten to. int32 max, matching the original's
// std::numeric_limits<int32_t>::max() even though Go ints are 64-bit on
// every supported platform: this keeps the ceiling comfortably below the
// point where size_t/int accounting elsewhere could overflow on arithmetic
// like depth*maxInstances.
const unlimited = math.MaxInt32

// normalizeResourceLimits returns a copy of rl with a zero MaxSamples,
// MaxInstances or MaxSamplesPerInstance rewritten to unlimited.
func normalizeResourceLimits(rl ResourceLimits) ResourceLimits {
	if rl.MaxSamples == 0 {
		rl.MaxSamples = unlimited
	}
	if rl.MaxInstances == 0 {
		rl.MaxInstances = unlimited
	}
	if rl.MaxSamplesPerInstance == 0 {
		rl.MaxSamplesPerInstance = unlimited
	}
	return rl
}

// HistoryMemoryPolicy names the DDS payload allocation policies listed
// below. It is carried in the QoS snapshot only: New does not pass it to
// NewBoundedPayloadPool, and the bounded pool allocates buffers on demand
// in the same way whatever the policy is.
type HistoryMemoryPolicy int

const (
	// PreallocatedMemoryPolicy reserves InitialSamples buffers up front and
	// never grows past MaxSamples.
	PreallocatedMemoryPolicy HistoryMemoryPolicy = iota
	// PreallocatedWithReallocMemoryPolicy starts with InitialSamples but may
	// grow lazily up to MaxSamples.
	PreallocatedWithReallocMemoryPolicy
	// DynamicMemoryPolicy allocates every buffer on demand, returning it to
	// the pool on release.
	DynamicMemoryPolicy
)

// EndpointQoS carries the subset of the ENDPOINT QoS policy the history
// layer forwards to its payload pool.
type EndpointQoS struct {
	HistoryMemoryPolicy HistoryMemoryPolicy
}

// QoS is the snapshot of DDS QoS inputs a History is constructed from.
type QoS struct {
	History        HistoryQoS
	ResourceLimits ResourceLimits
	Endpoint       EndpointQoS
}

// poolSizing is the resolved (initial, max) buffer-count pair and the
// per-buffer size the PayloadPool should be created with. It reproduces
// the original's to_history_attributes helper: for KEEP_LAST the cap is
// depth (unkeyed) or depth*maxInstances (keyed), with the initial
// reservation clamped to that cap; for KEEP_ALL the raw resource limits
// apply unmodified.
type poolSizing struct {
	InitialSamples int
	MaxSamples     int
	PayloadSize    int
}

// resolvePoolSizing computes poolSizing from the topic's payload size, the
// QoS snapshot, and whether the topic has keys.
func resolvePoolSizing(payloadSize int, hasKeys bool, qos QoS) poolSizing {
	initial := qos.ResourceLimits.AllocatedSamples
	max := qos.ResourceLimits.MaxSamples

	if qos.History.Kind != KeepAll {
		max = qos.History.Depth
		if hasKeys {
			max *= qos.ResourceLimits.MaxInstances
		}
		if initial > max {
			initial = max
		}
	}

	return poolSizing{
		InitialSamples: initial,
		MaxSamples:     max,
		PayloadSize:    payloadSize + 3, // alignment slack, per the original
	}
}
