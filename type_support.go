package history

// TypeSupport is the capability set the topic type plugin exposes to the
// history core (§6, "Consumed from the type plugin"). The core never
// serializes or deserializes a full sample itself; it only ever needs to
// recover a key from a payload.
type TypeSupport interface {
	// HasKey reports whether the type defines one or more key fields.
	HasKey() bool

	// PayloadSize is the type's fixed or typical serialized size in bytes,
	// used to size the payload pool's buffers.
	PayloadSize() int

	// CreateScratch allocates the single scratch key object the history
	// keeps for the lifetime of the core and reuses on every key
	// extraction (§9, "Scratch key object").
	CreateScratch() (scratch any)

	// DestroyScratch releases a scratch object created by CreateScratch.
	DestroyScratch(scratch any)

	// Deserialize decodes payload into scratch. Only the fields needed by
	// GetKey must be populated; a partial, key-only deserialization is
	// permitted and is what most real plugins implement.
	Deserialize(payload []byte, scratch any) error

	// GetKey extracts an instance handle from a previously deserialized
	// scratch object. isKeyProtected reflects the reader's security
	// attributes (§6) and may change how the plugin derives the handle
	// (e.g. hashing a protected key field instead of copying it verbatim).
	GetKey(scratch any, isKeyProtected bool) (InstanceHandle, bool)
}
