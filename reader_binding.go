package history

import "sync"

// SecurityAttributes is the subset of the reader's security configuration
// the history core consults when resolving keys (§6).
type SecurityAttributes struct {
	IsKeyProtected bool
}

// Reader is the capability set the enclosing RTPS reader exposes to its
// history (§6, "Consumed from the enclosing reader"). A History is inert
// until Attach binds one; every public method other than Attach, Detach,
// Close, Lock and Unlock returns ErrPrecondition before that.
type Reader interface {
	// GUID is the reader's own global identifier. The history core does
	// not currently call it.
	GUID() GUID

	// NextUntakenCache reports the next cache change the application has
	// not yet taken, if any.
	NextUntakenCache() (change *CacheChange, writerProxy any, ok bool)

	// ChangeReadByUser marks change as having been observed by the
	// application, optionally also marking it taken.
	ChangeReadByUser(change *CacheChange, writerProxy any, taken bool)

	// SecurityAttributes returns the reader's current security
	// configuration.
	SecurityAttributes() SecurityAttributes
}

// guardedReader holds the lock and reader back-pointer a History needs
// once attached. The lock is a plain, non-recursive sync.Mutex: the
// original DDS implementation needed a recursive mutex because its
// KEEP_LAST eviction path re-entered the public remove_change_sub entry
// point while already holding the lock. This module avoids that by never
// re-locking: every public History method takes the lock once and calls
// unexported "*Nts" ("not thread-safe", i.e. "caller already holds the
// lock") helpers for any internal step that would otherwise have to
// re-enter a locking method (§9 Design Notes, "Recursive locking" —
// "Prefer refactoring to a non-recursive lock with inner *_nts primitives
// if reimplementing from scratch").
type guardedReader struct {
	mu     sync.Mutex
	reader Reader
}

// attached reports whether a reader has been bound yet.
func (g *guardedReader) attached() bool {
	return g.reader != nil
}
