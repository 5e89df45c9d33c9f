package arena

import "errors"

// ErrBackingExhausted is returned by Allocate when the MemoryManager
// refuses to create a new arena.
var ErrBackingExhausted = errors.New("arena: backing storage exhausted")

// ErrInvariantViolated is returned (or, in debug builds, raised via
// internal/debug.Assert) when a caller misuses a handle: double-free,
// deallocating a handle that was never issued, or resolving a stale
// handle after defragmentation rebound it.
var ErrInvariantViolated = errors.New("arena: invariant violated")

// ErrDefragmentUnsupported is returned by Defragment when the Allocator's
// MemoryManager does not also implement DefragManager.
var ErrDefragmentUnsupported = errors.New("arena: manager does not support defragmentation")
