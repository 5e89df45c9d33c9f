//go:build go1.18

// Package rtcore provides the small set of intrusive, index-based primitives
// shared by the arena allocator and the task scheduler: an append-only
// record bank with O(1) index recycling, an index-linked doubly-linked
// list, a spin lock, a bit-packed tagged pointer, and a bounded
// single-producer queue usable both as a per-worker local ring and (in its
// locked form) as a work-stealing shared queue.
//
// None of these types know anything about arenas or schedulers; they are
// the load-bearing plumbing both packages are built from, the way
// goutil/internal/xsync provides the plumbing shared across goutil's
// higher-level packages.
package rtcore

// NilIndex is the reserved sentinel index meaning "end of free list" or
// "no entry". Index 0 of a Bank is never handed out to callers.
const NilIndex uint32 = 0

// Bank is an append-only vector of records of type T with an embedded
// free-list of recycled indices, modeled on the original allocator's
// ca_bank<T>: push reuses the head of the free-list when non-empty, else
// grows the backing slice; erase threads the index back onto the
// free-list. Index 0 is a reserved sentinel and is never returned by Push.
//
// Unlike ca_bank<T>, which threads the free-list through a field embedded
// in T itself, Bank keeps the link in a parallel slice. This lets Bank be
// used with any T, including types that can't carry an extra field (e.g.
// value types shared with other bookkeeping), at the cost of one extra
// uint32 per slot.
type Bank[T any] struct {
	entries  []T
	freeNext []uint32
	freeHead uint32
}

// NewBank returns a Bank with its sentinel slot 0 pre-populated.
func NewBank[T any]() *Bank[T] {
	var zero T
	return &Bank[T]{
		entries:  []T{zero},
		freeNext: []uint32{NilIndex},
		freeHead: NilIndex,
	}
}

// Len returns the number of slots ever allocated, including the sentinel
// and any currently-free slots.
func (b *Bank[T]) Len() int { return len(b.entries) }

// Push appends rec and returns its stable index, reusing a recycled index
// when one is available.
func (b *Bank[T]) Push(rec T) uint32 {
	if b.freeHead != NilIndex {
		idx := b.freeHead
		b.freeHead = b.freeNext[idx]
		b.entries[idx] = rec
		b.freeNext[idx] = NilIndex
		return idx
	}

	idx := uint32(len(b.entries))
	b.entries = append(b.entries, rec)
	b.freeNext = append(b.freeNext, NilIndex)
	return idx
}

// Erase returns idx to the free-list. The slot's value is reset to the
// zero value of T so dropped references don't keep memory reachable.
//
// Erasing index 0 or an index already on the free-list is a caller error;
// Bank does not track liveness itself, callers (arena.Allocator) are
// expected to only erase indices they know are live.
func (b *Bank[T]) Erase(idx uint32) {
	var zero T
	b.entries[idx] = zero
	b.freeNext[idx] = b.freeHead
	b.freeHead = idx
}

// Get returns a pointer to the record at idx. The pointer is invalidated by
// any subsequent Push that grows the backing slice; callers that need a
// stable reference across Push calls must re-resolve by index.
func (b *Bank[T]) Get(idx uint32) *T { return &b.entries[idx] }

// Live reports whether idx denotes neither the sentinel nor a recycled
// slot that's currently on the free-list, by walking the free-list. This
// is O(free-list length) and is intended for debug-build invariant checks,
// not hot paths.
func (b *Bank[T]) Live(idx uint32) bool {
	if idx == NilIndex || int(idx) >= len(b.entries) {
		return false
	}
	for n := b.freeHead; n != NilIndex; n = b.freeNext[n] {
		if n == idx {
			return false
		}
	}
	return true
}
