// Package arena implements a configurable, single-writer, coalescing
// suballocator over one or more externally-backed arenas.
//
// A client asks for N bytes at some alignment; the allocator consults its
// placement Strategy for a free block, asks the backing MemoryManager to
// grow (create a new arena) when nothing fits, and hands back an opaque
// Handle. Freeing coalesces the freed block with any free neighbours in
// the same arena. Defragment (only available when the manager also
// implements DefragManager) relocates live allocations out of
// lightly-filled arenas to compact memory.
//
// The allocator does not interpret allocation contents and owns no
// backing memory itself: MemoryManager is the client's hook for actually
// reserving storage (a byte slice, a file-backed mapping, a GPU heap,
// whatever the caller needs an arena id to stand for).
package arena

import "github.com/flier/corert/pkg/rtcore"

// ArenaID is the stable 16-bit id a MemoryManager assigns to a backing
// region. It remains valid until RemoveArena is called for it.
type ArenaID uint16

// Handle is an opaque id resolving to exactly one allocated block. It
// packs a generation counter with the underlying allocation-record bank
// index, via rtcore.TaggedIndex, so a Handle captured before a
// Deallocate/Defragment can't silently resolve to a newer allocation that
// later reused the same bank slot. The zero Handle is never returned by
// Allocate; it is reserved to mean "no allocation" the way rtcore.NilIndex
// reserves index 0 in a Bank.
type Handle uint64

func (h Handle) index() uint32      { return rtcore.TaggedIndex(h).Index() }
func (h Handle) generation() uint32 { return rtcore.TaggedIndex(h).Generation() }

// IsNil reports whether h is the reserved invalid handle, matching the
// original allocator's default-constructed allocation_id.
func (h Handle) IsNil() bool { return h.index() == rtcore.NilIndex }

// block is one half-open [Offset, Offset+Size) sub-range of an arena. It
// is stored in a Bank shared across all arenas and threaded into each
// arena's ordered list by offset.
type block struct {
	link rtcore.ListNode

	arena  ArenaID
	offset uint64
	size   uint64
	free   bool

	// alloc is valid only when !free: the allocation record referencing
	// this block.
	alloc Handle
	// token is valid only when free: the placement strategy's opaque
	// bookkeeping handle for this block.
	token Token
}

func (b *block) Link() *rtcore.ListNode { return &b.link }

type blockID = uint32

// allocRecord is what a Handle resolves to.
type allocRecord struct {
	block  blockID
	arena  ArenaID
	offset uint64
	size   uint64
}

// arenaState is the bookkeeping kept per live arena.
type arenaState struct {
	id    ArenaID
	size  uint64
	free  uint64
	order *rtcore.List[block, *block]
}

func (a *arenaState) fillRatio() float64 {
	if a.size == 0 {
		return 1
	}
	return float64(a.size-a.free) / float64(a.size)
}
