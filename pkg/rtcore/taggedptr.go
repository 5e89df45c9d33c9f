package rtcore

// TaggedIndex is a bit-packed, ABA-safe counted index: a 32-bit generation
// tag in the high bits and a 32-bit index in the low bits, packed into a
// single uint64 so it can be swapped atomically with sync/atomic.Uint64.
//
// This is the Go-shaped equivalent of the original allocator/scheduler's
// bit-packed tagged pointer (see DESIGN.md's note on Handle): where the
// C++ source overlays a generation counter into spare pointer bits or uses
// a 128-bit counted pointer, Go has no spare pointer bits and no portable
// 128-bit CAS, so the tag rides along with an index into a Bank instead of
// with a raw pointer. Any lock-free structure that needs ABA protection
// (e.g. a free-list head shared across goroutines) should CAS a
// TaggedIndex, not a bare index.
type TaggedIndex uint64

// PackTaggedIndex packs a generation and an index into a TaggedIndex.
func PackTaggedIndex(generation, index uint32) TaggedIndex {
	return TaggedIndex(uint64(generation)<<32 | uint64(index))
}

// Generation returns the generation tag.
func (t TaggedIndex) Generation() uint32 { return uint32(t >> 32) }

// Index returns the packed index.
func (t TaggedIndex) Index() uint32 { return uint32(t) }

// Next returns a TaggedIndex with the same generation incremented by one
// (wrapping) and a new index, for use after a successful CAS that consumes
// the current value.
func (t TaggedIndex) Next(index uint32) TaggedIndex {
	return PackTaggedIndex(t.Generation()+1, index)
}
