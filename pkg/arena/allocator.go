package arena

import (
	"github.com/flier/corert/internal/debug"
	"github.com/flier/corert/pkg/rtcore"
)

// Allocator is a single-writer, multi-arena coalescing suballocator. It
// has no internal synchronization (spec.md §5): concurrent callers must
// serialize their own access or shard one Allocator per goroutine.
type Allocator struct {
	opts     Options
	manager  MemoryManager
	strategy Strategy

	blocks *rtcore.Bank[block]
	allocs *rtcore.Bank[allocRecord]
	arenas map[ArenaID]*arenaState

	// generations tracks, per allocs bank index, how many times that slot
	// has been freed and reused, so Handle can embed it as a
	// rtcore.TaggedIndex and reject stale handles pointing at a slot that
	// has since been recycled for a different allocation.
	generations []uint32

	stats Stats
}

// New returns an Allocator backed by manager and parameterized by
// strategy, applying any Options. strategy must be freshly constructed
// for this Allocator; sharing one Strategy instance across Allocators
// will corrupt both.
func New(manager MemoryManager, strategy Strategy, opts ...Option) *Allocator {
	o := defaultOptions()
	for _, apply := range opts {
		apply(&o)
	}
	debug.Assert(isPow2(o.Granularity), "granularity %d must be a power of two", o.Granularity)

	return &Allocator{
		opts:     o,
		manager:  manager,
		strategy: strategy,
		blocks:   rtcore.NewBank[block](),
		allocs:   rtcore.NewBank[allocRecord](),
		arenas:   make(map[ArenaID]*arenaState),
	}
}

// currentGeneration returns idx's live generation, 0 for any index that
// has never been freed (including one never yet allocated).
func (a *Allocator) currentGeneration(idx uint32) uint32 {
	if int(idx) >= len(a.generations) {
		return 0
	}
	return a.generations[idx]
}

// makeHandle packs idx's current generation into a Handle.
func (a *Allocator) makeHandle(idx uint32) Handle {
	return Handle(rtcore.PackTaggedIndex(a.currentGeneration(idx), idx))
}

// invalidateGeneration advances idx's generation after its slot is freed,
// so any Handle captured before the free fails its generation check if
// the slot gets reused.
func (a *Allocator) invalidateGeneration(idx uint32) {
	for int(idx) >= len(a.generations) {
		a.generations = append(a.generations, 0)
	}
	a.generations[idx]++
}

func isPow2(n uint64) bool { return n != 0 && n&(n-1) == 0 }

func roundUp(n, g uint64) uint64 { return (n + g - 1) / g * g }

func alignUp(n, a uint64) uint64 { return (n + a - 1) &^ (a - 1) }

// Allocate reserves size bytes aligned to alignment (a power of two) and
// returns an opaque Handle for it. It asks the MemoryManager for a new
// arena when no existing free block fits, per spec.md §4.4.
func (a *Allocator) Allocate(size, alignment uint64) (Handle, error) {
	debug.Assert(isPow2(alignment), "alignment %d must be a power of two", alignment)

	size = roundUp(size, a.opts.Granularity)
	if size == 0 {
		size = a.opts.Granularity
	}

	pad := uint64(0)
	if alignment > a.opts.Granularity {
		pad = alignment - a.opts.Granularity
	}

	for attempt := 0; attempt < 2; attempt++ {
		if h, ok := a.tryAllocate(size, alignment, pad); ok {
			a.stats.Allocations++
			return h, nil
		}

		growSize := a.opts.DefaultArenaSize
		needed := roundUp(size+pad, a.opts.Granularity)
		if needed > growSize {
			growSize = needed
		}

		if _, err := a.addArena(growSize); err != nil {
			return 0, err
		}
	}

	return 0, ErrBackingExhausted
}

func (a *Allocator) tryAllocate(size, alignment, pad uint64) (Handle, bool) {
	found, ok := a.strategy.TryAllocate(size + pad)
	if !ok {
		return 0, false
	}

	b := a.blocks.Get(found)
	arenaSt := a.arenas[b.arena]

	origOffset, origSize := b.offset, b.size
	alignedOffset := alignUp(origOffset, alignment)
	leftPad := alignedOffset - origOffset
	remainder := (origOffset + origSize) - (alignedOffset + size)

	debug.Assert(leftPad+size+remainder == origSize, "split accounting mismatch")

	if leftPad > 0 {
		leftIdx := a.blocks.Push(block{arena: b.arena, offset: origOffset, size: leftPad, free: true})
		arenaSt.order.InsertAfter(arenaSt.order.Prev(found), leftIdx)
		left := a.blocks.Get(leftIdx)
		left.token = a.strategy.AddFreeBlock(leftIdx, leftPad)
	}

	b.offset = alignedOffset
	b.size = size
	b.free = false

	if remainder > 0 {
		rightIdx := a.blocks.Push(block{arena: b.arena, offset: alignedOffset + size, size: remainder, free: true})
		arenaSt.order.InsertAfter(found, rightIdx)
		right := a.blocks.Get(rightIdx)
		right.token = a.strategy.AddFreeBlock(rightIdx, remainder)
	}

	arenaSt.free -= size

	idx := a.allocs.Push(allocRecord{block: found, arena: b.arena, offset: alignedOffset, size: size})
	h := a.makeHandle(idx)
	b.alloc = h

	return h, true
}

func (a *Allocator) addArena(size uint64) (ArenaID, error) {
	id, err := a.manager.AddArena("", size)
	if err != nil {
		return 0, &BackingExhaustedError{Requested: size, Cause: err}
	}

	st := &arenaState{id: id, size: size, free: size}
	st.order = rtcore.NewList[block, *block](a.blocks)
	a.arenas[id] = st

	idx := a.blocks.Push(block{arena: id, offset: 0, size: size, free: true})
	st.order.PushBack(idx)
	a.blocks.Get(idx).token = a.strategy.AddFreeBlock(idx, size)

	a.stats.ArenasCreated++

	return id, nil
}

// Deallocate releases h's memory, coalescing with free neighbours and
// possibly dropping its arena, per spec.md §4.5. Deallocating an already-
// freed or unknown handle returns ErrInvariantViolated.
func (a *Allocator) Deallocate(h Handle) error {
	idx := h.index()
	if !a.allocs.Live(idx) || h.generation() != a.currentGeneration(idx) {
		debug.Assert(false, "deallocate of invalid, already-freed, or stale handle %d", h)
		return ErrInvariantViolated
	}

	rec := *a.allocs.Get(idx)
	b := a.blocks.Get(rec.block)
	debug.Assert(!b.free, "block %d backing handle %d is already free", rec.block, h)

	arenaSt := a.arenas[rec.arena]

	b.free = true
	b.alloc = 0
	b.token = a.strategy.AddFreeBlock(rec.block, b.size)
	arenaSt.free += b.size

	cur := rec.block
	if prev := arenaSt.order.Prev(cur); prev != rtcore.NilIndex && a.blocks.Get(prev).free {
		cur = a.mergeBlocks(arenaSt, prev, cur)
		a.stats.Coalesces++
	}
	if next := arenaSt.order.Next(cur); next != rtcore.NilIndex && a.blocks.Get(next).free {
		cur = a.mergeBlocks(arenaSt, cur, next)
		a.stats.Coalesces++
	}

	a.maybeDropArena(arenaSt, cur)

	a.allocs.Erase(idx)
	a.invalidateGeneration(idx)
	a.stats.Deallocations++

	return nil
}

// mergeBlocks merges the free blocks at left and right (right must
// immediately follow left in arenaSt.order) into left, returning left's
// index.
func (a *Allocator) mergeBlocks(arenaSt *arenaState, left, right blockID) blockID {
	lb, rb := a.blocks.Get(left), a.blocks.Get(right)

	a.strategy.RemoveFreeBlock(rb.token)
	lb.size += rb.size
	lb.token = a.strategy.ReplaceFreeBlock(lb.token, left, lb.size)

	arenaSt.order.Erase(right)
	a.blocks.Erase(right)

	return left
}

// maybeDropArena removes arenaSt entirely when it has become one single
// free block spanning the whole arena and the manager (or the
// PinLastArena option) agrees it may be reclaimed.
func (a *Allocator) maybeDropArena(arenaSt *arenaState, free blockID) {
	if arenaSt.free != arenaSt.size {
		return
	}
	if a.opts.PinLastArena && len(a.arenas) == 1 {
		return
	}
	if !a.manager.DropArena(arenaSt.id) {
		return
	}

	fb := a.blocks.Get(free)
	a.strategy.RemoveFreeBlock(fb.token)
	arenaSt.order.Erase(free)
	a.blocks.Erase(free)

	a.manager.RemoveArena(arenaSt.id)
	delete(a.arenas, arenaSt.id)

	a.stats.ArenasRemoved++
}

// AddressOf resolves h to its current (arena, offset, size). The result
// is only stable until the next Defragment call, which may rebind h's
// underlying storage.
func (a *Allocator) AddressOf(h Handle) (arenaID ArenaID, offset, size uint64, err error) {
	idx := h.index()
	if !a.allocs.Live(idx) || h.generation() != a.currentGeneration(idx) {
		return 0, 0, 0, ErrInvariantViolated
	}
	rec := a.allocs.Get(idx)
	return rec.arena, rec.offset, rec.size, nil
}

// Stats returns a snapshot of the allocator's bookkeeping counters.
func (a *Allocator) Stats() Stats { return a.stats }

// ArenaCount returns the number of arenas currently registered.
func (a *Allocator) ArenaCount() int { return len(a.arenas) }
