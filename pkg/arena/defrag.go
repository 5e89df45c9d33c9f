package arena

import (
	"sort"

	"github.com/flier/corert/internal/debug"
)

// DefragSupported reports whether a can run Defragment: it needs a
// MemoryManager that also implements DefragManager.
func (a *Allocator) DefragSupported() bool {
	_, ok := a.manager.(DefragManager)
	return ok
}

// Defragment relocates allocations out of the most lightly filled arenas
// into better-filled ones, draining and reclaiming any arena it manages
// to empty entirely, per spec.md §4.6. Arenas are visited in ascending
// fill-ratio order so the cheapest wins (fewest bytes to move, most
// likely to fully drain) happen first.
//
// It requires the Allocator's MemoryManager to also implement
// DefragManager; ErrDefragmentUnsupported is returned otherwise.
func (a *Allocator) Defragment() (DefragStats, error) {
	dm, ok := a.manager.(DefragManager)
	if !ok {
		return DefragStats{}, ErrDefragmentUnsupported
	}

	var stats DefragStats

	dm.BeginDefragment(a)
	defer dm.EndDefragment(a)

	ids := a.sortedByFillRatio()
	for _, srcID := range ids {
		src, live := a.arenas[srcID]
		if !live {
			continue // reclaimed by a previous iteration of this pass
		}
		a.drainArena(dm, src, &stats)
	}

	return stats, nil
}

func (a *Allocator) sortedByFillRatio() []ArenaID {
	ids := make([]ArenaID, 0, len(a.arenas))
	for id := range a.arenas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return a.arenas[ids[i]].fillRatio() < a.arenas[ids[j]].fillRatio()
	})
	return ids
}

// drainArena walks src's live allocations in offset order, relocating
// each into whatever other arena the Strategy picks, until src is empty
// or no remaining allocation can be relocated. An emptied src is handed
// back to the manager.
func (a *Allocator) drainArena(dm DefragManager, src *arenaState, stats *DefragStats) {
	for {
		idx := a.firstLiveBlock(src)
		if idx == 0 {
			break
		}
		if !a.relocateBlock(dm, src, idx) {
			break
		}
		stats.Relocations++
	}

	if src.free == src.size && !(a.opts.PinLastArena && len(a.arenas) == 1) {
		if dm.DropArena(src.id) {
			a.reclaimEmptyArena(src)
			stats.ArenasReclaimed++
		}
	}
}

func (a *Allocator) firstLiveBlock(src *arenaState) blockID {
	for idx := src.order.Head(); idx != 0; idx = src.order.Next(idx) {
		if !a.blocks.Get(idx).free {
			return idx
		}
	}
	return 0
}

// relocateBlock moves the allocation backed by block idx (in src) to a
// freshly chosen destination, updating the allocation bank and notifying
// the manager via MoveMemory/RebindAlloc. It returns false if no
// destination could be found, leaving idx in place.
func (a *Allocator) relocateBlock(dm DefragManager, src *arenaState, idx blockID) bool {
	b := a.blocks.Get(idx)
	oldHandle := b.alloc
	size := b.size

	rec := *a.allocs.Get(oldHandle.index())
	debug.Assert(rec.block == idx, "alloc record for handle %d points at block %d, expected %d", oldHandle, rec.block, idx)

	newHandle, ok := a.tryAllocate(size, a.opts.Granularity, 0)
	if !ok {
		return false
	}
	newRec := *a.allocs.Get(newHandle.index())
	if newRec.arena == src.id {
		// Landed back in the arena we're draining; undo and give up so we
		// don't spin forever relocating within the same arena.
		a.Deallocate(newHandle)
		return false
	}

	dm.MoveMemory(src.id, newRec.arena, rec.offset, newRec.offset, size)
	dm.RebindAlloc(newHandle, newRec.arena, oldHandle, size)

	a.freeBlockDirect(src, idx, oldHandle)

	return true
}

// freeBlockDirect is Deallocate's body without the handle-liveness guard
// and without the arena-drop check, used when the caller (relocateBlock)
// already knows the handle is valid and has already issued its
// replacement. Dropping a drained arena is left to drainArena.
func (a *Allocator) freeBlockDirect(arenaSt *arenaState, blk blockID, h Handle) {
	b := a.blocks.Get(blk)
	b.free = true
	b.alloc = 0
	b.token = a.strategy.AddFreeBlock(blk, b.size)
	arenaSt.free += b.size

	cur := blk
	if prev := arenaSt.order.Prev(cur); prev != 0 && a.blocks.Get(prev).free {
		cur = a.mergeBlocks(arenaSt, prev, cur)
		a.stats.Coalesces++
	}
	if next := arenaSt.order.Next(cur); next != 0 && a.blocks.Get(next).free {
		cur = a.mergeBlocks(arenaSt, cur, next)
		a.stats.Coalesces++
	}

	idx := h.index()
	a.allocs.Erase(idx)
	a.invalidateGeneration(idx)
	a.stats.Deallocations++
}

// reclaimEmptyArena removes the single whole-arena free block left behind
// once an arena has been fully drained, and releases it to the manager.
func (a *Allocator) reclaimEmptyArena(src *arenaState) {
	idx := src.order.Head()
	debug.Assert(idx != 0, "reclaimEmptyArena called on a non-empty arena")

	fb := a.blocks.Get(idx)
	a.strategy.RemoveFreeBlock(fb.token)
	src.order.Erase(idx)
	a.blocks.Erase(idx)

	a.manager.RemoveArena(src.id)
	delete(a.arenas, src.id)
	a.stats.ArenasRemoved++
}
