package arena_test

import (
	"github.com/flier/corert/pkg/arena"
)

// fakeManager is a minimal MemoryManager/DefragManager double: arenas are
// just bookkeeping, there's no real backing storage to move, so
// MoveMemory/RebindAlloc only record what they were asked to do.
type fakeManager struct {
	nextID  arena.ArenaID
	dropped []arena.ArenaID
	removed []arena.ArenaID

	moves    []move
	rebinds  []rebind
	alwaysOK bool
}

type move struct {
	src, dst         arena.ArenaID
	from, to, length uint64
}

type rebind struct {
	newHandle, oldHandle arena.Handle
	newArena             arena.ArenaID
	size                 uint64
}

func newFakeManager() *fakeManager {
	return &fakeManager{alwaysOK: true}
}

func (m *fakeManager) AddArena(hint string, size uint64) (arena.ArenaID, error) {
	m.nextID++
	return m.nextID, nil
}

func (m *fakeManager) RemoveArena(id arena.ArenaID) {
	m.removed = append(m.removed, id)
}

func (m *fakeManager) DropArena(id arena.ArenaID) bool {
	m.dropped = append(m.dropped, id)
	return m.alwaysOK
}

func (m *fakeManager) BeginDefragment(a *arena.Allocator) {}
func (m *fakeManager) EndDefragment(a *arena.Allocator)   {}

func (m *fakeManager) MoveMemory(src, dst arena.ArenaID, from, to, size uint64) {
	m.moves = append(m.moves, move{src, dst, from, to, size})
}

func (m *fakeManager) RebindAlloc(newHandle arena.Handle, newArena arena.ArenaID, oldHandle arena.Handle, size uint64) {
	m.rebinds = append(m.rebinds, rebind{newHandle, oldHandle, newArena, size})
}

var (
	_ arena.MemoryManager = (*fakeManager)(nil)
	_ arena.DefragManager = (*fakeManager)(nil)
)
