package arena

import "sort"

// BestFitStrategy keeps free blocks in a slice ordered by (size, block id),
// the Go-shaped analogue of the original allocator's balanced ordered set
// keyed the same way (spec.md §4.3.1). TryAllocate binary-searches for the
// first entry whose size is >= the request, which is the smallest
// satisfying free block.
//
// A genuine balanced tree would give O(log n) insert/remove; an ordered
// slice gives O(log n) search but O(n) insert/remove due to shifting.
// See DESIGN.md for why this tradeoff was taken (no balanced-tree
// container is grounded anywhere in the example pack, and the spec's
// testable scenarios are all small enough that the asymptotics don't
// matter).
//
// A free block's Token is its own block id: BestFitStrategy never
// allocates a separate token space.
type BestFitStrategy struct {
	tieBreak TieBreakMode

	entries []bestFitEntry
	pos     map[blockID]int
}

type bestFitEntry struct {
	size  uint64
	block blockID
}

func less(a, b bestFitEntry) bool {
	if a.size != b.size {
		return a.size < b.size
	}
	return a.block < b.block
}

// NewBestFitStrategy returns an empty BestFitStrategy using the given
// equal-size tie-break mode.
func NewBestFitStrategy(tieBreak TieBreakMode) *BestFitStrategy {
	return &BestFitStrategy{tieBreak: tieBreak, pos: make(map[blockID]int)}
}

var _ Strategy = (*BestFitStrategy)(nil)

func (s *BestFitStrategy) insert(e bestFitEntry) {
	i := sort.Search(len(s.entries), func(i int) bool { return !less(s.entries[i], e) })
	s.entries = append(s.entries, bestFitEntry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e
	s.reindexFrom(i)
}

func (s *BestFitStrategy) removeAt(i int) bestFitEntry {
	e := s.entries[i]
	copy(s.entries[i:], s.entries[i+1:])
	s.entries = s.entries[:len(s.entries)-1]
	delete(s.pos, e.block)
	s.reindexFrom(i)
	return e
}

func (s *BestFitStrategy) reindexFrom(i int) {
	for ; i < len(s.entries); i++ {
		s.pos[s.entries[i].block] = i
	}
}

// AddFreeBlock implements Strategy.
func (s *BestFitStrategy) AddFreeBlock(block blockID, size uint64) Token {
	s.insert(bestFitEntry{size: size, block: block})
	return Token(block)
}

// RemoveFreeBlock implements Strategy.
func (s *BestFitStrategy) RemoveFreeBlock(tok Token) {
	if i, ok := s.pos[blockID(tok)]; ok {
		s.removeAt(i)
	}
}

// TryAllocate implements Strategy.
func (s *BestFitStrategy) TryAllocate(size uint64) (blockID, bool) {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].size >= size })
	if i >= len(s.entries) {
		return 0, false
	}

	// entries[i] is the smallest block >= size. Gather the run of
	// equally-sized candidates to honor the tie-break mode.
	j := i
	for j < len(s.entries) && s.entries[j].size == s.entries[i].size {
		j++
	}

	pick := i
	switch s.tieBreak {
	case TieBreakLast:
		pick = j - 1
	case TieBreakMiddle:
		pick = i + (j-i)/2
	}

	e := s.removeAt(pick)
	return e.block, true
}

// ReplaceFreeBlock implements Strategy.
func (s *BestFitStrategy) ReplaceFreeBlock(old Token, newBlock blockID, newSize uint64) Token {
	s.RemoveFreeBlock(old)
	return s.AddFreeBlock(newBlock, newSize)
}
