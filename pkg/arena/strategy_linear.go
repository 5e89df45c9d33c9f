package arena

// LinearStrategy keeps free blocks in an unsorted slice and scans it
// linearly for the first fit, per spec.md §4.3.3. It exists as a
// reference implementation and as a plain fallback for strategies that
// need one but don't care about best-fit packing.
type LinearStrategy struct {
	entries []bestFitEntry
}

// NewLinearStrategy returns an empty LinearStrategy.
func NewLinearStrategy() *LinearStrategy {
	return &LinearStrategy{}
}

var _ Strategy = (*LinearStrategy)(nil)

// AddFreeBlock implements Strategy.
func (s *LinearStrategy) AddFreeBlock(block blockID, size uint64) Token {
	s.entries = append(s.entries, bestFitEntry{size: size, block: block})
	return Token(block)
}

// RemoveFreeBlock implements Strategy.
func (s *LinearStrategy) RemoveFreeBlock(tok Token) {
	block := blockID(tok)
	for i, e := range s.entries {
		if e.block == block {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// TryAllocate implements Strategy.
func (s *LinearStrategy) TryAllocate(size uint64) (blockID, bool) {
	for i, e := range s.entries {
		if e.size >= size {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return e.block, true
		}
	}
	return 0, false
}

// ReplaceFreeBlock implements Strategy.
func (s *LinearStrategy) ReplaceFreeBlock(old Token, newBlock blockID, newSize uint64) Token {
	s.RemoveFreeBlock(old)
	return s.AddFreeBlock(newBlock, newSize)
}
