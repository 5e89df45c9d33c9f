package arena

// tokenFallbackBit tags a Token as belonging to a SlotBucketStrategy's
// Fallback rather than to one of its own buckets, since both strategies
// independently use the free block's own id as the low bits of their
// Token values.
const tokenFallbackBit Token = 1 << 63

// SlotBucketStrategy buckets free blocks by size/Granularity into at most
// MaxBucket slot-lists of up to FixedMaxPerSlot entries each (spec.md
// §4.3.2). Allocation scans forward from the requested bucket across a
// bounded SearchWindow; if every bucket in the window is empty, or the
// request doesn't fit in any bucket at all, it escalates to Fallback.
type SlotBucketStrategy struct {
	granularity     uint64
	maxBucket       uint64
	searchWindow    int
	fixedMaxPerSlot int

	buckets  [][]blockID
	Fallback Strategy
}

// NewSlotBucketStrategy returns a SlotBucketStrategy. fallback must be
// non-nil; it absorbs anything too large for a bucket, any bucket that's
// full, and any search that exhausts its window.
func NewSlotBucketStrategy(granularity, maxBucket uint64, searchWindow, fixedMaxPerSlot int, fallback Strategy) *SlotBucketStrategy {
	if fallback == nil {
		panic("arena: SlotBucketStrategy requires a non-nil Fallback")
	}
	return &SlotBucketStrategy{
		granularity:     granularity,
		maxBucket:       maxBucket,
		searchWindow:    searchWindow,
		fixedMaxPerSlot: fixedMaxPerSlot,
		buckets:         make([][]blockID, maxBucket),
		Fallback:        fallback,
	}
}

var _ Strategy = (*SlotBucketStrategy)(nil)

func (s *SlotBucketStrategy) bucketIndex(size uint64) (uint64, bool) {
	idx := size / s.granularity
	if idx >= s.maxBucket {
		return 0, false
	}
	return idx, true
}

// AddFreeBlock implements Strategy.
func (s *SlotBucketStrategy) AddFreeBlock(block blockID, size uint64) Token {
	if idx, ok := s.bucketIndex(size); ok && len(s.buckets[idx]) < s.fixedMaxPerSlot {
		s.buckets[idx] = append(s.buckets[idx], block)
		return Token(block)
	}
	return s.Fallback.AddFreeBlock(block, size) | tokenFallbackBit
}

// RemoveFreeBlock implements Strategy.
func (s *SlotBucketStrategy) RemoveFreeBlock(tok Token) {
	if tok&tokenFallbackBit != 0 {
		s.Fallback.RemoveFreeBlock(tok &^ tokenFallbackBit)
		return
	}

	block := blockID(tok)
	for i, bucket := range s.buckets {
		for j, b := range bucket {
			if b == block {
				s.buckets[i] = append(bucket[:j], bucket[j+1:]...)
				return
			}
		}
	}
}

// TryAllocate implements Strategy.
func (s *SlotBucketStrategy) TryAllocate(size uint64) (blockID, bool) {
	start, ok := s.bucketIndex(size)
	if ok {
		end := start + uint64(s.searchWindow)
		if end > s.maxBucket {
			end = s.maxBucket
		}
		for idx := start; idx < end; idx++ {
			bucket := s.buckets[idx]
			if len(bucket) == 0 {
				continue
			}
			block := bucket[len(bucket)-1]
			s.buckets[idx] = bucket[:len(bucket)-1]
			return block, true
		}
	}
	return s.Fallback.TryAllocate(size)
}

// ReplaceFreeBlock implements Strategy.
func (s *SlotBucketStrategy) ReplaceFreeBlock(old Token, newBlock blockID, newSize uint64) Token {
	s.RemoveFreeBlock(old)
	return s.AddFreeBlock(newBlock, newSize)
}
