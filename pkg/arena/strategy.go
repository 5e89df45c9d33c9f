package arena

// Token is a placement strategy's opaque per-free-block bookkeeping
// handle. Every strategy in this package uses the free block's own id as
// its Token; SlotBucketStrategy additionally sets tokenFallbackBit on
// tokens that belong to its Fallback.
// Callers never construct or inspect a Token; they only ever pass back one
// they previously received from AddFreeBlock or ReplaceFreeBlock.
type Token uint64

// Strategy is a pluggable free-block placement policy, parameterizing
// Allocator the way spec.md §4.3 describes: the allocator drives the
// block list and coalescing, the strategy only decides which free block
// satisfies a request.
type Strategy interface {
	// AddFreeBlock registers block (of the given size) as available and
	// returns a Token the allocator must keep to refer back to it.
	AddFreeBlock(block blockID, size uint64) Token

	// RemoveFreeBlock drops a previously registered free block.
	RemoveFreeBlock(tok Token)

	// TryAllocate finds a free block able to hold at least size bytes
	// (the caller has already padded size for worst-case alignment),
	// removes it from the strategy's bookkeeping, and returns its block
	// id. ok is false if no free block is large enough.
	TryAllocate(size uint64) (block blockID, ok bool)

	// ReplaceFreeBlock atomically swaps a registered free block for
	// another, used when coalescing merges two free blocks into one:
	// the old token (and, for a 3-way merge, a second RemoveFreeBlock)
	// is dropped and a new token for the merged block is returned.
	ReplaceFreeBlock(old Token, newBlock blockID, newSize uint64) Token
}
