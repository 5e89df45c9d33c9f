package arena

// Stats is a snapshot of an Allocator's lifetime bookkeeping counters.
type Stats struct {
	Allocations   uint64
	Deallocations uint64
	ArenasCreated uint64
	ArenasRemoved uint64
	Coalesces     uint64
}

// DefragStats is a snapshot of a single Defragment pass.
type DefragStats struct {
	ArenasReclaimed uint64
	Relocations     uint64
}
