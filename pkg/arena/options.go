package arena

// Option configures an Allocator at construction, mirroring the original
// allocator's compile-time opt::granularity / opt::max_bucket /
// opt::search_window / opt::fixed_max_per_slot
// template options (original_source/include/acl/allocators/arena_options.hpp),
// re-architected as ordinary functional options since Go has no
// zero-cost compile-time template configuration.
type Option func(*Options)

// Options holds the resolved configuration for an Allocator.
type Options struct {
	// Granularity is the minimum size/offset quantum; all sizes and
	// offsets are rounded up to a multiple of this value. Must be a
	// power of two.
	Granularity uint64

	// DefaultArenaSize is the size requested from the MemoryManager when
	// no existing arena can satisfy a request and the request itself
	// doesn't need a larger arena.
	DefaultArenaSize uint64

	// MaxBucket, SearchWindow and FixedMaxPerSlot record SlotBucketStrategy
	// settings. The Allocator does not read them and does not pass them to
	// its Strategy; a SlotBucketStrategy takes its settings only from
	// NewSlotBucketStrategy's arguments.
	MaxBucket       uint64
	SearchWindow    int
	FixedMaxPerSlot int

	// TieBreak records a BestFitStrategy tie-break mode. The Allocator does
	// not read it; a BestFitStrategy takes its mode only from
	// NewBestFitStrategy's argument.
	TieBreak TieBreakMode

	// PinLastArena keeps one empty arena alive per allocator instead of
	// asking the MemoryManager to drop it, trading a little idle memory
	// for avoiding a create/destroy round trip on alternating
	// allocate/deallocate-to-empty workloads. Resolves spec.md §9's open
	// question on "drop_arena on the last arena" in favor of pinning.
	PinLastArena bool
}

// TieBreakMode selects among equally-sized free blocks in BestFitStrategy,
// mirroring spec.md §4.3.1's bsearch_min0/1/2 modes.
type TieBreakMode int

const (
	// TieBreakFirst picks the first (lowest block id) match among equal
	// sizes.
	TieBreakFirst TieBreakMode = iota
	// TieBreakLast picks the last (highest block id) match.
	TieBreakLast
	// TieBreakMiddle picks the middle match, to spread fragmentation.
	TieBreakMiddle
)

func defaultOptions() Options {
	return Options{
		Granularity:      16,
		DefaultArenaSize: 1 << 20,
		MaxBucket:        256,
		SearchWindow:     8,
		FixedMaxPerSlot:  64,
		TieBreak:         TieBreakFirst,
		PinLastArena:     true,
	}
}

// WithGranularity sets the allocation granularity. Must be a power of two.
func WithGranularity(g uint64) Option {
	return func(o *Options) { o.Granularity = g }
}

// WithDefaultArenaSize sets the size requested for newly created arenas.
func WithDefaultArenaSize(size uint64) Option {
	return func(o *Options) { o.DefaultArenaSize = size }
}

// WithMaxBucket sets Options.MaxBucket. It does not change the settings of
// the Strategy passed to New.
func WithMaxBucket(n uint64) Option {
	return func(o *Options) { o.MaxBucket = n }
}

// WithSearchWindow sets Options.SearchWindow. It does not change the
// settings of the Strategy passed to New.
func WithSearchWindow(n int) Option {
	return func(o *Options) { o.SearchWindow = n }
}

// WithFixedMaxPerSlot sets Options.FixedMaxPerSlot. It does not change the
// settings of the Strategy passed to New.
func WithFixedMaxPerSlot(n int) Option {
	return func(o *Options) { o.FixedMaxPerSlot = n }
}

// WithTieBreak sets Options.TieBreak. It does not change the tie-break
// mode of the Strategy passed to New.
func WithTieBreak(mode TieBreakMode) Option {
	return func(o *Options) { o.TieBreak = mode }
}

// WithPinLastArena controls whether the last empty arena in an allocator
// is kept alive rather than offered to the manager for removal.
func WithPinLastArena(pin bool) Option {
	return func(o *Options) { o.PinLastArena = pin }
}
