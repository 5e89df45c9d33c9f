package arena

import (
	"github.com/flier/corert/pkg/opt"
	"github.com/flier/corert/pkg/xerrors"
)

// Location is where a live allocation currently sits.
type Location struct {
	Arena  ArenaID
	Offset uint64
	Size   uint64
}

// Find is the Option-returning counterpart to AddressOf, for callers that
// would rather branch on opt.Option than on a sentinel error.
func (a *Allocator) Find(h Handle) opt.Option[Location] {
	arenaID, offset, size, err := a.AddressOf(h)
	if err != nil {
		return opt.None[Location]()
	}
	return opt.Some(Location{Arena: arenaID, Offset: offset, Size: size})
}

// BackingExhaustedError carries the size that couldn't be satisfied when a
// MemoryManager refuses to grow, wrapping ErrBackingExhausted so callers
// that only check errors.Is(err, ErrBackingExhausted) still work.
type BackingExhaustedError struct {
	Requested uint64
	Cause     error
}

func (e *BackingExhaustedError) Error() string {
	return ErrBackingExhausted.Error()
}

func (e *BackingExhaustedError) Unwrap() error { return ErrBackingExhausted }

// RequestedSize extracts the size that triggered a BackingExhaustedError,
// if err carries one.
func RequestedSize(err error) opt.Option[uint64] {
	if be, ok := xerrors.AsA[*BackingExhaustedError](err); ok {
		return opt.Some(be.Requested)
	}
	return opt.None[uint64]()
}
