package arena_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flier/corert/pkg/arena"
)

func TestBestFitStrategyPicksSmallestFit(t *testing.T) {
	s := arena.NewBestFitStrategy(arena.TieBreakFirst)

	s.AddFreeBlock(1, 256)
	s.AddFreeBlock(2, 64)
	s.AddFreeBlock(3, 128)

	block, ok := s.TryAllocate(100)
	require.True(t, ok)
	require.EqualValues(t, 3, block, "128 is the smallest block that still fits 100")

	_, ok = s.TryAllocate(1000)
	require.False(t, ok)
}

func TestBestFitStrategyTieBreak(t *testing.T) {
	first := arena.NewBestFitStrategy(arena.TieBreakFirst)
	last := arena.NewBestFitStrategy(arena.TieBreakLast)

	for _, s := range []*arena.BestFitStrategy{first, last} {
		s.AddFreeBlock(5, 64)
		s.AddFreeBlock(9, 64)
		s.AddFreeBlock(7, 64)
	}

	block, ok := first.TryAllocate(64)
	require.True(t, ok)
	require.EqualValues(t, 5, block)

	block, ok = last.TryAllocate(64)
	require.True(t, ok)
	require.EqualValues(t, 9, block)
}

func TestSlotBucketStrategyFallsBackWhenOversized(t *testing.T) {
	fallback := arena.NewBestFitStrategy(arena.TieBreakFirst)
	s := arena.NewSlotBucketStrategy(16, 8, 2, 4, fallback)

	s.AddFreeBlock(1, 4096) // far outside the 8*16=128-byte bucket range

	block, ok := s.TryAllocate(4096)
	require.True(t, ok)
	require.EqualValues(t, 1, block)
}

func TestSlotBucketStrategySearchWindow(t *testing.T) {
	fallback := arena.NewLinearStrategy()
	s := arena.NewSlotBucketStrategy(16, 16, 2, 4, fallback)

	// A 64-byte block sits in bucket 4, outside the 2-bucket window a
	// request starting at bucket 1 will scan (buckets 1 and 2 only).
	s.AddFreeBlock(1, 64)

	_, ok := s.TryAllocate(16)
	require.False(t, ok, "block outside the search window is unreachable and fallback is empty")

	// A 32-byte block sits in bucket 2, inside that same window.
	s.AddFreeBlock(2, 32)

	block, ok := s.TryAllocate(16)
	require.True(t, ok)
	require.EqualValues(t, 2, block)
}

func TestLinearStrategyFirstFit(t *testing.T) {
	s := arena.NewLinearStrategy()
	s.AddFreeBlock(1, 32)
	s.AddFreeBlock(2, 128)
	s.AddFreeBlock(3, 64)

	block, ok := s.TryAllocate(50)
	require.True(t, ok)
	require.EqualValues(t, 2, block, "first block in insertion order that fits, not the smallest")
}
