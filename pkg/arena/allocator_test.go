package arena_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/corert/pkg/arena"
)

func TestAllocatorBucketReuse(t *testing.T) {
	Convey("Given an allocator with granularity 16 over a single 4096 arena", t, func() {
		a := arena.New(newFakeManager(), arena.NewBestFitStrategy(arena.TieBreakFirst),
			arena.WithGranularity(16), arena.WithDefaultArenaSize(4096))

		Convey("When allocating 100, 200 and 300 bytes in sequence", func() {
			h100, err := a.Allocate(100, 1)
			So(err, ShouldBeNil)
			h200, err := a.Allocate(200, 1)
			So(err, ShouldBeNil)
			h300, err := a.Allocate(300, 1)
			So(err, ShouldBeNil)

			Convey("Then each lands at the next granularity-rounded offset", func() {
				_, off, size, err := a.AddressOf(h100)
				So(err, ShouldBeNil)
				So(off, ShouldEqual, 0)
				So(size, ShouldEqual, 112) // round_up(100, 16)

				_, off, size, err = a.AddressOf(h200)
				So(err, ShouldBeNil)
				So(off, ShouldEqual, 112)
				So(size, ShouldEqual, 208) // round_up(200, 16)

				_, off, size, err = a.AddressOf(h300)
				So(err, ShouldBeNil)
				So(off, ShouldEqual, 320)
				So(size, ShouldEqual, 304) // round_up(300, 16)
			})

			Convey("When the middle allocation is freed", func() {
				So(a.Deallocate(h200), ShouldBeNil)

				Convey("Then a smaller allocation reuses part of its block", func() {
					h50, err := a.Allocate(50, 1)
					So(err, ShouldBeNil)

					arenaID, off, size, err := a.AddressOf(h50)
					So(err, ShouldBeNil)
					So(off, ShouldEqual, 112)
					So(size, ShouldEqual, 64) // round_up(50, 16)

					_, off300, _, _ := a.AddressOf(h300)
					So(off300, ShouldEqual, 320)

					Convey("And the remainder of the freed block stays free for reuse", func() {
						// 208-byte hole minus the 64 bytes just reused leaves 144
						// free bytes starting right after the new allocation.
						h144, err := a.Allocate(144, 1)
						So(err, ShouldBeNil)

						remArena, remOff, remSize, err := a.AddressOf(h144)
						So(err, ShouldBeNil)
						So(remArena, ShouldEqual, arenaID)
						So(remOff, ShouldEqual, 176)
						So(remSize, ShouldEqual, 144)
					})
				})
			})
		})
	})
}

func TestAllocatorCoalescing(t *testing.T) {
	Convey("Given an allocator with granularity 16 over a single 1024 arena", t, func() {
		mgr := newFakeManager()
		a := arena.New(mgr, arena.NewBestFitStrategy(arena.TieBreakFirst),
			arena.WithGranularity(16), arena.WithDefaultArenaSize(1024), arena.WithPinLastArena(false))

		hA, err := a.Allocate(256, 1)
		So(err, ShouldBeNil)
		hB, err := a.Allocate(256, 1)
		So(err, ShouldBeNil)
		hC, err := a.Allocate(256, 1)
		So(err, ShouldBeNil)
		hD, err := a.Allocate(256, 1)
		So(err, ShouldBeNil)

		Convey("When freeing B alone", func() {
			So(a.Deallocate(hB), ShouldBeNil)

			Convey("Then a single 256-byte free block appears at B's offset", func() {
				h, err := a.Allocate(256, 1)
				So(err, ShouldBeNil)
				_, off, size, _ := a.AddressOf(h)
				So(off, ShouldEqual, 256)
				So(size, ShouldEqual, 256)
				So(a.Deallocate(h), ShouldBeNil)
			})

			Convey("When C is also freed", func() {
				So(a.Deallocate(hC), ShouldBeNil)

				Convey("Then B and C coalesce into one 512-byte free block", func() {
					h, err := a.Allocate(512, 1)
					So(err, ShouldBeNil)
					_, off, size, _ := a.AddressOf(h)
					So(off, ShouldEqual, 256)
					So(size, ShouldEqual, 512)
					So(a.Deallocate(h), ShouldBeNil)
				})

				Convey("When A is also freed", func() {
					So(a.Deallocate(hA), ShouldBeNil)

					Convey("Then the free run grows to 768 bytes at offset 0", func() {
						h, err := a.Allocate(768, 1)
						So(err, ShouldBeNil)
						_, off, size, _ := a.AddressOf(h)
						So(off, ShouldEqual, 0)
						So(size, ShouldEqual, 768)
						So(a.Deallocate(h), ShouldBeNil)
					})

					Convey("When D is also freed", func() {
						So(a.Deallocate(hD), ShouldBeNil)

						Convey("Then the arena is fully free and gets dropped", func() {
							So(a.ArenaCount(), ShouldEqual, 0)
							So(mgr.dropped, ShouldNotBeEmpty)
							So(mgr.removed, ShouldNotBeEmpty)
						})
					})
				})
			})
		})
	})
}

func TestAllocatorGrowsOnMiss(t *testing.T) {
	Convey("Given an allocator with a tiny default arena size", t, func() {
		a := arena.New(newFakeManager(), arena.NewLinearStrategy(),
			arena.WithGranularity(16), arena.WithDefaultArenaSize(64))

		Convey("When a request larger than any single arena comes in", func() {
			h, err := a.Allocate(200, 1)

			Convey("Then the allocator grows a big-enough arena for it", func() {
				So(err, ShouldBeNil)
				_, _, size, err := a.AddressOf(h)
				So(err, ShouldBeNil)
				So(size, ShouldEqual, 208)
				So(a.ArenaCount(), ShouldEqual, 1)
			})
		})
	})
}

func TestAllocatorDoubleFreeIsRejected(t *testing.T) {
	Convey("Given an allocator with one live allocation", t, func() {
		a := arena.New(newFakeManager(), arena.NewBestFitStrategy(arena.TieBreakFirst))
		h, err := a.Allocate(32, 1)
		So(err, ShouldBeNil)
		So(a.Deallocate(h), ShouldBeNil)

		Convey("Then freeing it again reports an invariant violation", func() {
			So(a.Deallocate(h), ShouldEqual, arena.ErrInvariantViolated)
		})

		Convey("Then resolving it reports an invariant violation", func() {
			_, _, _, err := a.AddressOf(h)
			So(err, ShouldEqual, arena.ErrInvariantViolated)
		})
	})
}
