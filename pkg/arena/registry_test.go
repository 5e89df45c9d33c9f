package arena_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/corert/pkg/arena"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	Convey("Given a Registry and two named Allocators", t, func() {
		reg := arena.NewRegistry(4)
		images := arena.New(newFakeManager(), arena.NewBestFitStrategy(arena.TieBreakFirst))
		audio := arena.New(newFakeManager(), arena.NewBestFitStrategy(arena.TieBreakFirst))

		Convey("When both are registered under distinct names", func() {
			reg.Register("images", images)
			reg.Register("audio", audio)

			Convey("Then each name resolves to the Allocator it was registered with", func() {
				found, ok := reg.Lookup("images")
				So(ok, ShouldBeTrue)
				So(found, ShouldEqual, images)

				found, ok = reg.Lookup("audio")
				So(ok, ShouldBeTrue)
				So(found, ShouldEqual, audio)
			})

			Convey("And an unregistered name is not found", func() {
				_, ok := reg.Lookup("video")
				So(ok, ShouldBeFalse)
			})

			Convey("And re-registering a name replaces its mapping", func() {
				reg.Register("images", audio)
				found, ok := reg.Lookup("images")
				So(ok, ShouldBeTrue)
				So(found, ShouldEqual, audio)
			})

			Convey("And unregistering a name makes it unresolvable again", func() {
				reg.Unregister("images")
				_, ok := reg.Lookup("images")
				So(ok, ShouldBeFalse)
			})
		})
	})
}
