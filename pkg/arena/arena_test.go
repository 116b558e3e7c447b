package arena_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	. "github.com/flier/hamt/pkg/arena"
)

type record struct {
	id   int
	data [8]byte
}

func TestArena_BasicAllocation(t *testing.T) {
	Convey("Given an Arena with a small block size", t, func() {
		a := New[record](4)

		Convey("When allocating more records than fit in one block", func() {
			ptrs := make([]*record, 10)
			for i := range ptrs {
				ptrs[i] = a.Allocate()
				ptrs[i].id = i
			}

			Convey("Then every pointer is unique and its value sticks", func() {
				seen := make(map[*record]bool)
				for i, p := range ptrs {
					So(seen[p], ShouldBeFalse)
					seen[p] = true
					So(p.id, ShouldEqual, i)
				}
			})

			Convey("And at least three blocks were allocated", func() {
				So(a.Blocks(), ShouldBeGreaterThanOrEqualTo, 3)
			})
		})

		Convey("When allocating a fresh record, it is zero-valued", func() {
			p := a.Allocate()
			So(p.id, ShouldEqual, 0)
			So(p.data, ShouldResemble, [8]byte{})
		})
	})
}

func TestArena_Recycle(t *testing.T) {
	Convey("Given an Arena with one allocated record", t, func() {
		a := New[record](4)
		p := a.Allocate()
		p.id = 42

		Convey("When it is recycled and a new one is allocated", func() {
			a.Recycle(p)
			So(a.FreeListLen(), ShouldEqual, 1)

			q := a.Allocate()

			Convey("Then the free-list is drained first, LIFO", func() {
				So(q, ShouldEqual, p)
				So(a.FreeListLen(), ShouldEqual, 0)
			})

			Convey("And the recycled slot comes back zeroed", func() {
				So(q.id, ShouldEqual, 0)
			})
		})
	})
}

func TestArena_PointerStability(t *testing.T) {
	Convey("Given an Arena under sustained allocation", t, func() {
		a := New[record](8)

		var ptrs []*record
		for i := 0; i < 100; i++ {
			p := a.Allocate()
			p.id = i
			ptrs = append(ptrs, p)
		}

		Convey("Then every earlier pointer still reads its original value", func() {
			for i, p := range ptrs {
				So(p.id, ShouldEqual, i)
			}
		})
	})
}

func TestArena_DestroyReleasesBlocks(t *testing.T) {
	Convey("Given an Arena with several blocks", t, func() {
		a := New[record](4)
		for i := 0; i < 20; i++ {
			a.Allocate()
		}
		So(a.Blocks(), ShouldBeGreaterThan, 0)

		Convey("When Destroy is called", func() {
			a.Destroy()

			Convey("Then its block and free-list bookkeeping is reset", func() {
				So(a.Blocks(), ShouldEqual, 0)
				So(a.FreeListLen(), ShouldEqual, 0)
			})
		})
	})
}

func TestArena_DefaultBlockSize(t *testing.T) {
	Convey("Given an Arena constructed with a non-positive block size", t, func() {
		a := New[record](0)

		Convey("When allocating one record", func() {
			a.Allocate()

			Convey("Then it falls back to DefaultBlockSize", func() {
				So(a.Blocks(), ShouldEqual, 1)
			})
		})
	})
}
