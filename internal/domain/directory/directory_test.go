package directory_test

import (
	"sync"
	"testing"
	"time"

	"github.com/wardsight/wardsight/internal/domain/directory"
	"github.com/wardsight/wardsight/internal/domain/model"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAssign(t *testing.T) {
	Convey("Given an empty directory", t, func() {
		dir := directory.New()

		Convey("When assigning a device to a patient", func() {
			a, err := dir.Assign("dev-001", "1125", "map-1")
			So(err, ShouldBeNil)

			Convey("Then the assignment is active and resolvable", func() {
				So(a.ID, ShouldNotBeEmpty)
				So(a.Active, ShouldBeTrue)

				resolved, ok := dir.Resolve("dev-001")
				So(ok, ShouldBeTrue)
				So(resolved.PatientID, ShouldEqual, "1125")
				So(resolved.MappingID, ShouldEqual, "map-1")
			})

			Convey("Then the patient is monitored", func() {
				So(dir.Monitored(), ShouldResemble, []string{"1125"})
			})

			Convey("And assigning the same device again is rejected", func() {
				_, err := dir.Assign("dev-001", "2233", "map-1")
				So(err, ShouldEqual, directory.ErrDuplicateAssignment)

				resolved, _ := dir.Resolve("dev-001")
				So(resolved.PatientID, ShouldEqual, "1125")
			})
		})

		Convey("When assigning with missing IDs", func() {
			_, err := dir.Assign("", "1125", "")
			So(err, ShouldEqual, directory.ErrInvalidAssignment)

			_, err = dir.Assign("dev-001", "", "")
			So(err, ShouldEqual, directory.ErrInvalidAssignment)
		})

		Convey("When assigning a previously held device", func() {
			dir.HoldUnassigned(model.Reading{DeviceID: "dev-002", DeviceType: "monitor"})
			So(len(dir.Unassigned()), ShouldEqual, 1)

			_, err := dir.Assign("dev-002", "2233", "")
			So(err, ShouldBeNil)

			Convey("Then the device leaves the holding area", func() {
				So(dir.Unassigned(), ShouldBeEmpty)
			})
		})
	})
}

func TestReassign(t *testing.T) {
	Convey("Given a directory with one active assignment", t, func() {
		dir := directory.New()
		_, err := dir.Assign("dev-001", "1125", "map-1")
		So(err, ShouldBeNil)

		Convey("When reassigning the device to another patient", func() {
			replacement, err := dir.Reassign("dev-001", "2233", "patient transferred")
			So(err, ShouldBeNil)

			Convey("Then the device resolves to the new patient", func() {
				resolved, ok := dir.Resolve("dev-001")
				So(ok, ShouldBeTrue)
				So(resolved.PatientID, ShouldEqual, "2233")
				So(resolved.ID, ShouldEqual, replacement.ID)
				So(resolved.MappingID, ShouldEqual, "map-1")
			})

			Convey("Then the old assignment survives deactivated with a reason", func() {
				all := dir.Assignments()
				So(len(all), ShouldEqual, 2)

				var old directory.Assignment
				for _, a := range all {
					if !a.Active {
						old = a
					}
				}
				So(old.PatientID, ShouldEqual, "1125")
				So(old.DeactivatedAt, ShouldNotBeNil)
				So(old.Reason, ShouldEqual, "patient transferred")
			})
		})

		Convey("When reassigning an unknown device", func() {
			_, err := dir.Reassign("dev-404", "2233", "")
			So(err, ShouldEqual, directory.ErrNotAssigned)
		})

		Convey("When many reassignments race", func() {
			var wg sync.WaitGroup
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = dir.Reassign("dev-001", "2233", "race")
				}()
			}
			wg.Wait()

			Convey("Then exactly one assignment stays active", func() {
				active := 0
				for _, a := range dir.Assignments() {
					if a.Active {
						active++
					}
				}
				So(active, ShouldEqual, 1)

				resolved, ok := dir.Resolve("dev-001")
				So(ok, ShouldBeTrue)
				So(resolved.Active, ShouldBeTrue)
			})
		})
	})
}

func TestHoldUnassigned(t *testing.T) {
	Convey("Given an empty directory", t, func() {
		current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		dir := directory.New(directory.WithClock(func() time.Time {
			current = current.Add(time.Second)
			return current
		}))

		Convey("When the same device reports twice", func() {
			dir.HoldUnassigned(model.Reading{
				DeviceID: "dev-009", DeviceType: "monitor",
				Fields: map[string]any{"HR": 72},
			})
			first := dir.Unassigned()[0]

			dir.HoldUnassigned(model.Reading{
				DeviceID: "dev-009", DeviceType: "monitor",
				Fields: map[string]any{"HR": 75},
			})

			Convey("Then the latest payload wins but discovery time sticks", func() {
				held := dir.Unassigned()
				So(len(held), ShouldEqual, 1)
				So(held[0].Fields["HR"], ShouldEqual, 75)
				So(held[0].DiscoveredAt, ShouldEqual, first.DiscoveredAt)
			})
		})

		Convey("When several devices report", func() {
			dir.HoldUnassigned(model.Reading{DeviceID: "dev-b"})
			dir.HoldUnassigned(model.Reading{DeviceID: "dev-a"})

			Convey("Then held devices come back in discovery order", func() {
				held := dir.Unassigned()
				So(len(held), ShouldEqual, 2)
				So(held[0].DeviceID, ShouldEqual, "dev-b")
				So(held[1].DeviceID, ShouldEqual, "dev-a")
			})
		})
	})
}

func TestPersistHook(t *testing.T) {
	Convey("Given a directory with a persist hook", t, func() {
		var mu sync.Mutex
		keys := []string{}
		dir := directory.New(directory.WithPersistFunc(func(key string, _ []byte) {
			mu.Lock()
			keys = append(keys, key)
			mu.Unlock()
		}))

		Convey("When assigning and reassigning", func() {
			a, err := dir.Assign("dev-001", "1125", "")
			So(err, ShouldBeNil)
			replacement, err := dir.Reassign("dev-001", "2233", "")
			So(err, ShouldBeNil)

			Convey("Then every assignment state change is written through", func() {
				So(keys, ShouldContain, "assignment/"+a.ID)
				So(keys, ShouldContain, "assignment/"+replacement.ID)
				So(len(keys), ShouldEqual, 3)
			})
		})
	})
}
