package mapping_test

import (
	"testing"

	"github.com/wardsight/wardsight/internal/domain/mapping"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFieldMappingApply(t *testing.T) {
	Convey("Given a monitor field mapping", t, func() {
		m := mapping.FieldMapping{
			DeviceType: "bedside-monitor",
			Fields: map[string]string{
				"HeartRate": "hr_mean",
				"SpO2":      "spo2_mean",
				"RespRate":  "rr_mean",
				"Battery":   "battery_pct",
			},
		}

		Convey("When applying a full payload", func() {
			out := m.Apply(map[string]any{
				"HeartRate": "72.5 bpm",
				"SpO2":      "97%",
				"RespRate":  16,
				"Battery":   88,
				"Firmware":  "v2",
			})

			Convey("Then mapped values are parsed and unmapped dropped", func() {
				So(*out["hr_mean"], ShouldEqual, 72.5)
				So(*out["spo2_mean"], ShouldEqual, 97.0)
				So(*out["rr_mean"], ShouldEqual, 16.0)
				So(out, ShouldNotContainKey, "battery_pct")
				So(out, ShouldNotContainKey, "Firmware")
			})

			Convey("Then absent model features are nil-filled", func() {
				So(out, ShouldContainKey, "sbp_mean")
				So(out["sbp_mean"], ShouldBeNil)
				So(out, ShouldContainKey, "dbp_mean")
				So(out["dbp_mean"], ShouldBeNil)
			})
		})

		Convey("When a mapped value is garbage", func() {
			out := m.Apply(map[string]any{"HeartRate": "sensor fault"})

			Convey("Then the feature is present but nil", func() {
				So(out, ShouldContainKey, "hr_mean")
				So(out["hr_mean"], ShouldBeNil)
			})
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given a mapping registry", t, func() {
		persisted := make(map[string][]byte)
		registry := mapping.NewRegistry(
			mapping.WithPersistFunc(func(key string, value []byte) {
				persisted[key] = value
			}),
		)

		Convey("When adding a valid mapping", func() {
			added, err := registry.Add(mapping.FieldMapping{
				Name:       "Philips bedside",
				DeviceType: "philips-mx450",
				Fields:     map[string]string{"HR": "hr_mean"},
			})
			So(err, ShouldBeNil)

			Convey("Then it gets an ID and becomes active", func() {
				So(added.ID, ShouldNotBeEmpty)
				So(added.Active, ShouldBeTrue)
				So(added.CreatedAt.IsZero(), ShouldBeFalse)
			})

			Convey("Then it is found by device type", func() {
				found, ok := registry.ForDeviceType("philips-mx450")
				So(ok, ShouldBeTrue)
				So(found.ID, ShouldEqual, added.ID)
			})

			Convey("Then it is written through to the persist hook", func() {
				So(persisted, ShouldContainKey, "mapping/"+added.ID)
			})
		})

		Convey("When adding a newer mapping for the same device type", func() {
			first, err := registry.Add(mapping.FieldMapping{
				DeviceType: "philips-mx450",
				Fields:     map[string]string{"HR": "hr_mean"},
			})
			So(err, ShouldBeNil)
			second, err := registry.Add(mapping.FieldMapping{
				DeviceType: "philips-mx450",
				Fields:     map[string]string{"HeartRate": "hr_mean"},
			})
			So(err, ShouldBeNil)

			Convey("Then the newest mapping wins lookups", func() {
				found, ok := registry.ForDeviceType("philips-mx450")
				So(ok, ShouldBeTrue)
				So(found.ID, ShouldEqual, second.ID)
				So(found.ID, ShouldNotEqual, first.ID)
				So(registry.Len(), ShouldEqual, 2)
			})
		})

		Convey("When adding an invalid mapping", func() {
			_, err := registry.Add(mapping.FieldMapping{Fields: map[string]string{"HR": "hr_mean"}})
			So(err, ShouldEqual, mapping.ErrDeviceTypeRequired)

			_, err = registry.Add(mapping.FieldMapping{DeviceType: "x"})
			So(err, ShouldEqual, mapping.ErrNoFields)
		})
	})
}
