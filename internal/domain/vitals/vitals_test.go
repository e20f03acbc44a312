package vitals_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/wardsight/wardsight/internal/domain/vitals"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given raw device field values", t, func() {
		Convey("When parsing plain numbers", func() {
			So(*vitals.Parse(72.5), ShouldEqual, 72.5)
			So(*vitals.Parse(98), ShouldEqual, 98.0)
			So(*vitals.Parse(int64(120)), ShouldEqual, 120.0)
			So(*vitals.Parse(json.Number("16.4")), ShouldEqual, 16.4)
		})

		Convey("When parsing decorated strings", func() {
			So(*vitals.Parse("98%"), ShouldEqual, 98.0)
			So(*vitals.Parse(" 120 mmHg "), ShouldEqual, 120.0)
			So(*vitals.Parse("HR: 72.5 bpm"), ShouldEqual, 72.5)
			So(*vitals.Parse("-3.5"), ShouldEqual, -3.5)
		})

		Convey("When the value carries no digits", func() {
			So(vitals.Parse(""), ShouldBeNil)
			So(vitals.Parse("n/a"), ShouldBeNil)
			So(vitals.Parse("---"), ShouldBeNil)
		})

		Convey("When the value is not numeric at all", func() {
			So(vitals.Parse(nil), ShouldBeNil)
			So(vitals.Parse(true), ShouldBeNil)
			So(vitals.Parse([]string{"72"}), ShouldBeNil)
		})

		Convey("When the value is non-finite", func() {
			So(vitals.Parse(math.NaN()), ShouldBeNil)
			So(vitals.Parse(math.Inf(1)), ShouldBeNil)
		})
	})
}

func TestFeatureVocabulary(t *testing.T) {
	Convey("Given the canonical feature vocabulary", t, func() {
		Convey("Then model features keep their training order", func() {
			So(vitals.ModelFeatures(), ShouldResemble, []string{
				"hr_mean", "sbp_mean", "dbp_mean", "spo2_mean",
			})
		})

		Convey("Then tracked features include respiratory rate", func() {
			So(vitals.IsTracked("rr_mean"), ShouldBeTrue)
			So(vitals.IsTracked("temp_mean"), ShouldBeFalse)
		})

		Convey("Then returned slices are copies", func() {
			features := vitals.ModelFeatures()
			features[0] = "mutated"
			So(vitals.ModelFeatures()[0], ShouldEqual, "hr_mean")
		})
	})
}
