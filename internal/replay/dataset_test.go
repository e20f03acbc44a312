package replay_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wardsight/wardsight/internal/replay"

	. "github.com/smartystreets/goconvey/convey"
)

const sampleCSV = `PatientID, Window ,HR Mean,SBP Mean,dbp_mean,spo2_mean,rr_mean,Extra Col
P-010,0,72.5,120,80,97,16,ignored
P-010,1,75.0,118,78,96,17,ignored
022,0,110,85,50,88,24,ignored
022,2,,90,60,,20,ignored
no-digits,0,70,110,70,95,15,ignored
`

func TestRead(t *testing.T) {
	Convey("Given a dataset CSV with messy headers and IDs", t, func() {
		dataset, err := replay.Read(strings.NewReader(sampleCSV))
		So(err, ShouldBeNil)

		Convey("Then patient IDs are digit-normalized and sorted", func() {
			So(dataset.Patients(), ShouldResemble, []string{"10", "22"})
		})

		Convey("Then the max window reflects the data", func() {
			So(dataset.MaxWindow(), ShouldEqual, 2)
		})

		Convey("Then rows are addressable by window and patient", func() {
			row, ok := dataset.Row(0, "10")
			So(ok, ShouldBeTrue)
			So(*row.Values["hr_mean"], ShouldEqual, 72.5)
			So(*row.Values["rr_mean"], ShouldEqual, 16.0)

			_, ok = dataset.Row(1, "22")
			So(ok, ShouldBeFalse)
		})

		Convey("Then empty cells parse as nil values", func() {
			row, ok := dataset.Row(2, "22")
			So(ok, ShouldBeTrue)
			So(row.Values["hr_mean"], ShouldBeNil)
			So(*row.Values["sbp_mean"], ShouldEqual, 90.0)
		})

		Convey("Then untracked columns are dropped", func() {
			row, _ := dataset.Row(0, "10")
			So(row.Values, ShouldNotContainKey, "extra_col")
		})
	})
}

func TestReadErrors(t *testing.T) {
	Convey("Given malformed datasets", t, func() {
		Convey("When the patientid column is missing", func() {
			_, err := replay.Read(strings.NewReader("window,hr_mean\n0,72\n"))
			So(err, ShouldEqual, replay.ErrMissingPatientColumn)
		})

		Convey("When the window column is missing", func() {
			_, err := replay.Read(strings.NewReader("patientid,hr_mean\n10,72\n"))
			So(err, ShouldEqual, replay.ErrMissingWindowColumn)
		})

		Convey("When no rows survive normalization", func() {
			_, err := replay.Read(strings.NewReader("patientid,window\nabc,0\n"))
			So(err, ShouldEqual, replay.ErrEmptyDataset)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a dataset file on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "summary.csv")
		So(os.WriteFile(path, []byte(sampleCSV), 0o600), ShouldBeNil)

		Convey("When loading it", func() {
			dataset, err := replay.Load(path)
			So(err, ShouldBeNil)
			So(dataset.MaxWindow(), ShouldEqual, 2)
		})

		Convey("When the file does not exist", func() {
			_, err := replay.Load(filepath.Join(dir, "missing.csv"))
			So(err, ShouldNotBeNil)
		})
	})
}
