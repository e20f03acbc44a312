package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wardsight/wardsight/internal/adapters/http/api"
	"github.com/wardsight/wardsight/internal/domain/directory"
	"github.com/wardsight/wardsight/internal/domain/mapping"
	"github.com/wardsight/wardsight/internal/domain/model"

	. "github.com/smartystreets/goconvey/convey"
)

// stubDeps implements api.Dependencies with canned behavior.
type stubDeps struct {
	result      model.ProcessResult
	mappings    []mapping.FieldMapping
	mappingErr  error
	assignment  directory.Assignment
	assignErr   error
	reassignErr error
	held        []directory.HeldReading

	lastReading model.Reading
}

func (s *stubDeps) ProcessReading(_ context.Context, r model.Reading) model.ProcessResult {
	s.lastReading = r
	return s.result
}

func (s *stubDeps) CreateMapping(_ context.Context, m mapping.FieldMapping) (mapping.FieldMapping, error) {
	if s.mappingErr != nil {
		return mapping.FieldMapping{}, s.mappingErr
	}
	m.ID = "map-1"
	return m, nil
}

func (s *stubDeps) ListMappings(context.Context) []mapping.FieldMapping {
	return s.mappings
}

func (s *stubDeps) CreateAssignment(_ context.Context, deviceID, patientID, mappingID string) (directory.Assignment, error) {
	if s.assignErr != nil {
		return directory.Assignment{}, s.assignErr
	}
	return s.assignment, nil
}

func (s *stubDeps) Reassign(_ context.Context, deviceID, patientID, reason string) (directory.Assignment, error) {
	if s.reassignErr != nil {
		return directory.Assignment{}, s.reassignErr
	}
	return s.assignment, nil
}

func (s *stubDeps) ListAssignments(context.Context) []directory.Assignment {
	return []directory.Assignment{s.assignment}
}

func (s *stubDeps) ListUnassigned(context.Context) []directory.HeldReading {
	return s.held
}

type stubStats struct{}

func (stubStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestServer(deps *stubDeps) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, stubStats{}, nil).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHandleIngest(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &stubDeps{result: model.ProcessResult{
			Status:    model.StatusSuccess,
			DeviceID:  "dev-001",
			PatientID: "7",
		}}
		server := newTestServer(deps)
		Reset(server.Close)

		Convey("When a device posts a valid payload", func() {
			resp := postJSON(t, server.URL+"/ingest", map[string]any{
				"device_id":   "dev-001",
				"device_type": "bedside-monitor",
				"data":        map[string]any{"HeartRate": 72},
			})

			Convey("Then the pipeline result comes back with 200", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var result model.ProcessResult
				So(json.NewDecoder(resp.Body).Decode(&result), ShouldBeNil)
				So(result.Status, ShouldEqual, model.StatusSuccess)
				So(result.PatientID, ShouldEqual, "7")
				So(deps.lastReading.DeviceID, ShouldEqual, "dev-001")
				So(deps.lastReading.Timestamp.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When the device is unassigned", func() {
			deps.result = model.ProcessResult{Status: model.StatusUnassignedDevice, DeviceID: "dev-X"}
			resp := postJSON(t, server.URL+"/ingest", map[string]any{
				"device_id": "dev-X",
				"data":      map[string]any{"HR": 70},
			})

			Convey("Then the routing outcome still returns 200", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var result model.ProcessResult
				So(json.NewDecoder(resp.Body).Decode(&result), ShouldBeNil)
				So(result.Status, ShouldEqual, model.StatusUnassignedDevice)
			})
		})

		Convey("When the payload is malformed", func() {
			resp, err := http.Post(server.URL+"/ingest", "application/json",
				bytes.NewReader([]byte("{not json")))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When required fields are missing", func() {
			resp := postJSON(t, server.URL+"/ingest", map[string]any{
				"device_id": "dev-001",
			})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the method is wrong", func() {
			resp, err := http.Get(server.URL + "/ingest")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHandleMappings(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &stubDeps{mappings: []mapping.FieldMapping{{ID: "map-1", DeviceType: "bedside-monitor"}}}
		server := newTestServer(deps)
		Reset(server.Close)

		Convey("When creating a mapping", func() {
			resp := postJSON(t, server.URL+"/mappings", mapping.FieldMapping{
				DeviceType: "bedside-monitor",
				Fields:     map[string]string{"HR": "hr_mean"},
			})

			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			var created mapping.FieldMapping
			So(json.NewDecoder(resp.Body).Decode(&created), ShouldBeNil)
			So(created.ID, ShouldEqual, "map-1")
		})

		Convey("When the mapping is invalid", func() {
			deps.mappingErr = mapping.ErrDeviceTypeRequired
			resp := postJSON(t, server.URL+"/mappings", mapping.FieldMapping{})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When listing mappings", func() {
			resp, err := http.Get(server.URL + "/mappings")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var listed []mapping.FieldMapping
			So(json.NewDecoder(resp.Body).Decode(&listed), ShouldBeNil)
			So(len(listed), ShouldEqual, 1)
		})
	})
}

func TestHandleAssignments(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &stubDeps{assignment: directory.Assignment{
			ID: "asg-1", DeviceID: "dev-001", PatientID: "7", Active: true,
		}}
		server := newTestServer(deps)
		Reset(server.Close)

		Convey("When creating an assignment", func() {
			resp := postJSON(t, server.URL+"/assignments", map[string]string{
				"device_id":  "dev-001",
				"patient_id": "7",
			})

			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			var created directory.Assignment
			So(json.NewDecoder(resp.Body).Decode(&created), ShouldBeNil)
			So(created.ID, ShouldEqual, "asg-1")
		})

		Convey("When the device is already assigned", func() {
			deps.assignErr = directory.ErrDuplicateAssignment
			resp := postJSON(t, server.URL+"/assignments", map[string]string{
				"device_id":  "dev-001",
				"patient_id": "8",
			})

			Convey("Then the conflict is reported as 409", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusConflict)

				var body map[string]string
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body["code"], ShouldEqual, "duplicate_assignment")
			})
		})

		Convey("When required fields are missing", func() {
			resp := postJSON(t, server.URL+"/assignments", map[string]string{"device_id": "dev-001"})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When reassigning an assigned device", func() {
			resp := postJSON(t, server.URL+"/assignments/reassign", map[string]string{
				"device_id":      "dev-001",
				"new_patient_id": "9",
				"reason":         "transfer",
			})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("When reassigning an unknown device", func() {
			deps.reassignErr = directory.ErrNotAssigned
			resp := postJSON(t, server.URL+"/assignments/reassign", map[string]string{
				"device_id":      "dev-404",
				"new_patient_id": "9",
			})
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("When listing assignments", func() {
			resp, err := http.Get(server.URL + "/assignments")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("When listing unassigned devices", func() {
			deps.held = []directory.HeldReading{{DeviceID: "dev-X"}}
			resp, err := http.Get(server.URL + "/devices/unassigned")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var held []directory.HeldReading
			So(json.NewDecoder(resp.Body).Decode(&held), ShouldBeNil)
			So(len(held), ShouldEqual, 1)
			So(held[0].DeviceID, ShouldEqual, "dev-X")
		})
	})
}

func TestHandleStatsAndHealth(t *testing.T) {
	Convey("Given an API server", t, func() {
		server := newTestServer(&stubDeps{})
		Reset(server.Close)

		Convey("When fetching stats", func() {
			resp, err := http.Get(server.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var stats map[string]any
			So(json.NewDecoder(resp.Body).Decode(&stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("When scraping health", func() {
			resp, err := http.Get(server.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}
