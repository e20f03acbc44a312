// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/wardsight/wardsight/internal/domain/directory"
)

// AssignmentsHandler handles device-to-patient assignment
// administration.
type AssignmentsHandler struct {
	deps Dependencies
}

// NewAssignmentsHandler creates a new assignments handler.
func NewAssignmentsHandler(deps Dependencies) *AssignmentsHandler {
	return &AssignmentsHandler{deps: deps}
}

// assignmentRequest mirrors the payload for assignment operations.
type assignmentRequest struct {
	DeviceID  string `json:"device_id"`
	PatientID string `json:"patient_id"`
	MappingID string `json:"mapping_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func (req assignmentRequest) validate() error {
	switch {
	case strings.TrimSpace(req.DeviceID) == "":
		return errors.New("missing device_id")
	case strings.TrimSpace(req.PatientID) == "":
		return errors.New("missing patient_id")
	}
	return nil
}

// reassignRequest mirrors the payload for moving a device to a new
// patient.
type reassignRequest struct {
	DeviceID     string `json:"device_id"`
	NewPatientID string `json:"new_patient_id"`
	Reason       string `json:"reason,omitempty"`
}

func (req reassignRequest) validate() error {
	switch {
	case strings.TrimSpace(req.DeviceID) == "":
		return errors.New("missing device_id")
	case strings.TrimSpace(req.NewPatientID) == "":
		return errors.New("missing new_patient_id")
	}
	return nil
}

// HandleAssignments handles GET and POST /assignments requests.
func (h *AssignmentsHandler) HandleAssignments(w http.ResponseWriter, r *http.Request) {
	const op = "api.assignments"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.ListAssignments(r.Context()))
	case http.MethodPost:
		req, err := decodeAssignment(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		created, err := h.deps.CreateAssignment(r.Context(), req.DeviceID, req.PatientID, req.MappingID)
		if err != nil {
			if errors.Is(err, directory.ErrDuplicateAssignment) {
				writeError(w, http.StatusConflict, "duplicate_assignment", Wrap(op, err))
				return
			}
			writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		http.NotFound(w, r)
	}
}

// HandleReassign handles POST /assignments/reassign requests.
func (h *AssignmentsHandler) HandleReassign(w http.ResponseWriter, r *http.Request) {
	const op = "api.reassign"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req reassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	replacement, err := h.deps.Reassign(r.Context(), req.DeviceID, req.NewPatientID, req.Reason)
	if err != nil {
		if errors.Is(err, directory.ErrNotAssigned) {
			writeError(w, http.StatusNotFound, "not_assigned", Wrap(op, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, replacement)
}

// HandleUnassigned handles GET /devices/unassigned requests.
func (h *AssignmentsHandler) HandleUnassigned(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ListUnassigned(r.Context()))
}

func decodeAssignment(r *http.Request) (assignmentRequest, error) {
	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return assignmentRequest{}, err
	}
	if err := req.validate(); err != nil {
		return assignmentRequest{}, err
	}
	return req, nil
}
