// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wardsight/wardsight/internal/domain/model"
)

// IngestHandler handles device payload submissions.
type IngestHandler struct {
	deps Dependencies
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(deps Dependencies) *IngestHandler {
	return &IngestHandler{deps: deps}
}

// HandleIngest handles POST /ingest requests. Every well-formed
// payload gets a 200 response; the outcome of the pipeline rides in
// the status field so device gateways never retry on routing
// problems they cannot fix.
func (h *IngestHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	const op = "api.ingest"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ts := time.Now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	result := h.deps.ProcessReading(r.Context(), model.Reading{
		DeviceID:   req.DeviceID,
		DeviceType: req.DeviceType,
		Timestamp:  ts,
		Fields:     req.Data,
	})
	writeJSON(w, http.StatusOK, result)
}

func (req ingestRequest) validate() error {
	switch {
	case strings.TrimSpace(req.DeviceID) == "":
		return errors.New("missing device_id")
	case len(req.Data) == 0:
		return errors.New("missing data")
	}
	return nil
}
