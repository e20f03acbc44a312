// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wardsight/wardsight/internal/domain/mapping"
)

// MappingsHandler handles field mapping administration.
type MappingsHandler struct {
	deps Dependencies
}

// NewMappingsHandler creates a new mappings handler.
func NewMappingsHandler(deps Dependencies) *MappingsHandler {
	return &MappingsHandler{deps: deps}
}

// HandleMappings handles GET and POST /mappings requests.
func (h *MappingsHandler) HandleMappings(w http.ResponseWriter, r *http.Request) {
	const op = "api.mappings"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.ListMappings(r.Context()))
	case http.MethodPost:
		var req mapping.FieldMapping
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		created, err := h.deps.CreateMapping(r.Context(), req)
		if err != nil {
			if errors.Is(err, mapping.ErrDeviceTypeRequired) || errors.Is(err, mapping.ErrNoFields) {
				writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
				return
			}
			writeError(w, http.StatusInternalServerError, "internal", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		http.NotFound(w, r)
	}
}
