// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/wardsight/wardsight/internal/domain/directory"
	"github.com/wardsight/wardsight/internal/domain/mapping"
	"github.com/wardsight/wardsight/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// ProcessReading runs one device payload through the pipeline.
	ProcessReading(ctx context.Context, r model.Reading) model.ProcessResult

	// Mapping administration.
	CreateMapping(ctx context.Context, m mapping.FieldMapping) (mapping.FieldMapping, error)
	ListMappings(ctx context.Context) []mapping.FieldMapping

	// Assignment administration.
	CreateAssignment(ctx context.Context, deviceID, patientID, mappingID string) (directory.Assignment, error)
	Reassign(ctx context.Context, deviceID, patientID, reason string) (directory.Assignment, error)
	ListAssignments(ctx context.Context) []directory.Assignment
	ListUnassigned(ctx context.Context) []directory.HeldReading
}

// ViewerGateway upgrades viewer connections for the snapshot feed.
type ViewerGateway interface {
	HandleConnect(w http.ResponseWriter, r *http.Request)
}

// Server wires HTTP routes for the business API.
type Server struct {
	ingestHandler      *IngestHandler
	mappingsHandler    *MappingsHandler
	assignmentsHandler *AssignmentsHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	viewers            ViewerGateway
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, viewers ViewerGateway) *Server {
	counter, _ := viewers.(ViewerCounter)
	return &Server{
		ingestHandler:      NewIngestHandler(deps),
		mappingsHandler:    NewMappingsHandler(deps),
		assignmentsHandler: NewAssignmentsHandler(deps),
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider, counter),
		viewers:            viewers,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/ingest", MetricsMiddleware(s.ingestHandler.HandleIngest, "ingest"))
	mux.HandleFunc("/mappings", MetricsMiddleware(s.mappingsHandler.HandleMappings, "mappings"))
	mux.HandleFunc("/assignments", MetricsMiddleware(s.assignmentsHandler.HandleAssignments, "assignments"))
	mux.HandleFunc("/assignments/reassign", MetricsMiddleware(s.assignmentsHandler.HandleReassign, "reassign"))
	mux.HandleFunc("/devices/unassigned", MetricsMiddleware(s.assignmentsHandler.HandleUnassigned, "unassigned"))
	if s.viewers != nil {
		mux.HandleFunc("/ws", s.viewers.HandleConnect)
	}
}

// ingestRequest mirrors the device gateway payload for POST /ingest.
type ingestRequest struct {
	DeviceID   string         `json:"device_id"`
	Timestamp  *time.Time     `json:"timestamp"`
	DeviceType string         `json:"device_type"`
	Data       map[string]any `json:"data"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
