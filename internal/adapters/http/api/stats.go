// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// StatsProvider supplies the service's runtime statistics snapshot.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// ViewerCounter reports the number of connected viewers.
type ViewerCounter interface {
	ClientCount() int
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
	viewers       ViewerCounter
}

// NewStatsHandler creates a new stats handler. The viewer counter is
// optional; without it the snapshot simply omits the viewer count.
func NewStatsHandler(statsProvider StatsProvider, viewers ViewerCounter) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, viewers: viewers}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats := h.statsProvider.GetStats()
	if h.viewers != nil {
		stats["connectedViewers"] = h.viewers.ClientCount()
	}
	writeJSON(w, http.StatusOK, stats)
}
