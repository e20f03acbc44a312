package service

import (
	"context"

	"github.com/wardsight/wardsight/internal/domain/directory"
	"github.com/wardsight/wardsight/internal/domain/mapping"
	"github.com/wardsight/wardsight/pkg/metrics"
)

// CreateMapping registers a new field mapping.
func (s *Service) CreateMapping(_ context.Context, m mapping.FieldMapping) (mapping.FieldMapping, error) {
	return s.mappings.Add(m)
}

// ListMappings returns every registered field mapping.
func (s *Service) ListMappings(_ context.Context) []mapping.FieldMapping {
	return s.mappings.List()
}

// CreateAssignment binds a device to a patient.
func (s *Service) CreateAssignment(_ context.Context, deviceID, patientID, mappingID string) (directory.Assignment, error) {
	return s.directory.Assign(deviceID, patientID, mappingID)
}

// Reassign moves a device to another patient in one step.
func (s *Service) Reassign(_ context.Context, deviceID, patientID, reason string) (directory.Assignment, error) {
	return s.directory.Reassign(deviceID, patientID, reason)
}

// ListAssignments returns active assignments followed by history.
func (s *Service) ListAssignments(_ context.Context) []directory.Assignment {
	return s.directory.Assignments()
}

// ListUnassigned returns devices reporting without an assignment.
func (s *Service) ListUnassigned(_ context.Context) []directory.HeldReading {
	return s.directory.Unassigned()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"replay":         s.dataset != nil,
		"persistWorkers": s.persistWorkers,
		"queueSize":      s.queueSize,
	}

	if s.started {
		ctx := context.Background()
		monitored := len(s.directory.Monitored())

		stats["queueLength"] = s.writeQueue.Len(ctx)
		stats["cachedPatients"] = s.cache.Len()
		stats["monitoredPatients"] = monitored
		stats["heldDevices"] = len(s.directory.Unassigned())
		stats["mappings"] = s.mappings.Len()

		metrics.UpdateMonitoredPatients(monitored)
	}

	return stats
}
