// Package service provides the core monitoring service that
// implements the dependencies required by the HTTP API and the
// broadcast scheduler.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	writequeue "github.com/wardsight/wardsight/internal/adapters/mq/queue"
	workerpool "github.com/wardsight/wardsight/internal/adapters/mq/worker"
	"github.com/wardsight/wardsight/internal/adapters/repository"
	"github.com/wardsight/wardsight/internal/domain/alarm"
	"github.com/wardsight/wardsight/internal/domain/directory"
	"github.com/wardsight/wardsight/internal/domain/mapping"
	"github.com/wardsight/wardsight/internal/domain/model"
	"github.com/wardsight/wardsight/internal/domain/scoring"
	"github.com/wardsight/wardsight/internal/domain/statecache"
	"github.com/wardsight/wardsight/internal/domain/types"
	"github.com/wardsight/wardsight/internal/replay"
	"github.com/wardsight/wardsight/pkg/logger"
	"github.com/wardsight/wardsight/pkg/metrics"
)

// patientMeta is the stored descriptive record for one patient.
type patientMeta struct {
	Name string `json:"name"`
	Room string `json:"room"`
	Bed  string `json:"bed"`
}

// Service wires the ingestion pipeline together: directory lookup,
// field mapping, risk scoring, alarm evaluation, display caching,
// and asynchronous persistence.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	mappings   *mapping.Registry
	directory  *directory.Directory
	scorer     *scoring.Scorer
	engine     *alarm.Engine
	cache      *statecache.Cache
	writeQueue writequeue.Queue
	workerPool *workerpool.Pool

	// Configuration
	modelOverride  scoring.Model
	thresholds     map[string]alarm.Threshold
	targetPatients []string
	patientNames   map[string]string
	dataset        *replay.Dataset
	queueSize      int
	persistWorkers int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		patientNames:   map[string]string{},
		queueSize:      10000,
		persistWorkers: 4,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting monitoring service...")

	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory record store")
	}

	s.writeQueue = writequeue.NewInMemoryQueue(
		writequeue.WithCapacity(s.queueSize),
		writequeue.WithBufferSize(s.queueSize),
	)
	persist := func(key string, value []byte) {
		s.writeQueue.Enqueue(context.Background(), writequeue.Write{Key: key, Value: value})
	}

	s.mappings = mapping.NewRegistry(mapping.WithPersistFunc(persist))
	s.directory = directory.New(directory.WithPersistFunc(persist))
	s.cache = statecache.New()

	mdl := s.modelOverride
	if mdl == nil {
		mdl = scoring.NewLogisticModel()
	}
	s.scorer = scoring.NewScorer(mdl)
	s.engine = alarm.NewEngine(s.thresholds)

	s.workerPool = workerpool.NewPool(s.persistWorkers, s.writeQueue, s.store)
	s.workerPool.Start(ctx)

	if err := s.restore(ctx); err != nil {
		s.logger.Warn(ctx, "record restore failed", logger.Error(err))
	}

	s.started = true
	s.logger.Info(ctx, "monitoring service started",
		logger.Int("persistWorkers", s.persistWorkers),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("replay", s.dataset != nil),
	)

	return nil
}

// Stop gracefully shuts down the service, draining pending writes.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping monitoring service...")

	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "monitoring service stopped")
}

// restore reloads assignments and mappings written by a previous
// run so a restart does not orphan devices.
func (s *Service) restore(ctx context.Context) error {
	mappings, err := s.store.Find(ctx, "mapping/")
	if err != nil {
		return fmt.Errorf("restore mappings: %w", err)
	}
	for key, value := range mappings {
		var m mapping.FieldMapping
		if err := json.Unmarshal(value, &m); err != nil {
			s.logger.Warn(ctx, "skipping corrupt mapping record", logger.String("key", key))
			continue
		}
		if _, err := s.mappings.Add(m); err != nil {
			s.logger.Warn(ctx, "skipping invalid mapping record",
				logger.String("key", key), logger.Error(err))
		}
	}

	assignments, err := s.store.Find(ctx, "assignment/")
	if err != nil {
		return fmt.Errorf("restore assignments: %w", err)
	}
	for key, value := range assignments {
		var a directory.Assignment
		if err := json.Unmarshal(value, &a); err != nil {
			s.logger.Warn(ctx, "skipping corrupt assignment record", logger.String("key", key))
			continue
		}
		if !a.Active {
			continue
		}
		if _, err := s.directory.Assign(a.DeviceID, a.PatientID, a.MappingID); err != nil {
			s.logger.Warn(ctx, "skipping conflicting assignment record",
				logger.String("key", key), logger.Error(err))
		}
	}

	return nil
}

// ProcessReading runs one device payload through the full pipeline.
func (s *Service) ProcessReading(ctx context.Context, r model.Reading) model.ProcessResult {
	assignment, assigned := s.directory.Resolve(r.DeviceID)
	if !assigned {
		s.directory.HoldUnassigned(r)
		metrics.RecordReadingProcessed(model.StatusUnassignedDevice)
		s.logger.Debug(ctx, "holding reading from unassigned device",
			logger.String("device_id", r.DeviceID))
		return model.ProcessResult{Status: model.StatusUnassignedDevice, DeviceID: r.DeviceID}
	}

	fieldMapping, ok := s.resolveMapping(assignment, r.DeviceType)
	if !ok {
		metrics.RecordReadingProcessed(model.StatusNoMapping)
		s.logger.Warn(ctx, "no field mapping for device",
			logger.String("device_id", r.DeviceID),
			logger.String("device_type", r.DeviceType))
		return model.ProcessResult{Status: model.StatusNoMapping, DeviceID: r.DeviceID}
	}

	canonical := fieldMapping.Apply(r.Fields)
	prediction := s.scorer.Score(ctx, canonical)
	alarms, readings := s.engine.Evaluate(assignment.PatientID, canonical, prediction)

	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	state := s.buildState(ctx, assignment.PatientID, readings, alarms, &prediction, nil, ts.UTC().Format(time.RFC3339))
	s.cache.Put(state)
	s.persistState(ctx, state)

	metrics.RecordReadingProcessed(model.StatusSuccess)
	return model.ProcessResult{
		Status:          model.StatusSuccess,
		DeviceID:        r.DeviceID,
		PatientID:       assignment.PatientID,
		ProcessedVitals: readings,
		AIResult:        &prediction,
		State:           &state,
	}
}

// resolveMapping prefers the assignment's pinned mapping, falling
// back to the active mapping for the device type.
func (s *Service) resolveMapping(a directory.Assignment, deviceType string) (mapping.FieldMapping, bool) {
	if a.MappingID != "" {
		if m, ok := s.mappings.Get(a.MappingID); ok {
			return m, true
		}
	}
	return s.mappings.ForDeviceType(deviceType)
}

// buildState assembles one patient's full display state.
func (s *Service) buildState(ctx context.Context, patientID string, readings map[string]types.VitalReading, alarms []types.AlarmEvent, prediction *types.Prediction, window *int, updateTS string) types.PatientDisplayState {
	meta := s.lookupMeta(ctx, patientID)

	state := types.NewPatientDisplayState(patientID)
	state.Name = meta.Name
	state.Room = meta.Room
	state.Bed = meta.Bed
	state.Vitals = readings
	state.Alarms = alarms
	state.AIPrediction = prediction
	state.LastSeenWindow = window
	state.LastUpdateTS = &updateTS
	return state
}

// lookupMeta fetches the patient record, falling back to a
// synthetic placeholder when the patient is unknown.
func (s *Service) lookupMeta(ctx context.Context, patientID string) patientMeta {
	if value, err := s.store.Get(ctx, "patient/"+patientID); err == nil {
		var meta patientMeta
		if err := json.Unmarshal(value, &meta); err == nil && meta.Name != "" {
			return meta
		}
	}

	meta := patientMeta{
		Name: "Patient " + patientID,
		Room: "Unknown",
		Bed:  "Unknown",
	}
	if name, ok := s.patientNames[patientID]; ok {
		meta.Name = name
	}
	if isDigits(patientID) {
		meta.Room = fmt.Sprintf("10%c-A", patientID[len(patientID)-1])
	}
	return meta
}

func (s *Service) persistState(ctx context.Context, state types.PatientDisplayState) {
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Error(ctx, "state marshal failed",
			logger.String("patient_id", state.PatientID), logger.Error(err))
		return
	}
	s.writeQueue.Enqueue(ctx, writequeue.Write{Key: "state/" + state.PatientID, Value: data})
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
