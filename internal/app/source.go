package service

import (
	"context"
	"sort"
	"time"

	"github.com/wardsight/wardsight/internal/domain/types"
	"github.com/wardsight/wardsight/internal/domain/vitals"
)

// MaxWindow reports the replay extent, or -1 when running live.
func (s *Service) MaxWindow() int {
	if s.dataset == nil {
		return -1
	}
	return s.dataset.MaxWindow()
}

// States produces the display states for one broadcast tick. In
// replay mode it advances through the dataset; live mode serves the
// cache filled by ProcessReading. Either way a patient with no data
// yet gets a placeholder, and a patient with no data this window
// keeps their last known state.
func (s *Service) States(ctx context.Context, window int) []types.PatientDisplayState {
	if s.dataset != nil {
		return s.replayStates(ctx, window)
	}
	return s.liveStates(ctx)
}

func (s *Service) replayStates(ctx context.Context, window int) []types.PatientDisplayState {
	patients := s.targetPatients
	if len(patients) == 0 {
		patients = s.dataset.Patients()
	}

	out := make([]types.PatientDisplayState, 0, len(patients))
	for _, patientID := range patients {
		row, ok := s.dataset.Row(window, patientID)
		if !ok {
			if cached, found := s.cache.Get(patientID); found {
				out = append(out, cached)
				continue
			}
			out = append(out, s.placeholderState(ctx, patientID))
			continue
		}

		prediction := s.scorer.Score(ctx, row.Values)
		alarms, readings := s.engine.Evaluate(patientID, row.Values, prediction)

		w := window
		state := s.buildState(ctx, patientID, readings, alarms, &prediction, &w,
			time.Now().UTC().Format(time.RFC3339))
		s.cache.Put(state)
		s.persistState(ctx, state)
		out = append(out, state)
	}
	return out
}

func (s *Service) liveStates(ctx context.Context) []types.PatientDisplayState {
	patients := make(map[string]struct{})
	for _, id := range s.directory.Monitored() {
		patients[id] = struct{}{}
	}
	for _, state := range s.cache.Snapshot() {
		patients[state.PatientID] = struct{}{}
	}

	ids := make([]string, 0, len(patients))
	for id := range patients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]types.PatientDisplayState, 0, len(ids))
	for _, patientID := range ids {
		if cached, found := s.cache.Get(patientID); found {
			out = append(out, cached)
			continue
		}
		out = append(out, s.placeholderState(ctx, patientID))
	}
	return out
}

// placeholderState renders a patient with no readings yet: every
// tracked vital empty, no alarms, no timestamps.
func (s *Service) placeholderState(ctx context.Context, patientID string) types.PatientDisplayState {
	empty := make(vitals.Canonical)
	for _, feature := range vitals.TrackedFeatures() {
		empty[feature] = nil
	}
	_, readings := s.engine.Evaluate(patientID, empty, types.Prediction{})

	meta := s.lookupMeta(ctx, patientID)
	state := types.NewPatientDisplayState(patientID)
	state.Name = meta.Name
	state.Room = meta.Room
	state.Bed = meta.Bed
	state.Vitals = readings
	return state
}
