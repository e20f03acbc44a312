package service

import (
	"github.com/wardsight/wardsight/internal/adapters/repository"
	"github.com/wardsight/wardsight/internal/domain/alarm"
	"github.com/wardsight/wardsight/internal/domain/scoring"
	"github.com/wardsight/wardsight/internal/replay"
	"github.com/wardsight/wardsight/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithStore sets the record store backing the pipeline.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithModel overrides the risk model.
func WithModel(model scoring.Model) Option {
	return func(s *Service) {
		s.modelOverride = model
	}
}

// WithThresholds overrides the alarm threshold table.
func WithThresholds(thresholds map[string]alarm.Threshold) Option {
	return func(s *Service) {
		s.thresholds = thresholds
	}
}

// WithTargetPatients restricts replay broadcasts to these patients.
func WithTargetPatients(ids []string) Option {
	return func(s *Service) {
		s.targetPatients = ids
	}
}

// WithPatientNames sets the display names used for patients that
// have no stored record.
func WithPatientNames(names map[string]string) Option {
	return func(s *Service) {
		if names != nil {
			s.patientNames = names
		}
	}
}

// WithDataset switches the service into replay mode over the given
// dataset.
func WithDataset(dataset *replay.Dataset) Option {
	return func(s *Service) {
		s.dataset = dataset
	}
}

// WithPersistQueueSize sets the capacity of the persistence queue.
func WithPersistQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithPersistWorkers sets the number of persistence workers.
func WithPersistWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.persistWorkers = count
		}
	}
}
