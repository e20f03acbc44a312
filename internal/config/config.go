// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Run modes.
const (
	ModeLive   = "live"
	ModeReplay = "replay"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Mode selects the snapshot source: live or replay.
	Mode string `koanf:"mode"`

	// TickIntervalMS sets the broadcast cadence in milliseconds.
	TickIntervalMS int `koanf:"tick_interval_ms"`

	// DatasetPath points at the replay CSV. Required in replay mode.
	DatasetPath string `koanf:"dataset_path"`

	// TargetPatients restricts replay broadcasts to these IDs.
	TargetPatients []string `koanf:"target_patients"`

	// PatientNames maps patient IDs to display names.
	PatientNames map[string]string `koanf:"patient_names"`

	// RedisAddr selects the Redis record store. Empty keeps records
	// in process memory.
	RedisAddr string `koanf:"redis_addr"`

	// RedisKeyPrefix namespaces this deployment's Redis keys.
	RedisKeyPrefix string `koanf:"redis_key_prefix"`

	// PersistQueueSize bounds the in-memory persistence queue.
	PersistQueueSize int `koanf:"persist_queue_size"`

	// PersistWorkers sets the number of persistence workers.
	PersistWorkers int `koanf:"persist_workers"`

	// ViewerSendBuffer sets the per-viewer outbound buffer.
	ViewerSendBuffer int `koanf:"viewer_send_buffer"`

	// ViewerWriteTimeoutMS bounds one snapshot write to a viewer.
	ViewerWriteTimeoutMS int `koanf:"viewer_write_timeout_ms"`

	// ModelWeights overrides the risk model coefficients per feature.
	ModelWeights map[string]float64 `koanf:"model_weights"`

	// ModelIntercept overrides the risk model intercept.
	ModelIntercept *float64 `koanf:"model_intercept"`

	// Thresholds overrides clinical ranges per canonical feature.
	// Features not listed keep their defaults.
	Thresholds map[string]ThresholdConfig `koanf:"thresholds"`
}

// ThresholdConfig is one configured clinical range.
type ThresholdConfig struct {
	Min  float64 `koanf:"min"`
	Max  float64 `koanf:"max"`
	Name string  `koanf:"name"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		Mode:                 ModeLive,
		TickIntervalMS:       2000,
		PersistQueueSize:     10_000,
		PersistWorkers:       4,
		ViewerSendBuffer:     8,
		ViewerWriteTimeoutMS: 5000,
		PatientNames:         map[string]string{},
	}
}
