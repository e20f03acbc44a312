// Package model defines the core reading types flowing through the
// ingestion pipeline.
package model

import (
	"time"

	"github.com/wardsight/wardsight/internal/domain/types"
)

// Processing outcome statuses returned to device gateways.
const (
	StatusSuccess          = "success"
	StatusUnassignedDevice = "unassigned_device"
	StatusNoMapping        = "no_mapping"
)

// Reading is one raw payload received from a device gateway.
type Reading struct {
	DeviceID   string         `json:"device_id"`
	DeviceType string         `json:"device_type"`
	Timestamp  time.Time      `json:"timestamp"`
	Fields     map[string]any `json:"data"`
}

// ProcessResult describes what happened to a reading.
type ProcessResult struct {
	Status          string                        `json:"status"`
	DeviceID        string                        `json:"device_id"`
	PatientID       string                        `json:"patient_id,omitempty"`
	ProcessedVitals map[string]types.VitalReading `json:"processed_vitals,omitempty"`
	AIResult        *types.Prediction             `json:"ai_result,omitempty"`
	State           *types.PatientDisplayState    `json:"-"`
}
