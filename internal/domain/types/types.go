// Package types contains common types used across the application
package types

// Vital reading statuses as rendered to viewers.
const (
	StatusStable   = "stable"
	StatusCritical = "critical"
)

// LevelCritical is the only alarm severity currently emitted.
const LevelCritical = "CRITICAL"

// VitalReading is a single displayed vital with its status.
// Value is a pre-formatted string so the display layer never
// re-rounds; a nil Value renders as an empty reading.
type VitalReading struct {
	Value  *string `json:"value"`
	Status string  `json:"status"`
}

// AlarmEvent describes one threshold or risk-score violation.
type AlarmEvent struct {
	PatientID string `json:"patient_id"`
	Vital     string `json:"vital"`
	Level     string `json:"level"`
	Value     string `json:"value"`
}

// Prediction carries the model output for one patient.
type Prediction struct {
	RiskScorePercent float64 `json:"risk_score_percent"`
	IsAtRisk         bool    `json:"is_at_risk"`
	Available        bool    `json:"available"`
}

// PatientDisplayState is the full per-patient view broadcast to
// viewers. Map keys marshal in sorted order, so two states built
// from the same inputs serialize byte-identically.
type PatientDisplayState struct {
	PatientID      string                  `json:"patient_id"`
	Name           string                  `json:"name"`
	Room           string                  `json:"room"`
	Bed            string                  `json:"bed"`
	Vitals         map[string]VitalReading `json:"vitals"`
	Alarms         []AlarmEvent            `json:"alarms"`
	AIPrediction   *Prediction             `json:"ai_prediction"`
	LastSeenWindow *int                    `json:"last_seen_window"`
	LastUpdateTS   *string                 `json:"last_update_ts"`
}

// NewPatientDisplayState returns a state with initialized
// collections so JSON output never contains null for them.
func NewPatientDisplayState(patientID string) PatientDisplayState {
	return PatientDisplayState{
		PatientID: patientID,
		Vitals:    make(map[string]VitalReading),
		Alarms:    []AlarmEvent{},
	}
}
