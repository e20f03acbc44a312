package simdevice

import "time"

// Config holds configuration for the device simulation run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Patients   int           // Number of simulated bedside devices/patients
	Rounds     int           // Number of reading rounds to stream
	Interval   time.Duration // Delay between rounds
	Workers    int           // Number of concurrent submit workers
	Timeout    time.Duration // HTTP request timeout
	DeviceType string        // Device type reported by every simulated monitor
	LogFile    string        // Log file for simulation output
	Verbose    bool          // Enable verbose logging
}

// Reading is the ingest payload for one simulated device sample.
type Reading struct {
	DeviceID   string         `json:"device_id"`
	DeviceType string         `json:"device_type"`
	TS         string         `json:"timestamp"`
	Data       map[string]any `json:"data"`
}

// MappingRequest creates the field mapping the simulated devices use.
type MappingRequest struct {
	Name       string            `json:"name"`
	DeviceType string            `json:"device_type"`
	Fields     map[string]string `json:"fields"`
}

// MappingResponse is the created mapping echoed back by the service.
type MappingResponse struct {
	ID         string `json:"id"`
	DeviceType string `json:"device_type"`
	Active     bool   `json:"active"`
}

// AssignmentRequest pairs a simulated device with a patient.
type AssignmentRequest struct {
	DeviceID  string `json:"device_id"`
	PatientID string `json:"patient_id"`
}

// IngestResponse is the per-reading outcome returned by the service.
type IngestResponse struct {
	Status    string `json:"status"`
	DeviceID  string `json:"device_id"`
	PatientID string `json:"patient_id,omitempty"`
}

// Stats holds simulation statistics.
type Stats struct {
	ReadingsGenerated int
	ReadingsSubmitted int
	ReadingsAccepted  int
	ReadingsHeld      int
	ReadingsUnmapped  int
	ReadingsFailed    int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
