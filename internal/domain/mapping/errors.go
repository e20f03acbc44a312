package mapping

import "errors"

// Registry errors.
var (
	// ErrDeviceTypeRequired indicates a mapping without a device type.
	ErrDeviceTypeRequired = errors.New("device type is required")

	// ErrNoFields indicates a mapping with an empty field table.
	ErrNoFields = errors.New("mapping declares no fields")
)
