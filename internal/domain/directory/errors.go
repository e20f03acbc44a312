package directory

import "errors"

// Directory errors.
var (
	// ErrInvalidAssignment indicates a missing device or patient ID.
	ErrInvalidAssignment = errors.New("device and patient IDs are required")

	// ErrDuplicateAssignment indicates the device already has an
	// active assignment.
	ErrDuplicateAssignment = errors.New("device already assigned")

	// ErrNotAssigned indicates a reassignment for a device that has
	// no active assignment.
	ErrNotAssigned = errors.New("device has no active assignment")
)
