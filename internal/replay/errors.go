package replay

import "errors"

// Dataset errors.
var (
	// ErrMissingPatientColumn indicates the CSV has no patientid column.
	ErrMissingPatientColumn = errors.New("dataset has no patientid column")

	// ErrMissingWindowColumn indicates the CSV has no window column.
	ErrMissingWindowColumn = errors.New("dataset has no window column")

	// ErrEmptyDataset indicates the CSV contained no usable rows.
	ErrEmptyDataset = errors.New("dataset contains no usable rows")
)
