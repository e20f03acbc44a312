package scoring

import "errors"

// Scoring errors.
var (
	// ErrFeatureVectorSize indicates a feature vector whose length
	// does not match the model's training layout.
	ErrFeatureVectorSize = errors.New("feature vector size mismatch")
)
