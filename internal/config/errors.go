package config

import (
	"errors"
)

// Sentinel kinds for configuration failures, matchable with
// errors.Is from callers.
var (
	// ErrInvalidConfig marks a loaded configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig marks a failure reading or merging configuration sources.
	ErrLoadConfig = errors.New("load config failed")
)
