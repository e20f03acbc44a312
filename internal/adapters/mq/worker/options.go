// Package worker defines worker contracts for asynchronous record
// persistence.
package worker

import (
	"github.com/wardsight/wardsight/pkg/logger"
)

// Option applies a configuration option to the Persister.
type Option func(*Persister)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Persister) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *Persister) {
		if logger != nil {
			w.logger = logger
		}
	}
}
