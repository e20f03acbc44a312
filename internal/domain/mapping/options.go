package mapping

import "time"

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithPersistFunc sets the write-through hook invoked on every
// registry mutation.
func WithPersistFunc(fn PersistFunc) Option {
	return func(r *Registry) {
		r.persist = fn
	}
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}
