package directory

import "time"

// Option applies a configuration option to the Directory.
type Option func(*Directory)

// WithPersistFunc sets the write-through hook invoked on every
// directory mutation.
func WithPersistFunc(fn PersistFunc) Option {
	return func(d *Directory) {
		d.persist = fn
	}
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) {
		if now != nil {
			d.now = now
		}
	}
}
