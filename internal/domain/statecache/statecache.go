// Package statecache keeps the last display state per patient so
// broadcasts can fill forward between readings.
package statecache

import (
	"sort"
	"sync"

	"github.com/wardsight/wardsight/internal/domain/types"
)

// Cache is the per-patient display state store. Writers always put
// freshly built states; readers get copies of the map bookkeeping
// but share the stored value, which is never mutated in place.
type Cache struct {
	mu     sync.RWMutex
	states map[string]types.PatientDisplayState
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{states: make(map[string]types.PatientDisplayState)}
}

// Put stores the latest state for a patient.
func (c *Cache) Put(state types.PatientDisplayState) {
	c.mu.Lock()
	c.states[state.PatientID] = state
	c.mu.Unlock()
}

// Get returns the cached state for a patient.
func (c *Cache) Get(patientID string) (types.PatientDisplayState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.states[patientID]
	return s, ok
}

// Snapshot returns every cached state ordered by patient ID.
func (c *Cache) Snapshot() []types.PatientDisplayState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]types.PatientDisplayState, 0, len(c.states))
	for _, s := range c.states {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PatientID < out[j].PatientID
	})
	return out
}

// Len returns the number of cached patients.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.states)
}
