// Package mapping translates vendor-specific device payload fields
// into the canonical vital vocabulary.
package mapping

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wardsight/wardsight/internal/domain/vitals"
)

// FieldMapping declares how one device type's payload fields map to
// canonical feature names. Fields is keyed by the device's own field
// name; the value is the canonical name it feeds.
type FieldMapping struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	DeviceType string            `json:"device_type"`
	Fields     map[string]string `json:"fields"`
	Active     bool              `json:"active"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Apply translates a raw device payload through the mapping.
// Unmapped payload fields are dropped, mapped values go through the
// tolerant parser, and every model feature is present in the result
// even when the payload never supplied it.
func (m FieldMapping) Apply(fields map[string]any) vitals.Canonical {
	out := make(vitals.Canonical)
	for deviceField, canonical := range m.Fields {
		if !vitals.IsTracked(canonical) {
			continue
		}
		raw, ok := fields[deviceField]
		if !ok {
			continue
		}
		out[canonical] = vitals.Parse(raw)
	}
	for _, feature := range vitals.ModelFeatures() {
		if _, ok := out[feature]; !ok {
			out[feature] = nil
		}
	}
	return out
}

// PersistFunc receives the storage key and serialized mapping on
// every registry write.
type PersistFunc func(key string, value []byte)

// Registry holds field mappings keyed by ID with an index by device
// type. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byID     map[string]FieldMapping
	byDevice map[string]string
	persist  PersistFunc
	now      func() time.Time
}

// NewRegistry creates an empty mapping registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byID:     make(map[string]FieldMapping),
		byDevice: make(map[string]string),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a mapping, assigning an ID and creation time when
// absent. The latest active mapping per device type wins lookups.
func (r *Registry) Add(m FieldMapping) (FieldMapping, error) {
	if m.DeviceType == "" {
		return FieldMapping{}, ErrDeviceTypeRequired
	}
	if len(m.Fields) == 0 {
		return FieldMapping{}, ErrNoFields
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = r.now().UTC()
	}
	m.Active = true

	r.mu.Lock()
	r.byID[m.ID] = m
	r.byDevice[m.DeviceType] = m.ID
	r.mu.Unlock()

	if r.persist != nil {
		if data, err := json.Marshal(m); err == nil {
			r.persist("mapping/"+m.ID, data)
		}
	}
	return m, nil
}

// ForDeviceType returns the active mapping for a device type.
func (r *Registry) ForDeviceType(deviceType string) (FieldMapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byDevice[deviceType]
	if !ok {
		return FieldMapping{}, false
	}
	m, ok := r.byID[id]
	return m, ok
}

// Get returns the mapping with the given ID.
func (r *Registry) Get(id string) (FieldMapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	return m, ok
}

// List returns all registered mappings.
func (r *Registry) List() []FieldMapping {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FieldMapping, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	return out
}

// Len returns the number of registered mappings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
