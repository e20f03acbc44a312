// Package directory tracks device-to-patient assignments and holds
// readings from devices nobody has claimed yet.
package directory

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wardsight/wardsight/internal/domain/model"
	"github.com/wardsight/wardsight/pkg/metrics"
)

// Assignment binds one device to one patient under a field mapping.
// A deactivated assignment is kept for audit but never resolves.
type Assignment struct {
	ID            string     `json:"id"`
	DeviceID      string     `json:"device_id"`
	PatientID     string     `json:"patient_id"`
	MappingID     string     `json:"mapping_id,omitempty"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}

// HeldReading is the latest payload seen from an unassigned device.
type HeldReading struct {
	DeviceID     string         `json:"device_id"`
	DeviceType   string         `json:"device_type"`
	Fields       map[string]any `json:"data"`
	Timestamp    time.Time      `json:"timestamp"`
	DiscoveredAt time.Time      `json:"discovered_at"`
}

// PersistFunc receives the storage key and serialized record on
// every directory write.
type PersistFunc func(key string, value []byte)

// Directory is the authoritative in-memory view of assignments.
// One active assignment per device; held readings are latest-wins.
type Directory struct {
	mu      sync.RWMutex
	active  map[string]Assignment
	history []Assignment
	held    map[string]HeldReading
	persist PersistFunc
	now     func() time.Time
}

// New creates an empty directory.
func New(opts ...Option) *Directory {
	d := &Directory{
		active: make(map[string]Assignment),
		held:   make(map[string]HeldReading),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Resolve returns the active assignment for a device.
func (d *Directory) Resolve(deviceID string) (Assignment, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.active[deviceID]
	return a, ok
}

// Assign activates a new device-to-patient binding. A device that
// already has an active assignment is rejected; reassignment is an
// explicit operation.
func (d *Directory) Assign(deviceID, patientID, mappingID string) (Assignment, error) {
	if deviceID == "" || patientID == "" {
		return Assignment{}, ErrInvalidAssignment
	}

	d.mu.Lock()
	if _, exists := d.active[deviceID]; exists {
		d.mu.Unlock()
		return Assignment{}, ErrDuplicateAssignment
	}
	a := Assignment{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		PatientID: patientID,
		MappingID: mappingID,
		Active:    true,
		CreatedAt: d.now().UTC(),
	}
	d.active[deviceID] = a
	delete(d.held, deviceID)
	held := len(d.held)
	monitored := d.monitoredLocked()
	d.mu.Unlock()

	metrics.UpdateHeldDevices(held)
	metrics.UpdateMonitoredPatients(monitored)
	d.persistAssignment(a)
	return a, nil
}

// Reassign atomically deactivates a device's current assignment and
// activates a new one for another patient. The device is never
// observable without an assignment during the swap.
func (d *Directory) Reassign(deviceID, patientID, reason string) (Assignment, error) {
	if deviceID == "" || patientID == "" {
		return Assignment{}, ErrInvalidAssignment
	}

	d.mu.Lock()
	old, exists := d.active[deviceID]
	if !exists {
		d.mu.Unlock()
		return Assignment{}, ErrNotAssigned
	}
	deactivatedAt := d.now().UTC()
	old.Active = false
	old.DeactivatedAt = &deactivatedAt
	old.Reason = reason
	d.history = append(d.history, old)

	replacement := Assignment{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		PatientID: patientID,
		MappingID: old.MappingID,
		Active:    true,
		CreatedAt: deactivatedAt,
	}
	d.active[deviceID] = replacement
	monitored := d.monitoredLocked()
	d.mu.Unlock()

	metrics.UpdateMonitoredPatients(monitored)
	d.persistAssignment(old)
	d.persistAssignment(replacement)
	return replacement, nil
}

// Assignments returns all assignments, active first, then the
// deactivation history, each group ordered by creation time.
func (d *Directory) Assignments() []Assignment {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Assignment, 0, len(d.active)+len(d.history))
	for _, a := range d.active {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].DeviceID < out[j].DeviceID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	out = append(out, d.history...)
	return out
}

// Monitored returns the distinct patient IDs with an active device.
func (d *Directory) Monitored() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[string]struct{}, len(d.active))
	out := make([]string, 0, len(d.active))
	for _, a := range d.active {
		if _, ok := seen[a.PatientID]; ok {
			continue
		}
		seen[a.PatientID] = struct{}{}
		out = append(out, a.PatientID)
	}
	sort.Strings(out)
	return out
}

// HoldUnassigned records the latest reading from an unclaimed
// device so staff can discover and assign it. Latest wins.
func (d *Directory) HoldUnassigned(r model.Reading) {
	held := HeldReading{
		DeviceID:     r.DeviceID,
		DeviceType:   r.DeviceType,
		Fields:       r.Fields,
		Timestamp:    r.Timestamp,
		DiscoveredAt: d.now().UTC(),
	}

	d.mu.Lock()
	if prev, ok := d.held[r.DeviceID]; ok {
		held.DiscoveredAt = prev.DiscoveredAt
	}
	d.held[r.DeviceID] = held
	count := len(d.held)
	d.mu.Unlock()

	metrics.UpdateHeldDevices(count)
	if d.persist != nil {
		if data, err := json.Marshal(held); err == nil {
			d.persist("held/"+held.DeviceID, data)
		}
	}
}

// Unassigned returns the held readings ordered by discovery time.
func (d *Directory) Unassigned() []HeldReading {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]HeldReading, 0, len(d.held))
	for _, h := range d.held {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DiscoveredAt.Equal(out[j].DiscoveredAt) {
			return out[i].DeviceID < out[j].DeviceID
		}
		return out[i].DiscoveredAt.Before(out[j].DiscoveredAt)
	})
	return out
}

func (d *Directory) monitoredLocked() int {
	seen := make(map[string]struct{}, len(d.active))
	for _, a := range d.active {
		seen[a.PatientID] = struct{}{}
	}
	return len(seen)
}

func (d *Directory) persistAssignment(a Assignment) {
	if d.persist == nil {
		return
	}
	if data, err := json.Marshal(a); err == nil {
		d.persist("assignment/"+a.ID, data)
	}
}
