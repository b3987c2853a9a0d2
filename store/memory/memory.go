// Package memory provides an in-memory booking.Store (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tidyhive/booking-engine/booking"
	"github.com/tidyhive/booking-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu            sync.RWMutex
	cleaners      map[string]booking.Cleaner
	timeOff       []booking.TimeOff
	jobs          map[string]booking.Job
	subscriptions map[string]booking.Subscription
	addons        map[string]booking.Addon
	settings      map[string]any
}

var _ booking.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		cleaners:      make(map[string]booking.Cleaner),
		jobs:          make(map[string]booking.Job),
		subscriptions: make(map[string]booking.Subscription),
		addons:        make(map[string]booking.Addon),
		settings:      make(map[string]any),
	}
}

// =============================================================================
// CLEANERS AND TIME-OFF
// =============================================================================

func (m *Store) SaveCleaner(_ context.Context, c booking.Cleaner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleaners[c.ID] = c
	return nil
}

func (m *Store) GetCleaner(_ context.Context, id string) (booking.Cleaner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cleaners[id]
	if !ok {
		return booking.Cleaner{}, booking.ErrNotFound
	}
	return c, nil
}

func (m *Store) ListCleaners(_ context.Context) ([]booking.Cleaner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]booking.Cleaner, 0, len(m.cleaners))
	for _, c := range m.cleaners {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) SaveTimeOff(_ context.Context, t booking.TimeOff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cleaners[t.CleanerID]; !ok {
		return booking.ErrNotFound
	}
	m.timeOff = append(m.timeOff, t)
	return nil
}

func (m *Store) ListTimeOff(_ context.Context, from, to engine.Date) ([]booking.TimeOff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []booking.TimeOff
	for _, t := range m.timeOff {
		// Overlap with [from, to].
		if t.End.AfterOrEqual(from) && t.Start.BeforeOrEqual(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

// =============================================================================
// JOBS
// =============================================================================

// InsertJob claims one cleaner-slot unit. Capacity is re-counted under the
// write lock, so two racing inserts for the last unit cannot both succeed.
func (m *Store) InsertJob(_ context.Context, j booking.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[j.ID]; ok {
		return booking.ErrDuplicateID
	}

	capacity := m.slotCapacityLocked(j.Date)
	booked := 0
	for _, existing := range m.jobs {
		if existing.Date.Equal(j.Date) && existing.Slot == j.Slot && existing.Status.ConsumesCapacity() {
			booked++
		}
	}
	if booked >= capacity {
		return booking.ErrSlotConflict
	}

	m.jobs[j.ID] = j
	return nil
}

func (m *Store) slotCapacityLocked(d engine.Date) int {
	capacity := 0
	for _, c := range m.cleaners {
		if !c.Active {
			continue
		}
		onLeave := false
		for _, t := range m.timeOff {
			if t.CleanerID == c.ID && t.Start.BeforeOrEqual(d) && d.BeforeOrEqual(t.End) {
				onLeave = true
				break
			}
		}
		if !onLeave {
			capacity++
		}
	}
	return capacity
}

func (m *Store) GetJob(_ context.Context, id string) (booking.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return booking.Job{}, booking.ErrNotFound
	}
	return j, nil
}

func (m *Store) UpdateJobStatus(_ context.Context, id string, status engine.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return booking.ErrNotFound
	}
	j.Status = status
	m.jobs[id] = j
	return nil
}

func (m *Store) ListJobs(_ context.Context, from, to engine.Date) ([]booking.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []booking.Job
	for _, j := range m.jobs {
		if j.Date.AfterOrEqual(from) && j.Date.BeforeOrEqual(to) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Store) ListJobDatesByCustomer(_ context.Context, customerID string) ([]engine.Date, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var out []engine.Date
	for _, j := range m.jobs {
		if j.CustomerID != customerID || !j.Status.ConsumesCapacity() {
			continue
		}
		if !seen[j.Date.String()] {
			seen[j.Date.String()] = true
			out = append(out, j.Date)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// =============================================================================
// SUBSCRIPTIONS, ADD-ONS, SETTINGS
// =============================================================================

func (m *Store) SaveSubscription(_ context.Context, s booking.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions[s.ID] = s
	return nil
}

func (m *Store) GetSubscription(_ context.Context, id string) (booking.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subscriptions[id]
	if !ok {
		return booking.Subscription{}, booking.ErrNotFound
	}
	return s, nil
}

func (m *Store) SaveAddon(_ context.Context, a booking.Addon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addons[a.ID] = a
	return nil
}

func (m *Store) ListAddons(_ context.Context) ([]booking.Addon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]booking.Addon, 0, len(m.addons))
	for _, a := range m.addons {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) LoadSettings(_ context.Context) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.settings))
	for k, v := range m.settings {
		out[k] = v
	}
	return out, nil
}

func (m *Store) SaveSetting(_ context.Context, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}
