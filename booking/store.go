/*
store.go - Persistence interface for the booking domain

PURPOSE:
  Defines what the service layer needs from storage. Implementations live
  in store/memory (tests, dev) and store/sqlite (production).

WRITE-TIME CAPACITY ENFORCEMENT:
  The engine computes availability from snapshots, so two booking attempts
  can race for the last cleaner-slot unit. InsertJob is therefore a
  CONDITIONAL insert: the store re-counts capacity for the job's date+slot
  inside its own transaction and fails with ErrSlotConflict when the slot
  is already full. Callers map that failure to engine.ErrRaceLost and ask
  the customer to pick another slot - never a silent retry.
*/
package booking

import (
	"context"
	"errors"

	"github.com/tidyhive/booking-engine/engine"
)

// =============================================================================
// STORE ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrSlotConflict is returned by InsertJob when the date+slot has no
	// remaining capacity at write time.
	ErrSlotConflict = errors.New("slot capacity exhausted at write time")

	// ErrDuplicateID is returned when inserting a record whose ID exists.
	ErrDuplicateID = errors.New("duplicate record id")
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is the persistence boundary for the booking domain.
type Store interface {
	// Cleaners and time-off
	SaveCleaner(ctx context.Context, c Cleaner) error
	GetCleaner(ctx context.Context, id string) (Cleaner, error)
	ListCleaners(ctx context.Context) ([]Cleaner, error)
	SaveTimeOff(ctx context.Context, t TimeOff) error
	ListTimeOff(ctx context.Context, from, to engine.Date) ([]TimeOff, error)

	// Jobs. InsertJob enforces the per-slot capacity constraint atomically.
	InsertJob(ctx context.Context, j Job) error
	GetJob(ctx context.Context, id string) (Job, error)
	UpdateJobStatus(ctx context.Context, id string, status engine.JobStatus) error
	ListJobs(ctx context.Context, from, to engine.Date) ([]Job, error)
	ListJobDatesByCustomer(ctx context.Context, customerID string) ([]engine.Date, error)

	// Subscriptions
	SaveSubscription(ctx context.Context, s Subscription) error
	GetSubscription(ctx context.Context, id string) (Subscription, error)

	// Add-on catalogue
	SaveAddon(ctx context.Context, a Addon) error
	ListAddons(ctx context.Context) ([]Addon, error)

	// Settings mapping (raw key/value form; engine.SettingsFromMap applies
	// defaults and type coercion)
	LoadSettings(ctx context.Context) (map[string]any, error)
	SaveSetting(ctx context.Context, key string, value any) error
}

// SettingsSource is the read side of the settings store, split out so the
// cache doesn't depend on the full Store.
type SettingsSource interface {
	LoadSettings(ctx context.Context) (map[string]any, error)
}
