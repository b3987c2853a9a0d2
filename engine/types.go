/*
Package engine implements the pricing, duration, and scheduling core for a
residential cleaning service.

PURPOSE:
  This package contains the deterministic functions that turn property facts
  and a service cadence into prices and duration estimates, compute per-day
  per-slot booking capacity, and generate recurring job occurrences for a
  subscription. Everything here is pure: no I/O, no clocks, no hidden state.
  Callers supply snapshots (cleaners, time-off, jobs, settings) and own the
  results.

KEY CONCEPTS IN THIS FILE (types.go):
  - PropertyFacts: Size and room counts driving price and duration
  - Frequency: Service cadence (weekly, biweekly, monthly, onetime)
  - Addon: Optional extra with its own price and duration contribution
  - Slot: Coarse half-day scheduling unit (morning or afternoon)
  - CleanerFact / TimeOffFact / JobFact: Capacity inputs
  - PriceBreakdown: Full pricing result for a quote

DESIGN PRINCIPLES:
  1. Purity: Identical inputs always produce identical outputs
  2. Precision: Money uses decimal.Decimal, never float arithmetic
  3. Calendar semantics: Dates are timezone-naive calendar dates (date.go)
  4. Fail closed: Availability and recurrence reject rather than guess

SEE ALSO:
  - pricing.go: Price breakdown computation
  - duration.go: Minutes estimation
  - availability.go: Slot capacity and calendar grids
  - recurrence.go: Occurrence generation for subscriptions
  - settings.go: Typed settings schema with defaults
*/
package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROPERTY FACTS
// =============================================================================

// PropertyFacts describes the home being cleaned. Bathrooms allows half
// increments (a powder room counts as 0.5).
type PropertyFacts struct {
	Sqft      float64
	Bedrooms  int
	Bathrooms float64
}

// Validate rejects facts that indicate a caller bug upstream. These are never
// coerced: a non-positive square footage or a quarter-bathroom is not a value
// the booking flow can legitimately produce.
func (p PropertyFacts) Validate() error {
	if p.Sqft <= 0 {
		return &InvalidInputError{Field: "sqft", Reason: "must be positive"}
	}
	if p.Bedrooms < 1 {
		return &InvalidInputError{Field: "bedrooms", Reason: "must be at least 1"}
	}
	if p.Bathrooms < 1 {
		return &InvalidInputError{Field: "bathrooms", Reason: "must be at least 1"}
	}
	if math.Mod(p.Bathrooms*2, 1) != 0 {
		return &InvalidInputError{Field: "bathrooms", Reason: "must be in 0.5 increments"}
	}
	return nil
}

// SizeUnits returns the number of 500 sqft units, rounded up. Both pricing
// and duration bill by this unit.
func (p PropertyFacts) SizeUnits() int {
	return int(math.Ceil(p.Sqft / 500))
}

// =============================================================================
// FREQUENCY
// =============================================================================

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyOnetime  Frequency = "onetime"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyOnetime:
		return true
	}
	return false
}

// Recurring reports whether the frequency generates future occurrences.
func (f Frequency) Recurring() bool {
	return f.Valid() && f != FrequencyOnetime
}

// IntervalDays returns the step between occurrences for fixed-interval
// frequencies. Monthly steps by calendar month, not by a day count, so it
// returns 0 (see recurrence.go).
func (f Frequency) IntervalDays() int {
	switch f {
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 14
	}
	return 0
}

// =============================================================================
// ADD-ONS
// =============================================================================

// Addon is an optional extra service (inside fridge, oven, windows...).
// An add-on counts at most once per calculation; the pricing and duration
// functions deduplicate by ID themselves.
type Addon struct {
	ID              string
	Name            string
	Price           decimal.Decimal
	DurationMinutes int
}

// =============================================================================
// SLOTS AND CAPACITY FACTS
// =============================================================================

// Slot is a half-day scheduling unit. One job consumes exactly one
// cleaner-slot unit; there is no minute-precise packing.
type Slot string

const (
	SlotMorning   Slot = "morning"
	SlotAfternoon Slot = "afternoon"
)

func (s Slot) Valid() bool { return s == SlotMorning || s == SlotAfternoon }

// Slots lists the schedulable slots in day order.
func Slots() []Slot { return []Slot{SlotMorning, SlotAfternoon} }

// JobStatus is the subset of the job lifecycle the engine cares about:
// whether the job still consumes capacity.
type JobStatus string

const (
	JobScheduled JobStatus = "scheduled"
	JobCompleted JobStatus = "completed"
	JobCancelled JobStatus = "cancelled"
	JobNoShow    JobStatus = "no_show"
)

// ConsumesCapacity reports whether a job in this status still occupies its
// cleaner-slot unit. Cancelled and no-show jobs free the slot.
func (s JobStatus) ConsumesCapacity() bool {
	return s != JobCancelled && s != JobNoShow
}

// CleanerFact is the capacity-relevant view of a service provider.
type CleanerFact struct {
	ID     string
	Active bool
}

// TimeOffFact is an inclusive date range during which a cleaner contributes
// zero capacity regardless of active status.
type TimeOffFact struct {
	CleanerID string
	Start     Date
	End       Date
}

// Covers reports whether the interval includes the given date.
func (t TimeOffFact) Covers(d Date) bool {
	return t.Start.BeforeOrEqual(d) && d.BeforeOrEqual(t.End)
}

// JobFact is the capacity-relevant view of a scheduled job.
type JobFact struct {
	Date   Date
	Slot   Slot
	Status JobStatus
}

// =============================================================================
// RESULTS
// =============================================================================

// PriceBreakdown is the full pricing result for one quote. All figures are
// whole-currency amounts produced by a single uniform rounding rule
// (round half away from zero), so repeated calls never drift.
type PriceBreakdown struct {
	BasePrice       decimal.Decimal
	FirstCleanPrice decimal.Decimal
	AddonsPrice     decimal.Decimal
	FirstCleanTotal decimal.Decimal
	RecurringPrice  decimal.Decimal
	SavingsPerVisit decimal.Decimal
	Deposit         decimal.Decimal
	Remaining       decimal.Decimal
}

// SlotAvailability is the computed capacity state for one date+slot.
type SlotAvailability struct {
	Capacity  int
	Booked    int
	Remaining int
	Available bool
}

// DayCell is one cell in a calendar month grid. Padding cells (InMonth false)
// exist only for grid layout and carry no availability.
type DayCell struct {
	Date              Date
	InMonth           bool
	Bookable          bool
	HasAvailableSlots bool
	Slots             map[Slot]SlotAvailability
}

// CalendarMonth is a navigable month grid: complete weeks, Sunday-first,
// padded with cells from the adjacent months.
type CalendarMonth struct {
	Year  int
	Month int
	Weeks [][]DayCell
}
