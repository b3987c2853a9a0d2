// Package booking implements the cleaning-service domain on top of the
// pure engine: customers, cleaners, jobs, subscriptions, and the service
// that orchestrates quotes, slot claims, recurrence seeding, and
// cancellations against a Store.
package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tidyhive/booking-engine/engine"
)

// =============================================================================
// DOMAIN ENTITIES
// =============================================================================

type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Cleaner is a service provider. Only active cleaners contribute slot
// capacity.
type Cleaner struct {
	ID     string
	Name   string
	Active bool
}

// Fact projects the capacity-relevant view for the engine.
func (c Cleaner) Fact() engine.CleanerFact {
	return engine.CleanerFact{ID: c.ID, Active: c.Active}
}

// TimeOff is an inclusive date interval during which a cleaner is
// unavailable.
type TimeOff struct {
	ID        string
	CleanerID string
	Start     engine.Date
	End       engine.Date
	Reason    string
}

func (t TimeOff) Fact() engine.TimeOffFact {
	return engine.TimeOffFact{CleanerID: t.CleanerID, Start: t.Start, End: t.End}
}

// Job is one scheduled cleaning visit occupying a date+slot.
type Job struct {
	ID              string
	CustomerID      string
	SubscriptionID  string // empty for standalone onetime jobs
	Date            engine.Date
	Slot            engine.Slot
	Status          engine.JobStatus
	Price           decimal.Decimal
	DurationMinutes int
	IsFirstClean    bool
	CreatedAt       time.Time
}

func (j Job) Fact() engine.JobFact {
	return engine.JobFact{Date: j.Date, Slot: j.Slot, Status: j.Status}
}

// Subscription is a customer's recurring plan. PreferredWeekday is required
// for every recurring frequency (Sunday is a valid value, hence the
// pointer).
type Subscription struct {
	ID               string
	CustomerID       string
	Frequency        engine.Frequency
	PreferredWeekday *time.Weekday
	PreferredSlot    engine.Slot
	MonthsAhead      int
	Property         engine.PropertyFacts
	Active           bool
	CreatedAt        time.Time
}

// RecurrenceInput projects the subscription into the engine's input shape.
func (s Subscription) RecurrenceInput() engine.RecurrenceInput {
	return engine.RecurrenceInput{
		Frequency:        s.Frequency,
		PreferredWeekday: s.PreferredWeekday,
		PreferredSlot:    s.PreferredSlot,
		MonthsAhead:      s.MonthsAhead,
	}
}

// Addon is a catalogue entry for an optional extra service.
type Addon struct {
	ID              string
	Name            string
	Price           decimal.Decimal
	DurationMinutes int
}

func (a Addon) Engine() engine.Addon {
	return engine.Addon{ID: a.ID, Name: a.Name, Price: a.Price, DurationMinutes: a.DurationMinutes}
}

// =============================================================================
// SERVICE RESULTS
// =============================================================================

// Quote bundles the price breakdown with both duration estimates for the
// booking wizard.
type Quote struct {
	Breakdown             engine.PriceBreakdown
	FirstCleanMinutes     int
	RecurringVisitMinutes int
	Frequency             engine.Frequency
	Addons                []Addon
}

// CancellationResult reports what cancelling a job cost.
type CancellationResult struct {
	Job     Job
	Outcome engine.CancellationOutcome
}

// SeedResult reports the outcome of materializing a subscription's
// occurrences: jobs created, plus dates that could not be claimed because
// their slot filled up between generation and insert.
type SeedResult struct {
	Created      []Job
	SkippedDates []engine.Date
}
