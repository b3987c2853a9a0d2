/*
service.go - Booking orchestration

PURPOSE:
  The service wires the pure engine to the store: it assembles snapshots,
  runs the engine's calculations, and performs the writes. All business
  decisions (prices, capacity, cadence, fee bands) live in the engine;
  this layer only sequences them.

BOOKING FLOW:
  1. Quote: property + frequency + add-ons -> price breakdown + durations
  2. Calendar: month grid of per-slot availability inside the window
  3. Book: availability pre-check on a snapshot, then a conditional insert;
     a write-time conflict surfaces as engine.ErrRaceLost ("pick another
     slot"), never a silent retry
  4. SeedOccurrences: after a recurring booking is confirmed, materialize
     the remaining occurrences, skipping dates that already have a job

CLOCK:
  "Now" is injected so tests drive the bookable window and cancellation
  bands deterministically. The engine itself never reads a clock.
*/
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tidyhive/booking-engine/engine"
)

// Service orchestrates quotes, availability, bookings, and recurrence
// against a Store.
type Service struct {
	store    Store
	settings *SettingsCache
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock substitutes the time source. Tests use a fixed clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, settings *SettingsCache, opts ...Option) *Service {
	s := &Service{store: store, settings: settings, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() engine.Date { return engine.DateOf(s.now()) }

// =============================================================================
// QUOTES
// =============================================================================

// Quote prices one property/frequency/add-on selection. Unknown add-on IDs
// are rejected: a stale catalogue reference is a caller bug, and silently
// dropping a paid extra is worse than failing the quote.
func (s *Service) Quote(ctx context.Context, property engine.PropertyFacts, frequency engine.Frequency, addonIDs []string) (Quote, error) {
	settings := s.settings.Get(ctx)

	addons, err := s.resolveAddons(ctx, addonIDs)
	if err != nil {
		return Quote{}, err
	}
	engineAddons := make([]engine.Addon, len(addons))
	for i, a := range addons {
		engineAddons[i] = a.Engine()
	}

	breakdown, err := engine.ComputePrice(property, frequency, engineAddons, settings)
	if err != nil {
		return Quote{}, err
	}
	firstMinutes, err := engine.EstimateDuration(property, true, engineAddons, settings)
	if err != nil {
		return Quote{}, err
	}
	// Recurring visits carry no add-ons; extras are a first-clean selection.
	recurringMinutes, err := engine.EstimateDuration(property, false, nil, settings)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		Breakdown:             breakdown,
		FirstCleanMinutes:     firstMinutes,
		RecurringVisitMinutes: recurringMinutes,
		Frequency:             frequency,
		Addons:                addons,
	}, nil
}

func (s *Service) resolveAddons(ctx context.Context, ids []string) ([]Addon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	catalogue, err := s.store.ListAddons(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading addon catalogue: %w", err)
	}
	byID := make(map[string]Addon, len(catalogue))
	for _, a := range catalogue {
		byID[a.ID] = a
	}

	seen := make(map[string]bool, len(ids))
	var out []Addon
	for _, id := range ids {
		if seen[id] {
			continue // at most once per calculation
		}
		seen[id] = true
		a, ok := byID[id]
		if !ok {
			return nil, &engine.InvalidInputError{Field: "addons", Reason: "unknown addon " + id}
		}
		out = append(out, a)
	}
	return out, nil
}

// =============================================================================
// AVAILABILITY
// =============================================================================

// Window returns the currently bookable date range.
func (s *Service) Window(ctx context.Context) engine.Window {
	settings := s.settings.Get(ctx)
	return engine.BookableWindow(s.today(), settings.LeadTimeDays, settings.MaxAdvanceDays)
}

// Calendar builds the availability grid for one month.
func (s *Service) Calendar(ctx context.Context, year int, month time.Month) (engine.CalendarMonth, error) {
	window := s.Window(ctx)

	// The grid pads into adjacent months; fetch a padded range so padding
	// weeks never show stale data if they become in-month cells elsewhere.
	from := engine.StartOfMonth(year, month).AddDays(-7)
	to := engine.EndOfMonth(year, month).AddDays(7)

	jobs, cleaners, timeOff, err := s.snapshot(ctx, from, to)
	if err != nil {
		return engine.CalendarMonth{}, err
	}
	return engine.BuildCalendarMonth(year, month, jobs, cleaners, timeOff, window), nil
}

// snapshot loads the capacity inputs for a date range.
func (s *Service) snapshot(ctx context.Context, from, to engine.Date) ([]engine.JobFact, []engine.CleanerFact, []engine.TimeOffFact, error) {
	jobs, err := s.store.ListJobs(ctx, from, to)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading jobs: %w", err)
	}
	cleaners, err := s.store.ListCleaners(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading cleaners: %w", err)
	}
	timeOff, err := s.store.ListTimeOff(ctx, from, to)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading time off: %w", err)
	}

	jobFacts := make([]engine.JobFact, len(jobs))
	for i, j := range jobs {
		jobFacts[i] = j.Fact()
	}
	cleanerFacts := make([]engine.CleanerFact, len(cleaners))
	for i, c := range cleaners {
		cleanerFacts[i] = c.Fact()
	}
	timeOffFacts := make([]engine.TimeOffFact, len(timeOff))
	for i, t := range timeOff {
		timeOffFacts[i] = t.Fact()
	}
	return jobFacts, cleanerFacts, timeOffFacts, nil
}

// =============================================================================
// BOOKING
// =============================================================================

// BookRequest describes one booking attempt for a chosen date+slot.
type BookRequest struct {
	CustomerID     string
	SubscriptionID string
	Date           engine.Date
	Slot           engine.Slot
	Frequency      engine.Frequency
	Property       engine.PropertyFacts
	AddonIDs       []string
	IsFirstClean   bool
}

// Book validates the slot against a fresh snapshot and claims it. The
// snapshot check gives a precise "unavailable" answer; the store's
// conditional insert is the actual arbiter, and losing it maps to
// engine.ErrRaceLost.
func (s *Service) Book(ctx context.Context, req BookRequest) (Job, error) {
	window := s.Window(ctx)

	jobs, cleaners, timeOff, err := s.snapshot(ctx, req.Date, req.Date)
	if err != nil {
		return Job{}, err
	}
	if err := engine.CheckSlot(req.Date, req.Slot, window, jobs, cleaners, timeOff); err != nil {
		return Job{}, err
	}

	quote, err := s.Quote(ctx, req.Property, req.Frequency, req.AddonIDs)
	if err != nil {
		return Job{}, err
	}

	price := quote.Breakdown.RecurringPrice
	minutes := quote.RecurringVisitMinutes
	if req.IsFirstClean {
		price = quote.Breakdown.FirstCleanTotal
		minutes = quote.FirstCleanMinutes
	}

	job := Job{
		ID:              uuid.NewString(),
		CustomerID:      req.CustomerID,
		SubscriptionID:  req.SubscriptionID,
		Date:            req.Date,
		Slot:            req.Slot,
		Status:          engine.JobScheduled,
		Price:           price,
		DurationMinutes: minutes,
		IsFirstClean:    req.IsFirstClean,
		CreatedAt:       s.now(),
	}

	if err := s.store.InsertJob(ctx, job); err != nil {
		if errors.Is(err, ErrSlotConflict) {
			return Job{}, fmt.Errorf("booking %s %s: %w", req.Date, req.Slot, engine.ErrRaceLost)
		}
		return Job{}, fmt.Errorf("inserting job: %w", err)
	}
	return job, nil
}

// =============================================================================
// SUBSCRIPTIONS AND RECURRENCE
// =============================================================================

// CreateSubscription validates and persists a subscription. Recurring
// frequencies must carry a preferred weekday; onetime must not have one
// seeded later, but storing it is harmless.
func (s *Service) CreateSubscription(ctx context.Context, sub Subscription) (Subscription, error) {
	if !sub.Frequency.Valid() {
		return Subscription{}, &engine.InvalidInputError{Field: "frequency", Reason: "unknown value " + string(sub.Frequency)}
	}
	if sub.Frequency.Recurring() && sub.PreferredWeekday == nil {
		return Subscription{}, engine.ErrMissingPreferredDay
	}
	if !sub.PreferredSlot.Valid() {
		return Subscription{}, &engine.InvalidInputError{Field: "preferred_slot", Reason: "unknown value " + string(sub.PreferredSlot)}
	}
	if err := sub.Property.Validate(); err != nil {
		return Subscription{}, err
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.MonthsAhead <= 0 {
		sub.MonthsAhead = 3
	}
	sub.Active = true
	sub.CreatedAt = s.now()

	if err := s.store.SaveSubscription(ctx, sub); err != nil {
		return Subscription{}, fmt.Errorf("saving subscription: %w", err)
	}
	return sub, nil
}

// SeedOccurrences materializes the future occurrences of a subscription as
// scheduled jobs, starting after startDate. Dates that already have a job
// for the customer are skipped by the generator; dates whose slot fills up
// between generation and insert are reported in SkippedDates.
func (s *Service) SeedOccurrences(ctx context.Context, subscriptionID string, startDate engine.Date) (SeedResult, error) {
	sub, err := s.store.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return SeedResult{}, err
	}
	if !sub.Frequency.Recurring() {
		return SeedResult{}, engine.ErrOnetimeRecurrence
	}

	existing, err := s.store.ListJobDatesByCustomer(ctx, sub.CustomerID)
	if err != nil {
		return SeedResult{}, fmt.Errorf("loading existing job dates: %w", err)
	}

	dates, err := engine.GenerateOccurrences(sub.RecurrenceInput(), existing, startDate)
	if err != nil {
		return SeedResult{}, err
	}

	settings := s.settings.Get(ctx)
	breakdown, err := engine.ComputePrice(sub.Property, sub.Frequency, nil, settings)
	if err != nil {
		return SeedResult{}, err
	}
	minutes, err := engine.EstimateDuration(sub.Property, false, nil, settings)
	if err != nil {
		return SeedResult{}, err
	}

	var result SeedResult
	for _, d := range dates {
		job := Job{
			ID:              uuid.NewString(),
			CustomerID:      sub.CustomerID,
			SubscriptionID:  sub.ID,
			Date:            d,
			Slot:            sub.PreferredSlot,
			Status:          engine.JobScheduled,
			Price:           breakdown.RecurringPrice,
			DurationMinutes: minutes,
			CreatedAt:       s.now(),
		}
		if err := s.store.InsertJob(ctx, job); err != nil {
			if errors.Is(err, ErrSlotConflict) {
				result.SkippedDates = append(result.SkippedDates, d)
				continue
			}
			return result, fmt.Errorf("inserting occurrence %s: %w", d, err)
		}
		result.Created = append(result.Created, job)
	}
	return result, nil
}

// =============================================================================
// CANCELLATION
// =============================================================================

// Cancel classifies the fee for cancelling a job as of now, then marks it
// cancelled (freeing its slot).
func (s *Service) Cancel(ctx context.Context, jobID string) (CancellationResult, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return CancellationResult{}, err
	}
	if !job.Status.ConsumesCapacity() {
		return CancellationResult{}, &engine.InvalidInputError{Field: "status", Reason: "job already " + string(job.Status)}
	}

	settings := s.settings.Get(ctx)
	outcome := engine.ClassifyCancellation(engine.SlotStart(job.Date, job.Slot), s.now(), job.Price, settings)

	if err := s.store.UpdateJobStatus(ctx, jobID, engine.JobCancelled); err != nil {
		return CancellationResult{}, fmt.Errorf("cancelling job: %w", err)
	}
	job.Status = engine.JobCancelled
	return CancellationResult{Job: job, Outcome: outcome}, nil
}

// MarkNoShow records a missed visit; the fee is always the full price.
func (s *Service) MarkNoShow(ctx context.Context, jobID string) (CancellationResult, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return CancellationResult{}, err
	}
	if err := s.store.UpdateJobStatus(ctx, jobID, engine.JobNoShow); err != nil {
		return CancellationResult{}, fmt.Errorf("marking no-show: %w", err)
	}
	job.Status = engine.JobNoShow
	return CancellationResult{Job: job, Outcome: engine.NoShowFee(job.Price)}, nil
}
