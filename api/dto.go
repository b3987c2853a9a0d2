/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Quote:
    QuoteRequest, QuoteDTO, PriceBreakdownDTO

  Availability:
    CalendarDTO, DayCellDTO, SlotDTO

  Booking:
    BookRequest, JobDTO, CancellationDTO

  Subscription:
    CreateSubscriptionRequest, SubscriptionDTO, SeedRequest, SeedResultDTO

  Roster:
    CleanerDTO, CreateCleanerRequest, TimeOffRequest

MONEY:
  Prices are serialized as JSON strings ("128") rather than floats so
  clients never see binary-float artifacts. decimal.Decimal's String form
  is exact.

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - booking/types.go: Domain types these project
*/
package api

import (
	"time"

	"github.com/tidyhive/booking-engine/booking"
	"github.com/tidyhive/booking-engine/engine"
)

// =============================================================================
// QUOTES
// =============================================================================

// QuoteRequest is the input to a price/duration quote.
type QuoteRequest struct {
	Sqft      float64  `json:"sqft"`
	Bedrooms  int      `json:"bedrooms"`
	Bathrooms float64  `json:"bathrooms"`
	Frequency string   `json:"frequency"`
	AddonIDs  []string `json:"addon_ids,omitempty"`
}

// PriceBreakdownDTO mirrors engine.PriceBreakdown with string money fields.
type PriceBreakdownDTO struct {
	BasePrice       string `json:"base_price"`
	FirstCleanPrice string `json:"first_clean_price"`
	AddonsPrice     string `json:"addons_price"`
	FirstCleanTotal string `json:"first_clean_total"`
	RecurringPrice  string `json:"recurring_price"`
	SavingsPerVisit string `json:"savings_per_visit"`
	Deposit         string `json:"deposit"`
	Remaining       string `json:"remaining"`
}

// QuoteDTO is the full quote response.
type QuoteDTO struct {
	Breakdown             PriceBreakdownDTO `json:"breakdown"`
	FirstCleanMinutes     int               `json:"first_clean_minutes"`
	RecurringVisitMinutes int               `json:"recurring_visit_minutes"`
	Frequency             string            `json:"frequency"`
	Addons                []AddonDTO        `json:"addons,omitempty"`
}

// AddonDTO is a catalogue entry in API responses.
type AddonDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Price           string `json:"price"`
	DurationMinutes int    `json:"duration_minutes"`
}

// =============================================================================
// AVAILABILITY
// =============================================================================

// SlotDTO is the availability state of one half-day slot.
type SlotDTO struct {
	Capacity  int  `json:"capacity"`
	Booked    int  `json:"booked"`
	Remaining int  `json:"remaining"`
	Available bool `json:"available"`
}

// DayCellDTO is one cell of the month grid. Padding cells carry no slots.
type DayCellDTO struct {
	Date              string             `json:"date"`
	InMonth           bool               `json:"in_month"`
	Bookable          bool               `json:"bookable"`
	HasAvailableSlots bool               `json:"has_available_slots"`
	Slots             map[string]SlotDTO `json:"slots,omitempty"`
}

// CalendarDTO is the month grid response: complete Sunday-first weeks.
type CalendarDTO struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Weeks [][]DayCellDTO `json:"weeks"`
}

// =============================================================================
// BOOKINGS
// =============================================================================

// BookRequest is the input to create a booking.
type BookRequest struct {
	CustomerID     string   `json:"customer_id"`
	SubscriptionID string   `json:"subscription_id,omitempty"`
	Date           string   `json:"date"`
	Slot           string   `json:"slot"`
	Frequency      string   `json:"frequency"`
	Sqft           float64  `json:"sqft"`
	Bedrooms       int      `json:"bedrooms"`
	Bathrooms      float64  `json:"bathrooms"`
	AddonIDs       []string `json:"addon_ids,omitempty"`
	IsFirstClean   bool     `json:"is_first_clean"`
}

// JobDTO represents a scheduled visit in API responses.
type JobDTO struct {
	ID              string `json:"id"`
	CustomerID      string `json:"customer_id"`
	SubscriptionID  string `json:"subscription_id,omitempty"`
	Date            string `json:"date"`
	Slot            string `json:"slot"`
	Status          string `json:"status"`
	Price           string `json:"price"`
	DurationMinutes int    `json:"duration_minutes"`
	IsFirstClean    bool   `json:"is_first_clean"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// CancellationDTO reports the fee band applied when a job is cancelled.
type CancellationDTO struct {
	Job  JobDTO `json:"job"`
	Band string `json:"band"`
	Fee  string `json:"fee"`
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// CreateSubscriptionRequest is the input to create a recurring plan.
// PreferredWeekday is a pointer because Sunday is 0 and "absent" must be
// distinguishable from it.
type CreateSubscriptionRequest struct {
	CustomerID       string  `json:"customer_id"`
	Frequency        string  `json:"frequency"`
	PreferredWeekday *int    `json:"preferred_weekday,omitempty"`
	PreferredSlot    string  `json:"preferred_slot"`
	MonthsAhead      int     `json:"months_ahead,omitempty"`
	Sqft             float64 `json:"sqft"`
	Bedrooms         int     `json:"bedrooms"`
	Bathrooms        float64 `json:"bathrooms"`
}

// SubscriptionDTO represents a recurring plan in API responses.
type SubscriptionDTO struct {
	ID               string `json:"id"`
	CustomerID       string `json:"customer_id"`
	Frequency        string `json:"frequency"`
	PreferredWeekday *int   `json:"preferred_weekday,omitempty"`
	PreferredSlot    string `json:"preferred_slot"`
	MonthsAhead      int    `json:"months_ahead"`
	Active           bool   `json:"active"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// SeedRequest triggers occurrence generation after a confirmed first clean.
type SeedRequest struct {
	StartDate string `json:"start_date"`
}

// SeedResultDTO reports created occurrences and dates skipped because their
// slot filled up between generation and insert.
type SeedResultDTO struct {
	Created      []JobDTO `json:"created"`
	SkippedDates []string `json:"skipped_dates,omitempty"`
}

// =============================================================================
// ROSTER
// =============================================================================

// CleanerDTO represents a cleaner in API responses.
type CleanerDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// CreateCleanerRequest is the request to add a cleaner to the roster.
type CreateCleanerRequest struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Active *bool  `json:"active,omitempty"`
}

// TimeOffRequest records an inclusive unavailability interval.
type TimeOffRequest struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason,omitempty"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toBreakdownDTO(b engine.PriceBreakdown) PriceBreakdownDTO {
	return PriceBreakdownDTO{
		BasePrice:       b.BasePrice.String(),
		FirstCleanPrice: b.FirstCleanPrice.String(),
		AddonsPrice:     b.AddonsPrice.String(),
		FirstCleanTotal: b.FirstCleanTotal.String(),
		RecurringPrice:  b.RecurringPrice.String(),
		SavingsPerVisit: b.SavingsPerVisit.String(),
		Deposit:         b.Deposit.String(),
		Remaining:       b.Remaining.String(),
	}
}

func toQuoteDTO(q booking.Quote) QuoteDTO {
	dto := QuoteDTO{
		Breakdown:             toBreakdownDTO(q.Breakdown),
		FirstCleanMinutes:     q.FirstCleanMinutes,
		RecurringVisitMinutes: q.RecurringVisitMinutes,
		Frequency:             string(q.Frequency),
	}
	for _, a := range q.Addons {
		dto.Addons = append(dto.Addons, toAddonDTO(a))
	}
	return dto
}

func toAddonDTO(a booking.Addon) AddonDTO {
	return AddonDTO{
		ID:              a.ID,
		Name:            a.Name,
		Price:           a.Price.String(),
		DurationMinutes: a.DurationMinutes,
	}
}

func toJobDTO(j booking.Job) JobDTO {
	return JobDTO{
		ID:              j.ID,
		CustomerID:      j.CustomerID,
		SubscriptionID:  j.SubscriptionID,
		Date:            j.Date.String(),
		Slot:            string(j.Slot),
		Status:          string(j.Status),
		Price:           j.Price.String(),
		DurationMinutes: j.DurationMinutes,
		IsFirstClean:    j.IsFirstClean,
		CreatedAt:       j.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toSubscriptionDTO(s booking.Subscription) SubscriptionDTO {
	dto := SubscriptionDTO{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		Frequency:     string(s.Frequency),
		PreferredSlot: string(s.PreferredSlot),
		MonthsAhead:   s.MonthsAhead,
		Active:        s.Active,
		CreatedAt:     s.CreatedAt.UTC().Format(time.RFC3339),
	}
	if s.PreferredWeekday != nil {
		wd := int(*s.PreferredWeekday)
		dto.PreferredWeekday = &wd
	}
	return dto
}

func toCalendarDTO(m engine.CalendarMonth) CalendarDTO {
	dto := CalendarDTO{Year: m.Year, Month: m.Month, Weeks: make([][]DayCellDTO, len(m.Weeks))}
	for i, week := range m.Weeks {
		row := make([]DayCellDTO, len(week))
		for j, cell := range week {
			c := DayCellDTO{
				Date:              cell.Date.String(),
				InMonth:           cell.InMonth,
				Bookable:          cell.Bookable,
				HasAvailableSlots: cell.HasAvailableSlots,
			}
			if len(cell.Slots) > 0 {
				c.Slots = make(map[string]SlotDTO, len(cell.Slots))
				for slot, sa := range cell.Slots {
					c.Slots[string(slot)] = SlotDTO{
						Capacity:  sa.Capacity,
						Booked:    sa.Booked,
						Remaining: sa.Remaining,
						Available: sa.Available,
					}
				}
			}
			row[j] = c
		}
		dto.Weeks[i] = row
	}
	return dto
}
