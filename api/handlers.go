/*
handlers.go - HTTP API handlers for the booking portal

PURPOSE:
  Exposes the pricing/scheduling engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Quotes:
    POST   /api/quotes                       Price + duration quote

  Availability:
    GET    /api/availability?year=&month=    Calendar month grid

  Bookings:
    GET    /api/bookings                     List jobs in a date range
    POST   /api/bookings                     Create booking (claims slot)
    GET    /api/bookings/{id}                Get one job
    POST   /api/bookings/{id}/cancel         Cancel with fee classification
    POST   /api/bookings/{id}/no-show        Record a missed visit

  Subscriptions:
    POST   /api/subscriptions                Create recurring plan
    GET    /api/subscriptions/{id}           Get plan
    POST   /api/subscriptions/{id}/occurrences  Seed future visits

  Roster:
    GET    /api/cleaners                     List cleaners
    POST   /api/cleaners                     Add cleaner
    POST   /api/cleaners/{id}/timeoff        Record unavailability

  Catalogue and admin:
    GET    /api/addons                       List add-on catalogue
    POST   /api/addons                       Upsert catalogue entry
    GET    /api/admin/settings               Current business parameters
    PUT    /api/admin/settings               Update parameters (invalidates cache)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, dates outside the window
  - 404: Resource not found
  - 409: Slot claimed concurrently (client should refresh availability)
  - 422: Slot has no remaining capacity
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - booking/service.go: The domain logic these delegate to
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tidyhive/booking-engine/booking"
	"github.com/tidyhive/booking-engine/engine"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    booking.Store
	Settings *booking.SettingsCache
	Service  *booking.Service
}

// NewHandler wires a handler over the given store. Options are forwarded to
// the service (tests inject a fixed clock).
func NewHandler(store booking.Store, opts ...booking.Option) *Handler {
	cache := booking.NewSettingsCache(store)
	return &Handler{
		Store:    store,
		Settings: cache,
		Service:  booking.NewService(store, cache, opts...),
	}
}

// =============================================================================
// QUOTES
// =============================================================================

// CreateQuote prices a property/frequency/add-on selection.
// POST /api/quotes
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	property := engine.PropertyFacts{Sqft: req.Sqft, Bedrooms: req.Bedrooms, Bathrooms: req.Bathrooms}
	quote, err := h.Service.Quote(r.Context(), property, engine.Frequency(req.Frequency), req.AddonIDs)
	if err != nil {
		writeDomainError(w, "Failed to compute quote", err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteDTO(quote))
}

// =============================================================================
// AVAILABILITY
// =============================================================================

// GetAvailability returns the availability grid for one month.
// GET /api/availability?year=2025&month=6
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2100 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month (1-12)", err)
		return
	}

	grid, err := h.Service.Calendar(r.Context(), year, time.Month(month))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarDTO(grid))
}

// =============================================================================
// BOOKINGS
// =============================================================================

// CreateBooking claims a date+slot for a customer.
// POST /api/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "customer_id is required", nil)
		return
	}
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	job, err := h.Service.Book(r.Context(), booking.BookRequest{
		CustomerID:     req.CustomerID,
		SubscriptionID: req.SubscriptionID,
		Date:           date,
		Slot:           engine.Slot(req.Slot),
		Frequency:      engine.Frequency(req.Frequency),
		Property:       engine.PropertyFacts{Sqft: req.Sqft, Bedrooms: req.Bedrooms, Bathrooms: req.Bathrooms},
		AddonIDs:       req.AddonIDs,
		IsFirstClean:   req.IsFirstClean,
	})
	if err != nil {
		writeDomainError(w, "Failed to create booking", err)
		return
	}
	writeJSON(w, http.StatusCreated, toJobDTO(job))
}

// ListBookings returns jobs in a date range. Defaults to the currently
// bookable window when from/to are omitted.
// GET /api/bookings?from=2025-06-01&to=2025-06-30
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	window := h.Service.Window(r.Context())
	from, to := window.Earliest, window.Latest

	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = engine.ParseDate(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", err)
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = engine.ParseDate(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date", err)
			return
		}
	}

	jobs, err := h.Store.ListJobs(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bookings", err)
		return
	}
	dtos := make([]JobDTO, len(jobs))
	for i, j := range jobs {
		dtos[i] = toJobDTO(j)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBooking returns a single job.
// GET /api/bookings/{id}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	job, err := h.Store.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get booking", err)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(job))
}

// CancelBooking cancels a job and reports the fee band.
// POST /api/bookings/{id}/cancel
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to cancel booking", err)
		return
	}
	writeJSON(w, http.StatusOK, CancellationDTO{
		Job:  toJobDTO(result.Job),
		Band: string(result.Outcome.Band),
		Fee:  result.Outcome.Fee.String(),
	})
}

// MarkNoShow records a missed visit at full price.
// POST /api/bookings/{id}/no-show
func (h *Handler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.MarkNoShow(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to mark no-show", err)
		return
	}
	writeJSON(w, http.StatusOK, CancellationDTO{
		Job:  toJobDTO(result.Job),
		Band: string(result.Outcome.Band),
		Fee:  result.Outcome.Fee.String(),
	})
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// CreateSubscription creates a recurring plan.
// POST /api/subscriptions
func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "customer_id is required", nil)
		return
	}

	sub := booking.Subscription{
		CustomerID:    req.CustomerID,
		Frequency:     engine.Frequency(req.Frequency),
		PreferredSlot: engine.Slot(req.PreferredSlot),
		MonthsAhead:   req.MonthsAhead,
		Property:      engine.PropertyFacts{Sqft: req.Sqft, Bedrooms: req.Bedrooms, Bathrooms: req.Bathrooms},
	}
	if req.PreferredWeekday != nil {
		if *req.PreferredWeekday < 0 || *req.PreferredWeekday > 6 {
			writeError(w, http.StatusBadRequest, "preferred_weekday must be 0 (Sunday) through 6 (Saturday)", nil)
			return
		}
		wd := time.Weekday(*req.PreferredWeekday)
		sub.PreferredWeekday = &wd
	}

	created, err := h.Service.CreateSubscription(r.Context(), sub)
	if err != nil {
		writeDomainError(w, "Failed to create subscription", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubscriptionDTO(created))
}

// GetSubscription returns a recurring plan.
// GET /api/subscriptions/{id}
func (h *Handler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.Store.GetSubscription(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get subscription", err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionDTO(sub))
}

// SeedOccurrences materializes a subscription's future visits after its
// first clean is confirmed.
// POST /api/subscriptions/{id}/occurrences
func (h *Handler) SeedOccurrences(w http.ResponseWriter, r *http.Request) {
	var req SeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := engine.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}

	result, err := h.Service.SeedOccurrences(r.Context(), chi.URLParam(r, "id"), start)
	if err != nil {
		writeDomainError(w, "Failed to seed occurrences", err)
		return
	}

	dto := SeedResultDTO{Created: make([]JobDTO, len(result.Created))}
	for i, j := range result.Created {
		dto.Created[i] = toJobDTO(j)
	}
	for _, d := range result.SkippedDates {
		dto.SkippedDates = append(dto.SkippedDates, d.String())
	}
	writeJSON(w, http.StatusCreated, dto)
}

// =============================================================================
// ROSTER
// =============================================================================

// ListCleaners returns the roster.
// GET /api/cleaners
func (h *Handler) ListCleaners(w http.ResponseWriter, r *http.Request) {
	cleaners, err := h.Store.ListCleaners(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list cleaners", err)
		return
	}
	dtos := make([]CleanerDTO, len(cleaners))
	for i, c := range cleaners {
		dtos[i] = CleanerDTO{ID: c.ID, Name: c.Name, Active: c.Active}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCleaner adds a cleaner to the roster. Active defaults to true.
// POST /api/cleaners
func (h *Handler) CreateCleaner(w http.ResponseWriter, r *http.Request) {
	var req CreateCleanerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	c := booking.Cleaner{ID: req.ID, Name: req.Name, Active: true}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if req.Active != nil {
		c.Active = *req.Active
	}

	if err := h.Store.SaveCleaner(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save cleaner", err)
		return
	}
	writeJSON(w, http.StatusCreated, CleanerDTO{ID: c.ID, Name: c.Name, Active: c.Active})
}

// CreateTimeOff records an unavailability interval for a cleaner.
// POST /api/cleaners/{id}/timeoff
func (h *Handler) CreateTimeOff(w http.ResponseWriter, r *http.Request) {
	var req TimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := engine.ParseDate(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
		return
	}
	end, err := engine.ParseDate(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end must not precede start", nil)
		return
	}

	t := booking.TimeOff{
		ID:        uuid.NewString(),
		CleanerID: chi.URLParam(r, "id"),
		Start:     start,
		End:       end,
		Reason:    req.Reason,
	}
	if err := h.Store.SaveTimeOff(r.Context(), t); err != nil {
		writeDomainError(w, "Failed to save time off", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": t.ID})
}

// =============================================================================
// CATALOGUE AND ADMIN
// =============================================================================

// ListAddons returns the add-on catalogue.
// GET /api/addons
func (h *Handler) ListAddons(w http.ResponseWriter, r *http.Request) {
	addons, err := h.Store.ListAddons(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list addons", err)
		return
	}
	dtos := make([]AddonDTO, len(addons))
	for i, a := range addons {
		dtos[i] = toAddonDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAddon upserts a catalogue entry.
// POST /api/addons
func (h *Handler) CreateAddon(w http.ResponseWriter, r *http.Request) {
	var req AddonDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeError(w, http.StatusBadRequest, "Invalid price", err)
		return
	}
	if req.DurationMinutes < 0 {
		writeError(w, http.StatusBadRequest, "duration_minutes must not be negative", nil)
		return
	}

	a := booking.Addon{ID: req.ID, Name: req.Name, Price: price, DurationMinutes: req.DurationMinutes}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := h.Store.SaveAddon(r.Context(), a); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save addon", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAddonDTO(a))
}

// GetSettings returns the effective business parameters: stored overrides
// merged over documented defaults.
// GET /api/admin/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Settings.Get(r.Context()).ToMap())
}

// UpdateSettings stores parameter overrides and invalidates the cache so
// the next quote sees the new values.
// PUT /api/admin/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	for key, value := range values {
		if err := h.Store.SaveSetting(r.Context(), key, value); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save setting "+key, err)
			return
		}
	}
	h.Settings.Invalidate()

	writeJSON(w, http.StatusOK, h.Settings.Get(r.Context()).ToMap())
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses. Order matters:
// a race loss unwraps to nothing capacity-related, but a capacity error must
// win over the generic client-error bucket.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, engine.ErrRaceLost):
		writeError(w, http.StatusConflict, "Slot was claimed concurrently, refresh availability", err)
	case errors.Is(err, engine.ErrCapacityExhausted):
		writeError(w, http.StatusUnprocessableEntity, "Slot has no remaining capacity", err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
