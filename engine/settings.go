/*
settings.go - Typed settings schema with documented defaults

PURPOSE:
  Defines the fixed schema of tunable business parameters (rates,
  multipliers, discounts, thresholds) that the pricing, duration,
  availability, and cancellation functions consume.

WHY A FIXED SCHEMA:
  The settings store is an open key/value mapping. Reading it through a
  typed struct with one field per known setting eliminates the class of
  "unparseable setting silently ignored at point of use" bugs: malformed or
  missing entries are resolved to their defaults exactly once, at load time,
  and every consumer sees a fully-populated struct.

FALLBACK INVARIANT:
  Every setting has a hard-coded default. A missing or malformed entry
  NEVER causes an error - pricing and duration must always produce a
  number to keep the booking flow responsive. Fallback is silent.

SEE ALSO:
  - pricing.go, duration.go, availability.go, cancellation.go: Consumers
*/
package engine

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SETTINGS SCHEMA
// =============================================================================

// Settings is the complete set of business parameters. Construct with
// DefaultSettings or SettingsFromMap; the zero value is NOT usable.
type Settings struct {
	// Pricing
	BaseRatePer500       decimal.Decimal // price per started 500 sqft unit
	MinFirstCleanPrice   decimal.Decimal
	MinRecurringPrice    decimal.Decimal
	FirstCleanMultiplier decimal.Decimal
	ExtraBathroomPrice   decimal.Decimal // per bathroom above IncludedBathrooms
	ExtraBedroomPrice    decimal.Decimal // per bedroom above IncludedBedrooms
	IncludedBathrooms    float64         // no surcharge at or below this count
	IncludedBedrooms     int
	WeeklyDiscount       decimal.Decimal // fraction off base price
	BiweeklyDiscount     decimal.Decimal
	MonthlyDiscount      decimal.Decimal
	DepositFraction      decimal.Decimal

	// Duration
	BaseMinutesPer500            int
	ExtraBathroomMinutes         int
	ExtraBedroomMinutes          int
	FirstCleanDurationMultiplier decimal.Decimal

	// Scheduling
	LeadTimeDays   int // earliest bookable date = today + LeadTimeDays
	MaxAdvanceDays int // latest bookable date = today + MaxAdvanceDays

	// Cancellation
	LateCancelFee decimal.Decimal // flat fee for the 24-48h band
}

// Setting keys as stored in the settings mapping.
const (
	KeyBaseRatePer500               = "base_rate_per_500"
	KeyMinFirstCleanPrice           = "min_first_clean_price"
	KeyMinRecurringPrice            = "min_recurring_price"
	KeyFirstCleanMultiplier         = "first_clean_multiplier"
	KeyExtraBathroomPrice           = "extra_bathroom_price"
	KeyExtraBedroomPrice            = "extra_bedroom_price"
	KeyIncludedBathrooms            = "included_bathrooms"
	KeyIncludedBedrooms             = "included_bedrooms"
	KeyWeeklyDiscount               = "weekly_discount"
	KeyBiweeklyDiscount             = "biweekly_discount"
	KeyMonthlyDiscount              = "monthly_discount"
	KeyDepositFraction              = "deposit_fraction"
	KeyBaseMinutesPer500            = "base_minutes_per_500"
	KeyExtraBathroomMinutes         = "extra_bathroom_minutes"
	KeyExtraBedroomMinutes          = "extra_bedroom_minutes"
	KeyFirstCleanDurationMultiplier = "first_clean_duration_multiplier"
	KeyLeadTimeDays                 = "lead_time_days"
	KeyMaxAdvanceDays               = "max_advance_days"
	KeyLateCancelFee                = "late_cancel_fee"
)

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		BaseRatePer500:       decimal.NewFromInt(40),
		MinFirstCleanPrice:   decimal.NewFromInt(150),
		MinRecurringPrice:    decimal.NewFromInt(100),
		FirstCleanMultiplier: decimal.NewFromFloat(1.25),
		ExtraBathroomPrice:   decimal.NewFromInt(20),
		ExtraBedroomPrice:    decimal.NewFromInt(15),
		IncludedBathrooms:    2,
		IncludedBedrooms:     3,
		WeeklyDiscount:       decimal.NewFromFloat(0.25),
		BiweeklyDiscount:     decimal.NewFromFloat(0.20),
		MonthlyDiscount:      decimal.NewFromFloat(0.15),
		DepositFraction:      decimal.NewFromFloat(0.20),

		BaseMinutesPer500:            30,
		ExtraBathroomMinutes:         30,
		ExtraBedroomMinutes:          15,
		FirstCleanDurationMultiplier: decimal.NewFromFloat(1.5),

		LeadTimeDays:   1,
		MaxAdvanceDays: 60,

		LateCancelFee: decimal.NewFromInt(50),
	}
}

// SettingsFromMap resolves a raw key/value mapping against the defaults.
// Values may arrive as float64, int, or numeric strings depending on the
// storage backend; anything missing or unparseable falls back silently.
func SettingsFromMap(raw map[string]any) Settings {
	s := DefaultSettings()
	if raw == nil {
		return s
	}

	dec := func(key string, dst *decimal.Decimal) {
		if v, ok := numeric(raw[key]); ok {
			*dst = v
		}
	}
	intVal := func(key string, dst *int) {
		if v, ok := numeric(raw[key]); ok {
			*dst = int(v.IntPart())
		}
	}

	dec(KeyBaseRatePer500, &s.BaseRatePer500)
	dec(KeyMinFirstCleanPrice, &s.MinFirstCleanPrice)
	dec(KeyMinRecurringPrice, &s.MinRecurringPrice)
	dec(KeyFirstCleanMultiplier, &s.FirstCleanMultiplier)
	dec(KeyExtraBathroomPrice, &s.ExtraBathroomPrice)
	dec(KeyExtraBedroomPrice, &s.ExtraBedroomPrice)
	if v, ok := numeric(raw[KeyIncludedBathrooms]); ok {
		s.IncludedBathrooms, _ = v.Float64()
	}
	intVal(KeyIncludedBedrooms, &s.IncludedBedrooms)
	dec(KeyWeeklyDiscount, &s.WeeklyDiscount)
	dec(KeyBiweeklyDiscount, &s.BiweeklyDiscount)
	dec(KeyMonthlyDiscount, &s.MonthlyDiscount)
	dec(KeyDepositFraction, &s.DepositFraction)
	intVal(KeyBaseMinutesPer500, &s.BaseMinutesPer500)
	intVal(KeyExtraBathroomMinutes, &s.ExtraBathroomMinutes)
	intVal(KeyExtraBedroomMinutes, &s.ExtraBedroomMinutes)
	dec(KeyFirstCleanDurationMultiplier, &s.FirstCleanDurationMultiplier)
	intVal(KeyLeadTimeDays, &s.LeadTimeDays)
	intVal(KeyMaxAdvanceDays, &s.MaxAdvanceDays)
	dec(KeyLateCancelFee, &s.LateCancelFee)

	return s
}

// numeric coerces the loosely-typed values a settings store can hand back.
func numeric(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat(float64(n)), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case decimal.Decimal:
		return n, true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return decimal.NewFromFloat(f), true
		}
	}
	return decimal.Decimal{}, false
}

// FrequencyDiscount returns the fractional discount for a cadence.
// Onetime and unknown frequencies discount nothing.
func (s Settings) FrequencyDiscount(f Frequency) decimal.Decimal {
	switch f {
	case FrequencyWeekly:
		return s.WeeklyDiscount
	case FrequencyBiweekly:
		return s.BiweeklyDiscount
	case FrequencyMonthly:
		return s.MonthlyDiscount
	}
	return decimal.Zero
}

// ToMap renders the settings back into the flat mapping form used by the
// settings store and the admin API.
func (s Settings) ToMap() map[string]any {
	f := func(d decimal.Decimal) any { v, _ := d.Float64(); return v }
	return map[string]any{
		KeyBaseRatePer500:               f(s.BaseRatePer500),
		KeyMinFirstCleanPrice:           f(s.MinFirstCleanPrice),
		KeyMinRecurringPrice:            f(s.MinRecurringPrice),
		KeyFirstCleanMultiplier:         f(s.FirstCleanMultiplier),
		KeyExtraBathroomPrice:           f(s.ExtraBathroomPrice),
		KeyExtraBedroomPrice:            f(s.ExtraBedroomPrice),
		KeyIncludedBathrooms:            s.IncludedBathrooms,
		KeyIncludedBedrooms:             s.IncludedBedrooms,
		KeyWeeklyDiscount:               f(s.WeeklyDiscount),
		KeyBiweeklyDiscount:             f(s.BiweeklyDiscount),
		KeyMonthlyDiscount:              f(s.MonthlyDiscount),
		KeyDepositFraction:              f(s.DepositFraction),
		KeyBaseMinutesPer500:            s.BaseMinutesPer500,
		KeyExtraBathroomMinutes:         s.ExtraBathroomMinutes,
		KeyExtraBedroomMinutes:          s.ExtraBedroomMinutes,
		KeyFirstCleanDurationMultiplier: f(s.FirstCleanDurationMultiplier),
		KeyLeadTimeDays:                 s.LeadTimeDays,
		KeyMaxAdvanceDays:               s.MaxAdvanceDays,
		KeyLateCancelFee:                f(s.LateCancelFee),
	}
}
