/*
pricing.go - Price breakdown computation

PURPOSE:
  Turns property facts, a service frequency, and selected add-ons into the
  full price breakdown for a quote: first-clean price, recurring per-visit
  price, deposit split, and per-visit savings.

PRICING MODEL:
  base      = sizeUnits * ratePer500
              + extra bathrooms * bathroom price
              + extra bedrooms  * bedroom price
  first     = max(round(base * firstCleanMultiplier), minFirstClean)
  recurring = max(round(base * (1 - frequencyDiscount)), minRecurring)
  deposit   = round((first + addons) * depositFraction)

ROUNDING:
  One rule everywhere: decimal round-half-away-from-zero to whole currency.
  Mixing rounding rules between fields causes off-by-one drift between
  repeated quotes for the same inputs, which customers notice.

GUARANTEES:
  - Pure and deterministic: no clock, no randomness, no hidden state
  - Never returns a negative figure
  - Configured minimums always dominate the multiplicative formula
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// ComputePrice calculates the full price breakdown for one quote.
// Rejects malformed property facts; settings gaps never fail (settings.go).
func ComputePrice(property PropertyFacts, frequency Frequency, addons []Addon, s Settings) (PriceBreakdown, error) {
	if err := property.Validate(); err != nil {
		return PriceBreakdown{}, err
	}
	if !frequency.Valid() {
		return PriceBreakdown{}, &InvalidInputError{Field: "frequency", Reason: "unknown value " + string(frequency)}
	}

	base := basePrice(property, s)

	firstClean := decimal.Max(
		base.Mul(s.FirstCleanMultiplier).Round(0),
		s.MinFirstCleanPrice,
	)

	addonsPrice := decimal.Zero
	for _, a := range dedupeAddons(addons) {
		addonsPrice = addonsPrice.Add(a.Price)
	}
	firstCleanTotal := firstClean.Add(addonsPrice)

	discount := s.FrequencyDiscount(frequency)
	recurring := decimal.Max(
		base.Mul(decimal.NewFromInt(1).Sub(discount)).Round(0),
		s.MinRecurringPrice,
	)

	savings := decimal.Max(firstClean.Sub(recurring), decimal.Zero)

	deposit := firstCleanTotal.Mul(s.DepositFraction).Round(0)
	remaining := firstCleanTotal.Sub(deposit)

	return PriceBreakdown{
		BasePrice:       base,
		FirstCleanPrice: firstClean,
		AddonsPrice:     addonsPrice,
		FirstCleanTotal: firstCleanTotal,
		RecurringPrice:  recurring,
		SavingsPerVisit: savings,
		Deposit:         deposit,
		Remaining:       remaining,
	}, nil
}

// dedupeAddons keeps the first occurrence of each addon ID. An add-on
// counts at most once per calculation, so a doubled selection can never
// double-bill a price or double-count minutes.
func dedupeAddons(addons []Addon) []Addon {
	if len(addons) < 2 {
		return addons
	}
	seen := make(map[string]bool, len(addons))
	out := make([]Addon, 0, len(addons))
	for _, a := range addons {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		out = append(out, a)
	}
	return out
}

// basePrice is the undiscounted per-visit price before multipliers and
// minimums. Shared by the first-clean and recurring paths so the two can
// never disagree about the underlying figure.
func basePrice(p PropertyFacts, s Settings) decimal.Decimal {
	price := s.BaseRatePer500.Mul(decimal.NewFromInt(int64(p.SizeUnits())))

	extraBaths := p.Bathrooms - s.IncludedBathrooms
	if extraBaths > 0 {
		price = price.Add(s.ExtraBathroomPrice.Mul(decimal.NewFromFloat(extraBaths)))
	}
	if extraBeds := p.Bedrooms - s.IncludedBedrooms; extraBeds > 0 {
		price = price.Add(s.ExtraBedroomPrice.Mul(decimal.NewFromInt(int64(extraBeds))))
	}
	return price
}
