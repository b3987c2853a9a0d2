/*
pricing_test.go - Executable pricing scenarios

Each scenario test documents one concrete quote end to end; the property
tests pin down the guarantees (minimum prices dominate, determinism,
monotonicity in square footage).
*/
package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tidyhive/booking-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func money(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func assertMoney(t *testing.T, want int64, got decimal.Decimal, label string) {
	t.Helper()
	if !got.Equal(money(want)) {
		t.Errorf("%s: expected %d, got %s", label, want, got)
	}
}

// =============================================================================
// CONCRETE SCENARIOS
// =============================================================================

func TestComputePrice_BiweeklyThreeBedTwoBath(t *testing.T) {
	// GIVEN: 2000 sqft, 3 bed / 2 bath, biweekly, no add-ons, default settings
	// WHEN: Computing the quote
	// THEN: base=160 (4 units x 40), first clean=200 (x1.25),
	//       recurring=128 (20% off), deposit=40 (20% of 200)

	breakdown, err := engine.ComputePrice(
		engine.PropertyFacts{Sqft: 2000, Bedrooms: 3, Bathrooms: 2},
		engine.FrequencyBiweekly,
		nil,
		engine.DefaultSettings(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertMoney(t, 160, breakdown.BasePrice, "base price")
	assertMoney(t, 200, breakdown.FirstCleanPrice, "first clean price")
	assertMoney(t, 0, breakdown.AddonsPrice, "addons price")
	assertMoney(t, 200, breakdown.FirstCleanTotal, "first clean total")
	assertMoney(t, 128, breakdown.RecurringPrice, "recurring price")
	assertMoney(t, 72, breakdown.SavingsPerVisit, "savings per visit")
	assertMoney(t, 40, breakdown.Deposit, "deposit")
	assertMoney(t, 160, breakdown.Remaining, "remaining")
}

func TestComputePrice_SmallOnetime_MinimumApplies(t *testing.T) {
	// GIVEN: 500 sqft studio-sized home, onetime frequency
	// WHEN: Computing the quote
	// THEN: base=40, multiplied first clean would be 50 but the 150 minimum
	//       dominates; onetime gets no discount

	breakdown, err := engine.ComputePrice(
		engine.PropertyFacts{Sqft: 500, Bedrooms: 1, Bathrooms: 1},
		engine.FrequencyOnetime,
		nil,
		engine.DefaultSettings(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertMoney(t, 40, breakdown.BasePrice, "base price")
	assertMoney(t, 150, breakdown.FirstCleanPrice, "first clean price")
	// Onetime discount is zero, so recurring falls to the recurring minimum.
	assertMoney(t, 100, breakdown.RecurringPrice, "recurring price")
}

func TestComputePrice_ExtraRoomsAndAddons(t *testing.T) {
	// GIVEN: 5 bed / 3.5 bath above the included counts, plus two add-ons
	// WHEN: Computing the quote
	// THEN: surcharges and add-ons land in the expected fields

	addons := []engine.Addon{
		{ID: "fridge", Name: "Inside Fridge", Price: money(35), DurationMinutes: 30},
		{ID: "oven", Name: "Inside Oven", Price: money(25), DurationMinutes: 30},
	}

	breakdown, err := engine.ComputePrice(
		engine.PropertyFacts{Sqft: 2400, Bedrooms: 5, Bathrooms: 3.5},
		engine.FrequencyWeekly,
		addons,
		engine.DefaultSettings(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 5 units x 40 = 200, +1.5 extra baths x 20 = 30, +2 extra beds x 15 = 30
	assertMoney(t, 260, breakdown.BasePrice, "base price")
	assertMoney(t, 60, breakdown.AddonsPrice, "addons price")
	// first clean 260*1.25=325, total 385, deposit 77
	assertMoney(t, 325, breakdown.FirstCleanPrice, "first clean price")
	assertMoney(t, 385, breakdown.FirstCleanTotal, "first clean total")
	assertMoney(t, 77, breakdown.Deposit, "deposit")
	assertMoney(t, 308, breakdown.Remaining, "remaining")
	// weekly 25% off: 260*0.75=195
	assertMoney(t, 195, breakdown.RecurringPrice, "recurring price")
}

func TestComputePrice_DuplicateAddonCountedOnce(t *testing.T) {
	// GIVEN: The same add-on appearing twice in the selection
	// WHEN: Computing the quote
	// THEN: It is billed once; the result matches the deduplicated selection

	fridge := engine.Addon{ID: "fridge", Name: "Inside Fridge", Price: money(35), DurationMinutes: 30}
	property := engine.PropertyFacts{Sqft: 2000, Bedrooms: 3, Bathrooms: 2}
	s := engine.DefaultSettings()

	doubled, err := engine.ComputePrice(property, engine.FrequencyWeekly, []engine.Addon{fridge, fridge}, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertMoney(t, 35, doubled.AddonsPrice, "addons price")

	single, err := engine.ComputePrice(property, engine.FrequencyWeekly, []engine.Addon{fridge}, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doubled.FirstCleanTotal.Equal(single.FirstCleanTotal) || !doubled.Deposit.Equal(single.Deposit) {
		t.Errorf("doubled selection changed the quote: total %s vs %s, deposit %s vs %s",
			doubled.FirstCleanTotal, single.FirstCleanTotal, doubled.Deposit, single.Deposit)
	}
}

// =============================================================================
// GUARANTEES
// =============================================================================

func TestComputePrice_MinimumsDominate_AllFrequencies(t *testing.T) {
	// GIVEN: The smallest valid property
	// WHEN: Quoting under every frequency
	// THEN: Both configured minimums hold

	s := engine.DefaultSettings()
	property := engine.PropertyFacts{Sqft: 1, Bedrooms: 1, Bathrooms: 1}

	for _, freq := range []engine.Frequency{
		engine.FrequencyWeekly, engine.FrequencyBiweekly,
		engine.FrequencyMonthly, engine.FrequencyOnetime,
	} {
		breakdown, err := engine.ComputePrice(property, freq, nil, s)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", freq, err)
		}
		if breakdown.FirstCleanPrice.LessThan(s.MinFirstCleanPrice) {
			t.Errorf("%s: first clean %s below minimum %s", freq, breakdown.FirstCleanPrice, s.MinFirstCleanPrice)
		}
		if breakdown.RecurringPrice.LessThan(s.MinRecurringPrice) {
			t.Errorf("%s: recurring %s below minimum %s", freq, breakdown.RecurringPrice, s.MinRecurringPrice)
		}
		if breakdown.Deposit.IsNegative() || breakdown.Remaining.IsNegative() {
			t.Errorf("%s: negative deposit split: %s / %s", freq, breakdown.Deposit, breakdown.Remaining)
		}
	}
}

func TestComputePrice_Deterministic(t *testing.T) {
	// GIVEN: Identical inputs
	// WHEN: Computing the quote twice
	// THEN: Every field matches exactly

	property := engine.PropertyFacts{Sqft: 1730, Bedrooms: 4, Bathrooms: 2.5}
	addons := []engine.Addon{{ID: "windows", Price: money(45), DurationMinutes: 60}}
	s := engine.DefaultSettings()

	first, err := engine.ComputePrice(property, engine.FrequencyMonthly, addons, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.ComputePrice(property, engine.FrequencyMonthly, addons, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pairs := [][2]decimal.Decimal{
		{first.BasePrice, second.BasePrice},
		{first.FirstCleanPrice, second.FirstCleanPrice},
		{first.FirstCleanTotal, second.FirstCleanTotal},
		{first.RecurringPrice, second.RecurringPrice},
		{first.SavingsPerVisit, second.SavingsPerVisit},
		{first.Deposit, second.Deposit},
		{first.Remaining, second.Remaining},
	}
	for i, p := range pairs {
		if !p[0].Equal(p[1]) {
			t.Errorf("field %d differs between identical calls: %s vs %s", i, p[0], p[1])
		}
	}
}

func TestComputePrice_MonotonicInSqft(t *testing.T) {
	// GIVEN: Growing square footage with rooms held fixed
	// WHEN: Quoting at each size
	// THEN: Base price never decreases

	s := engine.DefaultSettings()
	prev := decimal.Zero
	for sqft := 300.0; sqft <= 6000; sqft += 150 {
		breakdown, err := engine.ComputePrice(
			engine.PropertyFacts{Sqft: sqft, Bedrooms: 2, Bathrooms: 1},
			engine.FrequencyWeekly, nil, s,
		)
		if err != nil {
			t.Fatalf("sqft=%v: unexpected error: %v", sqft, err)
		}
		if breakdown.BasePrice.LessThan(prev) {
			t.Fatalf("base price decreased at sqft=%v: %s < %s", sqft, breakdown.BasePrice, prev)
		}
		prev = breakdown.BasePrice
	}
}

func TestComputePrice_RejectsInvalidInput(t *testing.T) {
	s := engine.DefaultSettings()

	cases := []struct {
		name     string
		property engine.PropertyFacts
		freq     engine.Frequency
	}{
		{"zero sqft", engine.PropertyFacts{Sqft: 0, Bedrooms: 2, Bathrooms: 1}, engine.FrequencyWeekly},
		{"negative sqft", engine.PropertyFacts{Sqft: -100, Bedrooms: 2, Bathrooms: 1}, engine.FrequencyWeekly},
		{"zero bedrooms", engine.PropertyFacts{Sqft: 1000, Bedrooms: 0, Bathrooms: 1}, engine.FrequencyWeekly},
		{"quarter bathroom", engine.PropertyFacts{Sqft: 1000, Bedrooms: 2, Bathrooms: 1.25}, engine.FrequencyWeekly},
		{"unknown frequency", engine.PropertyFacts{Sqft: 1000, Bedrooms: 2, Bathrooms: 1}, engine.Frequency("daily")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.ComputePrice(tc.property, tc.freq, nil, s)
			if err == nil {
				t.Fatal("expected rejection, got nil error")
			}
			if !engine.IsClientError(err) {
				t.Errorf("expected a client error, got %v", err)
			}
		})
	}
}
