package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidyhive/booking-engine/booking"
	"github.com/tidyhive/booking-engine/engine"
	"github.com/tidyhive/booking-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testJob(id string, date engine.Date, slot engine.Slot) booking.Job {
	return booking.Job{
		ID:              id,
		CustomerID:      "cust-1",
		Date:            date,
		Slot:            slot,
		Status:          engine.JobScheduled,
		Price:           decimal.NewFromInt(128),
		DurationMinutes: 120,
		CreatedAt:       time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// ROUND TRIPS
// =============================================================================

func TestSQLite_JobRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveCleaner(ctx, booking.Cleaner{ID: "c1", Name: "Ana", Active: true}))

	in := testJob("j1", engine.MustParseDate("2025-06-16"), engine.SlotMorning)
	in.IsFirstClean = true
	require.NoError(t, store.InsertJob(ctx, in))

	out, err := store.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.True(t, out.Date.Equal(in.Date))
	assert.Equal(t, in.Slot, out.Slot)
	assert.Equal(t, in.Status, out.Status)
	assert.True(t, out.Price.Equal(in.Price))
	assert.Equal(t, in.DurationMinutes, out.DurationMinutes)
	assert.True(t, out.IsFirstClean)

	// Same ID into a different slot trips the primary key, not capacity.
	dup := testJob("j1", in.Date, engine.SlotAfternoon)
	require.ErrorIs(t, store.InsertJob(ctx, dup), booking.ErrDuplicateID)
}

func TestSQLite_SubscriptionRoundTrip_WeekdayPointer(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sunday := time.Sunday // zero value must survive the round trip
	in := booking.Subscription{
		ID:               "sub-1",
		CustomerID:       "cust-1",
		Frequency:        engine.FrequencyWeekly,
		PreferredWeekday: &sunday,
		PreferredSlot:    engine.SlotAfternoon,
		MonthsAhead:      3,
		Property:         engine.PropertyFacts{Sqft: 1800, Bedrooms: 3, Bathrooms: 2.5},
		Active:           true,
		CreatedAt:        time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveSubscription(ctx, in))

	out, err := store.GetSubscription(ctx, "sub-1")
	require.NoError(t, err)
	require.NotNil(t, out.PreferredWeekday)
	assert.Equal(t, time.Sunday, *out.PreferredWeekday)
	assert.Equal(t, in.Frequency, out.Frequency)
	assert.Equal(t, in.Property, out.Property)

	// Onetime subscription with no weekday stays nil.
	in.ID = "sub-2"
	in.Frequency = engine.FrequencyOnetime
	in.PreferredWeekday = nil
	require.NoError(t, store.SaveSubscription(ctx, in))
	out, err = store.GetSubscription(ctx, "sub-2")
	require.NoError(t, err)
	assert.Nil(t, out.PreferredWeekday)
}

// =============================================================================
// CAPACITY CONSTRAINT
// =============================================================================

func TestSQLite_InsertJob_ConditionalOnCapacity(t *testing.T) {
	// GIVEN: One active cleaner, one on time-off for the date
	// WHEN: Inserting jobs into the same slot
	// THEN: Only one insert wins; the loser sees ErrSlotConflict

	store := newTestStore(t)
	ctx := context.Background()
	day := engine.MustParseDate("2025-06-16")

	require.NoError(t, store.SaveCleaner(ctx, booking.Cleaner{ID: "c1", Name: "Ana", Active: true}))
	require.NoError(t, store.SaveCleaner(ctx, booking.Cleaner{ID: "c2", Name: "Bo", Active: true}))
	require.NoError(t, store.SaveTimeOff(ctx, booking.TimeOff{
		ID: "t1", CleanerID: "c2", Start: day, End: day, Reason: "vacation",
	}))

	require.NoError(t, store.InsertJob(ctx, testJob("j1", day, engine.SlotMorning)))

	err := store.InsertJob(ctx, testJob("j2", day, engine.SlotMorning))
	require.ErrorIs(t, err, booking.ErrSlotConflict)

	// Cancelling releases the unit.
	require.NoError(t, store.UpdateJobStatus(ctx, "j1", engine.JobCancelled))
	require.NoError(t, store.InsertJob(ctx, testJob("j3", day, engine.SlotMorning)))
}

func TestSQLite_InsertJob_InactiveCleanersDontCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveCleaner(ctx, booking.Cleaner{ID: "c1", Name: "Ana", Active: false}))

	err := store.InsertJob(ctx, testJob("j1", engine.MustParseDate("2025-06-16"), engine.SlotMorning))
	require.ErrorIs(t, err, booking.ErrSlotConflict)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestSQLite_ListJobs_DateRangeLexicalOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveCleaner(ctx, booking.Cleaner{ID: "c1", Name: "Ana", Active: true}))

	for i, d := range []string{"2025-06-30", "2025-07-01", "2025-06-01"} {
		j := testJob(string(rune('a'+i)), engine.MustParseDate(d), engine.SlotMorning)
		require.NoError(t, store.InsertJob(ctx, j))
	}

	jobs, err := store.ListJobs(ctx, engine.MustParseDate("2025-06-01"), engine.MustParseDate("2025-06-30"))
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.True(t, jobs[0].Date.Before(jobs[1].Date), "jobs must come back in date order")
}

func TestSQLite_SettingsRoundTripThroughSchema(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSetting(ctx, engine.KeyBaseRatePer500, 45.0))
	require.NoError(t, store.SaveSetting(ctx, "free_text_note", "not numeric"))

	raw, err := store.LoadSettings(ctx)
	require.NoError(t, err)

	s := engine.SettingsFromMap(raw)
	assert.True(t, s.BaseRatePer500.Equal(decimal.NewFromInt(45)))
	// The non-numeric stray key is carried as a string and ignored by the
	// schema without error.
	assert.Equal(t, "not numeric", raw["free_text_note"])
}

func TestSQLite_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetJob(ctx, "nope")
	require.ErrorIs(t, err, booking.ErrNotFound)
	_, err = store.GetSubscription(ctx, "nope")
	require.ErrorIs(t, err, booking.ErrNotFound)
	err = store.UpdateJobStatus(ctx, "nope", engine.JobCancelled)
	require.ErrorIs(t, err, booking.ErrNotFound)
	err = store.SaveTimeOff(ctx, booking.TimeOff{ID: "t1", CleanerID: "ghost"})
	require.ErrorIs(t, err, booking.ErrNotFound)
}
