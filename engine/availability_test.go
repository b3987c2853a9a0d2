package engine_test

import (
	"testing"
	"time"

	"github.com/tidyhive/booking-engine/engine"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func date(s string) engine.Date { return engine.MustParseDate(s) }

func roster(ids ...string) []engine.CleanerFact {
	out := make([]engine.CleanerFact, len(ids))
	for i, id := range ids {
		out[i] = engine.CleanerFact{ID: id, Active: true}
	}
	return out
}

func wideWindow() engine.Window {
	return engine.Window{Earliest: date("2025-01-01"), Latest: date("2025-12-31")}
}

// =============================================================================
// BOOKABLE WINDOW
// =============================================================================

func TestBookableWindow_LeadAndHorizon(t *testing.T) {
	w := engine.BookableWindow(date("2025-06-10"), 1, 60)

	if !w.Earliest.Equal(date("2025-06-11")) {
		t.Errorf("expected earliest 2025-06-11, got %s", w.Earliest)
	}
	if !w.Latest.Equal(date("2025-08-09")) {
		t.Errorf("expected latest 2025-08-09, got %s", w.Latest)
	}
	if w.Contains(date("2025-06-10")) {
		t.Error("today should be outside the window with a 1-day lead")
	}
	if !w.Contains(date("2025-06-11")) || !w.Contains(date("2025-08-09")) {
		t.Error("window boundaries should be inclusive")
	}
}

// =============================================================================
// SLOT CAPACITY
// =============================================================================

func TestSlotFor_TimeOffAndBookingConsumeCapacity(t *testing.T) {
	// GIVEN: 2 active cleaners, 1 on time-off that day, 1 existing
	//        non-cancelled morning job
	// WHEN: Computing both slots for the date
	// THEN: morning capacity=1 booked=1 remaining=0 unavailable;
	//       afternoon capacity=1 booked=0 available

	day := date("2025-06-16")
	cleaners := roster("c1", "c2")
	timeOff := []engine.TimeOffFact{{CleanerID: "c2", Start: date("2025-06-15"), End: date("2025-06-17")}}
	jobs := []engine.JobFact{{Date: day, Slot: engine.SlotMorning, Status: engine.JobScheduled}}

	morning := engine.SlotFor(day, engine.SlotMorning, jobs, cleaners, timeOff)
	if morning.Capacity != 1 || morning.Booked != 1 || morning.Remaining != 0 || morning.Available {
		t.Errorf("morning: expected capacity=1 booked=1 remaining=0 unavailable, got %+v", morning)
	}

	afternoon := engine.SlotFor(day, engine.SlotAfternoon, jobs, cleaners, timeOff)
	if afternoon.Capacity != 1 || afternoon.Booked != 0 || !afternoon.Available {
		t.Errorf("afternoon: expected capacity=1 booked=0 available, got %+v", afternoon)
	}
}

func TestSlotFor_CancelledJobsFreeTheSlot(t *testing.T) {
	day := date("2025-06-16")
	jobs := []engine.JobFact{
		{Date: day, Slot: engine.SlotMorning, Status: engine.JobCancelled},
		{Date: day, Slot: engine.SlotMorning, Status: engine.JobNoShow},
	}

	avail := engine.SlotFor(day, engine.SlotMorning, jobs, roster("c1"), nil)
	if avail.Booked != 0 || avail.Remaining != 1 {
		t.Errorf("cancelled/no-show jobs should not consume capacity: %+v", avail)
	}
}

func TestSlotFor_RemainingNeverNegative(t *testing.T) {
	// GIVEN: More booked jobs than capacity (a historical overbooking)
	// WHEN: Computing the slot
	// THEN: remaining clamps at 0 and adding jobs only ever decreases it

	day := date("2025-06-16")
	cleaners := roster("c1")
	var jobs []engine.JobFact

	prev := 1
	for i := 0; i < 4; i++ {
		jobs = append(jobs, engine.JobFact{Date: day, Slot: engine.SlotMorning, Status: engine.JobScheduled})
		avail := engine.SlotFor(day, engine.SlotMorning, jobs, cleaners, nil)
		if avail.Remaining < 0 {
			t.Fatalf("remaining went negative: %+v", avail)
		}
		if avail.Remaining > prev {
			t.Fatalf("remaining increased after adding a job: %d -> %d", prev, avail.Remaining)
		}
		prev = avail.Remaining
	}
}

func TestSlotCapacity_InactiveAndTimeOffContributeZero(t *testing.T) {
	day := date("2025-03-10")
	cleaners := []engine.CleanerFact{
		{ID: "active", Active: true},
		{ID: "inactive", Active: false},
		{ID: "on-leave", Active: true},
	}
	timeOff := []engine.TimeOffFact{{CleanerID: "on-leave", Start: day, End: day}}

	if got := engine.SlotCapacity(day, cleaners, timeOff); got != 1 {
		t.Errorf("expected capacity 1, got %d", got)
	}
	// Day after the leave ends, capacity recovers.
	if got := engine.SlotCapacity(day.AddDays(1), cleaners, timeOff); got != 2 {
		t.Errorf("expected capacity 2 after leave, got %d", got)
	}
}

// =============================================================================
// CHECK SLOT
// =============================================================================

func TestCheckSlot_OutsideWindowRejected(t *testing.T) {
	w := engine.BookableWindow(date("2025-06-10"), 1, 30)

	err := engine.CheckSlot(date("2025-06-10"), engine.SlotMorning, w, nil, roster("c1"), nil)
	if err != engine.ErrOutsideWindow {
		t.Errorf("expected ErrOutsideWindow, got %v", err)
	}
}

func TestCheckSlot_FullSlotSurfacesCapacityExhausted(t *testing.T) {
	day := date("2025-06-16")
	jobs := []engine.JobFact{{Date: day, Slot: engine.SlotMorning, Status: engine.JobScheduled}}

	err := engine.CheckSlot(day, engine.SlotMorning, wideWindow(), jobs, roster("c1"), nil)
	if !engine.IsUnavailable(err) {
		t.Errorf("expected an unavailable classification, got %v", err)
	}
}

// =============================================================================
// CALENDAR GRID
// =============================================================================

func TestBuildCalendarMonth_GridShapeAndPadding(t *testing.T) {
	// GIVEN: June 2025 (first day is a Sunday, 30 days)
	// WHEN: Building the grid
	// THEN: 5 complete Sunday-first weeks; cells outside June are padding
	//       with no slot data

	cal := engine.BuildCalendarMonth(2025, time.June, nil, roster("c1"), nil, wideWindow())

	if len(cal.Weeks) != 5 {
		t.Fatalf("expected 5 weeks, got %d", len(cal.Weeks))
	}
	for _, week := range cal.Weeks {
		if len(week) != 7 {
			t.Fatalf("expected 7 cells per week, got %d", len(week))
		}
		if week[0].Date.Weekday() != time.Sunday {
			t.Errorf("weeks must start on Sunday, got %s", week[0].Date.Weekday())
		}
	}

	first := cal.Weeks[0][0]
	if !first.InMonth || !first.Date.Equal(date("2025-06-01")) {
		t.Errorf("June 2025 starts on a Sunday; expected in-month first cell, got %+v", first)
	}

	// The last week runs into July: padding cells.
	last := cal.Weeks[4][6]
	if last.InMonth {
		t.Errorf("expected padding cell at end of grid, got in-month %s", last.Date)
	}
	if last.Bookable || last.HasAvailableSlots || last.Slots != nil {
		t.Errorf("padding cells must carry no availability: %+v", last)
	}
}

func TestBuildCalendarMonth_WindowGatesBookable(t *testing.T) {
	// GIVEN: A window covering only June 10-20
	// WHEN: Building June
	// THEN: Days outside the window are not bookable even with free capacity

	w := engine.Window{Earliest: date("2025-06-10"), Latest: date("2025-06-20")}
	cal := engine.BuildCalendarMonth(2025, time.June, nil, roster("c1"), nil, w)

	for _, week := range cal.Weeks {
		for _, cell := range week {
			if !cell.InMonth {
				continue
			}
			want := w.Contains(cell.Date)
			if cell.Bookable != want {
				t.Errorf("%s: bookable=%v, want %v", cell.Date, cell.Bookable, want)
			}
		}
	}
}

func TestBuildCalendarMonth_SlotArithmeticPerDay(t *testing.T) {
	// GIVEN: Two cleaners, one morning job on June 16
	// WHEN: Building June
	// THEN: That day's morning shows 2/1/1 and the day still has availability

	day := date("2025-06-16")
	jobs := []engine.JobFact{{Date: day, Slot: engine.SlotMorning, Status: engine.JobScheduled}}
	cal := engine.BuildCalendarMonth(2025, time.June, jobs, roster("c1", "c2"), nil, wideWindow())

	var cell engine.DayCell
	for _, week := range cal.Weeks {
		for _, c := range week {
			if c.InMonth && c.Date.Equal(day) {
				cell = c
			}
		}
	}

	morning := cell.Slots[engine.SlotMorning]
	if morning.Capacity != 2 || morning.Booked != 1 || morning.Remaining != 1 {
		t.Errorf("expected morning 2/1/1, got %+v", morning)
	}
	if !cell.HasAvailableSlots {
		t.Error("day with a free slot must report availability")
	}
}
