/*
availability.go - Slot capacity and calendar grid computation

PURPOSE:
  Computes which dates and half-day slots are bookable given the cleaner
  roster, their time-off intervals, and already-scheduled jobs.

MODEL:
  Capacity is a per-date, per-slot count: the number of active cleaners not
  on time-off that day. Each non-cancelled job on a date+slot consumes one
  unit. remaining = max(0, capacity - booked). This is deliberately NOT a
  bin-packing or routing solver - one job, one cleaner-slot unit.

BOOKABLE WINDOW:
  Independent of capacity, a date is only bookable between a minimum lead
  time and a maximum horizon from "now". Dates outside the window are never
  bookable no matter how many cleaners are free.

GRID SHAPE:
  BuildCalendarMonth emits complete Sunday-first weeks. Cells from the
  adjacent months are padding: present for layout, non-interactive, with no
  slot data.

RACE NOTE:
  The inputs are snapshots from a shared store. If two booking attempts race
  for the last unit, this computation cannot prevent the double-booking; the
  store's conditional insert must reject the loser at write time.
*/
package engine

import (
	"time"
)

// =============================================================================
// BOOKABLE WINDOW
// =============================================================================

// Window is the inclusive date range within which a slot may be scheduled.
type Window struct {
	Earliest Date
	Latest   Date
}

// Contains reports whether d is inside the window.
func (w Window) Contains(d Date) bool {
	return w.Earliest.BeforeOrEqual(d) && d.BeforeOrEqual(w.Latest)
}

// BookableWindow computes the earliest and latest bookable dates from a
// reference date. leadDays and maxDays are whole days.
func BookableWindow(now Date, leadDays, maxDays int) Window {
	return Window{
		Earliest: now.AddDays(leadDays),
		Latest:   now.AddDays(maxDays),
	}
}

// =============================================================================
// SLOT CAPACITY
// =============================================================================

// SlotCapacity counts the active cleaners available on a date: active flag
// set and no time-off interval covering the day. Time-off zeroes a cleaner's
// contribution regardless of active status.
func SlotCapacity(d Date, cleaners []CleanerFact, timeOff []TimeOffFact) int {
	capacity := 0
	for _, c := range cleaners {
		if !c.Active {
			continue
		}
		onLeave := false
		for _, t := range timeOff {
			if t.CleanerID == c.ID && t.Covers(d) {
				onLeave = true
				break
			}
		}
		if !onLeave {
			capacity++
		}
	}
	return capacity
}

// SlotFor computes the availability state for a single date+slot.
func SlotFor(d Date, slot Slot, jobs []JobFact, cleaners []CleanerFact, timeOff []TimeOffFact) SlotAvailability {
	capacity := SlotCapacity(d, cleaners, timeOff)
	booked := 0
	for _, j := range jobs {
		if j.Date.Equal(d) && j.Slot == slot && j.Status.ConsumesCapacity() {
			booked++
		}
	}
	remaining := capacity - booked
	if remaining < 0 {
		remaining = 0
	}
	return SlotAvailability{
		Capacity:  capacity,
		Booked:    booked,
		Remaining: remaining,
		Available: remaining > 0,
	}
}

// CheckSlot validates that a specific date+slot can take one more booking.
// Returns ErrOutsideWindow or a SlotUnavailableError; nil means bookable at
// the time of the snapshot (the store still arbitrates the write).
func CheckSlot(d Date, slot Slot, window Window, jobs []JobFact, cleaners []CleanerFact, timeOff []TimeOffFact) error {
	if !slot.Valid() {
		return &InvalidInputError{Field: "slot", Reason: "unknown value " + string(slot)}
	}
	if !window.Contains(d) {
		return ErrOutsideWindow
	}
	avail := SlotFor(d, slot, jobs, cleaners, timeOff)
	if !avail.Available {
		return &SlotUnavailableError{Date: d, Slot: slot, Capacity: avail.Capacity, Booked: avail.Booked}
	}
	return nil
}

// =============================================================================
// CALENDAR GRID
// =============================================================================

// BuildCalendarMonth computes the month grid for the booking calendar.
// In-window, in-month cells carry per-slot availability; padding cells from
// adjacent months carry nothing.
func BuildCalendarMonth(year int, month time.Month, jobs []JobFact, cleaners []CleanerFact, timeOff []TimeOffFact, window Window) CalendarMonth {
	first := StartOfMonth(year, month)
	last := EndOfMonth(year, month)

	// Back up to the Sunday on or before the 1st.
	cursor := first.AddDays(-int(first.Weekday()))

	cal := CalendarMonth{Year: year, Month: int(month)}
	for cursor.BeforeOrEqual(last) {
		week := make([]DayCell, 0, 7)
		for i := 0; i < 7; i++ {
			week = append(week, dayCell(cursor, year, month, jobs, cleaners, timeOff, window))
			cursor = cursor.AddDays(1)
		}
		cal.Weeks = append(cal.Weeks, week)
	}
	return cal
}

func dayCell(d Date, year int, month time.Month, jobs []JobFact, cleaners []CleanerFact, timeOff []TimeOffFact, window Window) DayCell {
	inMonth := d.Year() == year && d.Month() == month
	cell := DayCell{Date: d, InMonth: inMonth}
	if !inMonth {
		return cell
	}

	cell.Bookable = window.Contains(d)
	cell.Slots = make(map[Slot]SlotAvailability, 2)
	for _, slot := range Slots() {
		avail := SlotFor(d, slot, jobs, cleaners, timeOff)
		cell.Slots[slot] = avail
		if avail.Available {
			cell.HasAvailableSlots = true
		}
	}
	return cell
}
