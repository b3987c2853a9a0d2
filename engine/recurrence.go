/*
recurrence.go - Occurrence generation for recurring subscriptions

PURPOSE:
  Given a subscription's cadence and preferred weekday, produces the list of
  future dates to materialize as jobs, skipping dates that already have one.

STEPPING RULES:
  weekly    +7 days
  biweekly  +14 days
  monthly   advance to the next calendar month, then seek forward from the
            1st to the first occurrence of the preferred weekday

  Monthly cadence therefore lands on the FIRST matching weekday of each
  month rather than preserving the ordinal ("3rd Monday") or the
  day-of-month. Visit spacing varies between 4 and 5 weeks accordingly.

GUARANTEES:
  - Output is ascending, within [startDate, startDate + monthsAhead months]
  - Never emits a date already present in the existing job set
  - Rejects onetime frequency and missing preferred weekday outright:
    generating jobs on the wrong day is a business-visible error, not a
    cosmetic one, so there is no silent default.
*/
package engine

import (
	"time"
)

// RecurrenceInput describes what to generate. PreferredWeekday is a pointer
// because Sunday is a valid zero value; nil means "not provided".
type RecurrenceInput struct {
	Frequency        Frequency
	PreferredWeekday *time.Weekday
	PreferredSlot    Slot
	MonthsAhead      int
}

// GenerateOccurrences produces the future occurrence dates for a
// subscription. existingJobDates is the customer's already-scheduled job
// set; any generated date found there is skipped, never duplicated.
func GenerateOccurrences(input RecurrenceInput, existingJobDates []Date, startDate Date) ([]Date, error) {
	if !input.Frequency.Valid() {
		return nil, &InvalidInputError{Field: "frequency", Reason: "unknown value " + string(input.Frequency)}
	}
	if input.Frequency == FrequencyOnetime {
		return nil, ErrOnetimeRecurrence
	}
	if input.PreferredWeekday == nil {
		return nil, ErrMissingPreferredDay
	}
	if *input.PreferredWeekday < time.Sunday || *input.PreferredWeekday > time.Saturday {
		return nil, &InvalidInputError{Field: "preferred_day_of_week", Reason: "out of range"}
	}
	if input.MonthsAhead <= 0 {
		return nil, &InvalidInputError{Field: "months_ahead", Reason: "must be positive"}
	}

	weekday := *input.PreferredWeekday
	horizon := startDate.AddMonths(input.MonthsAhead)

	existing := make(map[string]struct{}, len(existingJobDates))
	for _, d := range existingJobDates {
		existing[d.String()] = struct{}{}
	}

	var out []Date
	cursor := startDate.NextWeekday(weekday)
	for cursor.BeforeOrEqual(horizon) {
		if _, taken := existing[cursor.String()]; !taken {
			out = append(out, cursor)
		}
		cursor = advance(cursor, input.Frequency, weekday)
	}
	return out, nil
}

// advance steps the cursor to the next occurrence. The cursor is always on
// the preferred weekday on entry, and stays on it: fixed intervals are
// multiples of 7, and the monthly path re-seeks the weekday explicitly.
func advance(cursor Date, frequency Frequency, weekday time.Weekday) Date {
	if days := frequency.IntervalDays(); days > 0 {
		return cursor.AddDays(days)
	}
	// Monthly: first matching weekday of the next calendar month.
	next := StartOfMonth(cursor.Year(), cursor.Month()).AddMonths(1)
	return next.NextWeekday(weekday)
}
