package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CANCELLATION FEE RULE
// =============================================================================
//
// Three ordered, non-overlapping bands on the time remaining before the
// job's slot starts:
//
//   >= 48h before        no fee
//   >= 24h and < 48h     flat late-cancellation fee
//   <  24h, or no-show   full job price
//
// Boundaries belong to the cheaper band: cancelling exactly 48h out is
// free, exactly 24h out costs the flat fee.

type CancellationBand string

const (
	CancelFree CancellationBand = "free"
	CancelLate CancellationBand = "late"
	CancelFull CancellationBand = "full"
)

// CancellationOutcome is the classified result for one cancellation.
type CancellationOutcome struct {
	Band CancellationBand
	Fee  decimal.Decimal
}

// Hour offsets from midnight for slot start times. Only used for fee-band
// arithmetic; the scheduling model itself never goes below half-day
// resolution.
const (
	morningStartHour   = 8
	afternoonStartHour = 13
)

// SlotStart returns the nominal start instant of a date+slot.
func SlotStart(d Date, slot Slot) time.Time {
	hour := morningStartHour
	if slot == SlotAfternoon {
		hour = afternoonStartHour
	}
	return d.Time().Add(time.Duration(hour) * time.Hour)
}

// ClassifyCancellation determines the fee for cancelling a job scheduled at
// scheduledStart, as of now. fullPrice is the job's full per-visit price.
func ClassifyCancellation(scheduledStart, now time.Time, fullPrice decimal.Decimal, s Settings) CancellationOutcome {
	remaining := scheduledStart.Sub(now)
	switch {
	case remaining >= 48*time.Hour:
		return CancellationOutcome{Band: CancelFree, Fee: decimal.Zero}
	case remaining >= 24*time.Hour:
		return CancellationOutcome{Band: CancelLate, Fee: s.LateCancelFee}
	default:
		return CancellationOutcome{Band: CancelFull, Fee: fullPrice}
	}
}

// NoShowFee returns the fee for a job the customer missed entirely: always
// the full price, same as the inner cancellation band.
func NoShowFee(fullPrice decimal.Decimal) CancellationOutcome {
	return CancellationOutcome{Band: CancelFull, Fee: fullPrice}
}
