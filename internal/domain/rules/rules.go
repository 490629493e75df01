// Package rules holds the pure calculations the rest of the system depends
// on: token numbering, wait and stay durations, stock health, expiry alerts
// and occupancy. Everything here is deterministic and side-effect free so it
// can be exercised exhaustively in tests and reused by repos, services and
// the dashboard without pulling in storage concerns.
package rules

import (
	"math"
	"time"
)

// NextToken returns the queue token to hand to the next patient checking in
// to a department on a given day. Tokens start at 1 and grow by one past the
// highest token already issued; gaps from cancellations are never reused.
func NextToken(existing []int) int {
	max := 0
	for _, t := range existing {
		if t > max {
			max = t
		}
	}
	return max + 1
}

// WaitTimeMinutes returns the whole minutes a patient has been waiting since
// check-in. Clock skew that would yield a negative wait is clamped to zero.
func WaitTimeMinutes(checkIn, now time.Time) int {
	mins := int(now.Sub(checkIn).Minutes())
	if mins < 0 {
		return 0
	}
	return mins
}

// StayDurationDays returns the length of an inpatient stay in days, counting
// any partial day as a full day. A same-day discharge still counts as 1.
func StayDurationDays(admitted, until time.Time) int {
	hours := until.Sub(admitted).Hours()
	days := int(math.Ceil(hours / 24))
	if days < 1 {
		return 1
	}
	return days
}

// AgeYears returns completed years between a date of birth and now.
func AgeYears(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	anniversary := dob.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// Stock status levels, ordered from worst to best.
const (
	StockCritical = "critical"
	StockLow      = "low"
	StockHealthy  = "healthy"
)

// StockStatus classifies an item's stock level against its minimum:
// at least double the minimum is healthy, at or above the minimum is low,
// anything below is critical. Items with no minimum are always healthy.
func StockStatus(current, minimum int) string {
	if current >= 2*minimum {
		return StockHealthy
	}
	if current >= minimum {
		return StockLow
	}
	return StockCritical
}

// IsExpiringSoon reports whether a batch expires within alertDays from now.
// Already-expired batches are not "expiring soon"; they are handled as
// expired stock separately.
func IsExpiringSoon(expiry, now time.Time, alertDays int) bool {
	days := int(math.Floor(expiry.Sub(now).Hours() / 24))
	return days >= 0 && days <= alertDays
}

// OccupancyRate returns bed occupancy as a whole percentage, rounding half
// up. A ward with no beds has zero occupancy.
func OccupancyRate(occupied, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(occupied) * 100 / float64(total)))
}
