// Package ledger enforces the rolling daily cap on points credited to a
// user. Days are counted in a fixed UTC-8 offset regardless of server or
// client locale; this intentionally does not track daylight saving, since
// changing it would move the observable daily reset.
package ledger

import (
	"time"

	"pomtime/internal/model"
)

const (
	// DailyLimit caps the points creditable to one user per calendar day.
	DailyLimit = 50

	// CheckInReward is the fixed daily check-in award.
	CheckInReward = 5

	dayFormat = "2006-01-02"
)

// Timezone is the fixed ledger day boundary, UTC-8 with no DST.
var Timezone = time.FixedZone("UTC-8", -8*60*60)

// Today returns the ledger-local calendar day for the given instant.
func Today(now time.Time) string {
	return now.In(Timezone).Format(dayFormat)
}

// Credit returns the portion of a proposed award actually creditable today
// together with the daily state to persist. Awards exceeding the remaining
// headroom are truncated, never rejected; a zero actual award is not an
// error. The last check-in date carries over untouched.
func Credit(state model.DailyPoints, proposed int, today string) (int, model.DailyPoints) {
	if proposed < 0 {
		proposed = 0
	}

	if state.Date != today {
		// Day rolled over; the cap resets.
		actual := min(proposed, DailyLimit)
		return actual, model.DailyPoints{
			Date:         today,
			PointsEarned: actual,
			LastCheckin:  state.LastCheckin,
		}
	}

	remaining := DailyLimit - state.PointsEarned
	if remaining < 0 {
		remaining = 0
	}
	actual := min(proposed, remaining)
	return actual, model.DailyPoints{
		Date:         today,
		PointsEarned: state.PointsEarned + actual,
		LastCheckin:  state.LastCheckin,
	}
}

// CheckedInToday reports whether the one-per-day check-in guard blocks a
// new check-in. This guard is independent of the points cap and is
// evaluated before the ledger is consulted.
func CheckedInToday(state model.DailyPoints, today string) bool {
	return state.LastCheckin == today
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
