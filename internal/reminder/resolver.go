// Package reminder implements the care-interval arithmetic shared by the
// server endpoints and the offline client: resolving the effective interval
// for a user plant, advancing due dates on confirmation, and bucketing due
// dates into calendar days for urgency classification.
package reminder

import (
	"math"
	"time"
)

// Day is the nominal length of one care-schedule day.
const Day = 24 * time.Hour

// Urgency classifies how soon a plant needs care, derived from the
// calendar-day bucket returned by DaysUntil.
type Urgency string

const (
	UrgencyOverdue  Urgency = "overdue"  // due date already passed
	UrgencyToday    Urgency = "today"    // due on the current calendar day
	UrgencyUrgent   Urgency = "urgent"   // due within the next two days
	UrgencyUpcoming Urgency = "upcoming" // due later than two days out
)

// EffectiveInterval resolves the interval (in days) that governs a user
// plant's care schedule. A per-plant override wins when it is present and
// positive; otherwise the catalog default applies. Validation of override
// values happens at the API boundary, not here.
func EffectiveInterval(custom *int, def int) int {
	if custom != nil && *custom > 0 {
		return *custom
	}
	return def
}

// Confirm records a care confirmation at time now and returns the new
// last/next pair. The next due date is always a full interval from now,
// regardless of how overdue the previous cycle was: a plant watered five
// days late starts a fresh cycle rather than catching up.
func Confirm(now time.Time, intervalDays int) (last, next time.Time) {
	return now, now.Add(time.Duration(intervalDays) * Day)
}

// ApplyReminder computes the next due date after the user changes an
// interval. Changing the interval resets the countdown to start from now,
// not from the last actual care event.
func ApplyReminder(now time.Time, intervalDays int) time.Time {
	return now.Add(time.Duration(intervalDays) * Day)
}

// DaysUntil returns the whole-day bucket between now and the next due date,
// comparing calendar start-of-day to calendar start-of-day rather than raw
// elapsed time. Negative means overdue by that many days, zero means due
// today, one means due tomorrow.
func DaysUntil(next, now time.Time) int {
	a := startOfDay(next)
	b := startOfDay(now.In(next.Location()))
	// Rounding absorbs DST transitions where a calendar day is not 24h.
	return int(math.Round(a.Sub(b).Hours() / 24))
}

// Classify maps a day bucket onto an urgency label.
func Classify(days int) Urgency {
	switch {
	case days < 0:
		return UrgencyOverdue
	case days == 0:
		return UrgencyToday
	case days <= 2:
		return UrgencyUrgent
	default:
		return UrgencyUpcoming
	}
}

// ConfirmAllowed reports whether the confirm (checkmark) action should be
// offered for a plant with the given day bucket: overdue, due today, or due
// tomorrow. This is a UX gate, not a server constraint.
func ConfirmAllowed(days int) bool {
	return days <= 1
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
