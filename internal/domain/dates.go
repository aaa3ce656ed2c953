/**
 * @description
 * Calendar-day helpers shared across the ledger, classifier, and scheduler.
 * Every value that represents a day rather than an instant is normalized to
 * midnight in one canonical timezone before it is stored or compared, so
 * pause-day counts and diet-day date matching stay consistent.
 */
package domain

import (
	"math"
	"time"
)

// DayOf normalizes t to midnight of its calendar day in loc.
func DayOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// WholeDaysBetween returns the number of whole calendar days from "from" to
// "to" in loc. Both instants are normalized to midnight first, so a pause
// opened on the 1st and closed on the 11th counts exactly 10 days regardless
// of the time of day either action happened. Negative when to precedes from.
func WholeDaysBetween(from, to time.Time, loc *time.Location) int {
	a := DayOf(from, loc)
	b := DayOf(to, loc)
	// Round instead of truncate so a DST shift inside the window cannot
	// drop a day.
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// AddMonths advances t by the given number of calendar months, keeping the
// day-of-month where the target month allows it (standard library overflow
// rules apply otherwise: Jan 31 + 1 month lands in early March).
func AddMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}
