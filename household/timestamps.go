/*
timestamps.go - Civil date to UTC instant computation

PURPOSE:
  Pure functions converting a civil date plus a symbolic due-time label
  into the three UTC instants of an instance's lifecycle: due, overdue,
  and clear. All arithmetic is done in the household's local calendar so
  daylight-saving transitions are absorbed correctly; the results are
  always UTC.

ALGORITHM:
  1. Localize the civil date at local midnight in the household timezone.
  2. Map the due-time label to a local time-of-day (see label table).
  3. Convert that local instant to UTC -> the due instant.
  4. overdue_at = due instant + fixed offset per overdue_when label.
  5. clear_at   = local midnight of date+1, converted to UTC.

LABEL TABLE (case-insensitive substring match, fixed priority order):
  morning   -> 12:00
  lunch     -> 13:00
  afternoon -> 18:00
  evening   -> 23:00
  night     -> 02:00 of the NEXT day
  "H:MM AM/PM" tokens are parsed directly; anything else falls back to
  morning. Every branch has a total default - this file never errors.

SEE ALSO:
  - generate.go: Calls Timestamps() when materializing instances
  - types.go: OverdueWhen labels
*/
package household

import (
	"strings"
	"time"
)

// DefaultTimezone is the household's fixed local timezone. The kitchen
// tablet lives in the US Eastern timezone; this is household-wide, not
// configurable per request.
const DefaultTimezone = "America/New_York"

// Schedule computes lifecycle instants in a fixed household timezone.
type Schedule struct {
	loc *time.Location
}

// NewSchedule creates a Schedule for the named timezone. An unknown
// name falls back to UTC rather than failing: timestamp computation
// must stay total.
func NewSchedule(timezone string) *Schedule {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Schedule{loc: loc}
}

// NewDefaultSchedule creates a Schedule in the household timezone.
func NewDefaultSchedule() *Schedule { return NewSchedule(DefaultTimezone) }

// Location returns the schedule's timezone.
func (s *Schedule) Location() *time.Location { return s.loc }

// Timestamps is the bundle of computed lifecycle instants, all UTC.
type Timestamps struct {
	Due       time.Time
	OverdueAt time.Time
	ClearAt   time.Time
}

// Compute derives the due/overdue/clear instants for an instance of the
// given civil date, due-time label, and grace period.
func (s *Schedule) Compute(date CivilDate, dueTime string, overdueWhen OverdueWhen) Timestamps {
	due := s.DueInstant(date, dueTime)
	return Timestamps{
		Due:       due,
		OverdueAt: due.Add(overdueOffset(overdueWhen)),
		ClearAt:   s.ClearInstant(date),
	}
}

// DueInstant converts a civil date and due-time label to the UTC due instant.
func (s *Schedule) DueInstant(date CivilDate, dueTime string) time.Time {
	midnight := date.Time(s.loc)
	hour, minute, nextDay := resolveDueLabel(dueTime)

	day := midnight
	if nextDay {
		day = day.AddDate(0, 0, 1)
	}
	// time.Date normalizes through DST gaps, so 02:00 on a spring-forward
	// day lands on the civil instant the household would expect.
	local := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, s.loc)
	return local.UTC()
}

// ClearInstant returns local midnight of the day after date, in UTC.
func (s *Schedule) ClearInstant(date CivilDate) time.Time {
	return date.AddDays(1).Time(s.loc).UTC()
}

// resolveDueLabel maps a due-time label to (hour, minute, nextDay).
// Matching is case-insensitive substring matching in a fixed priority
// order; explicit clock tokens parse directly; everything else is Morning.
func resolveDueLabel(label string) (hour, minute int, nextDay bool) {
	lower := strings.ToLower(strings.TrimSpace(label))

	switch {
	case strings.Contains(lower, "morning"):
		return 12, 0, false
	case strings.Contains(lower, "lunch"):
		return 13, 0, false
	case strings.Contains(lower, "afternoon"):
		return 18, 0, false
	case strings.Contains(lower, "evening"):
		return 23, 0, false
	case strings.Contains(lower, "night"):
		// Night belongs to the next civil day (2 AM).
		return 2, 0, true
	}

	// Explicit "H:MM AM/PM" token.
	for _, layout := range []string{"3:04 PM", "3:04PM", "15:04"} {
		if t, err := time.Parse(layout, strings.ToUpper(strings.TrimSpace(label))); err == nil {
			return t.Hour(), t.Minute(), false
		}
	}

	// Unrecognized labels default to Morning.
	return 12, 0, false
}

// overdueOffset maps an overdue_when label to its fixed offset from the
// due instant. Unrecognized labels default to one hour.
func overdueOffset(o OverdueWhen) time.Duration {
	switch o {
	case OverdueImmediate:
		return 0
	case Overdue1Hour:
		return time.Hour
	case Overdue6Hours:
		return 6 * time.Hour
	case Overdue1Day:
		return 24 * time.Hour
	case Overdue3Days:
		return 72 * time.Hour
	case Overdue7Days:
		return 168 * time.Hour
	default:
		return time.Hour
	}
}
