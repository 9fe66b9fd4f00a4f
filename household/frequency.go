/*
frequency.go - Pure predicate deciding which templates apply to a date

PURPOSE:
  Given one recurring template and one civil target date, decide whether
  the template should produce an instance on that date. This predicate
  is pure and unit-testable with no storage involved.

RULES (in order):
  - status != Active        -> never matches
  - Daily                   -> always matches
  - Weekly                  -> due equals the target weekday name (case-insensitive)
  - Monthly                 -> due parses as an int in [1,28] equal to day-of-month;
                               parse failures and out-of-range values never match
  - any other frequency     -> never matches (defensive default)

  Monthly templates with due 29-31 exist in user data but are treated as
  permanently non-matching, not as write-time errors. Rejections are
  logged, not raised: templates are user-editable data the engine must
  tolerate.

SEE ALSO:
  - generate.go: Runs this predicate over the active template set
*/
package household

import (
	"log"
	"strconv"
	"strings"
)

// Matches reports whether the template should produce an instance on date.
func Matches(rt RecurringTask, date CivilDate) bool {
	if rt.Status != TemplateActive {
		return false
	}

	switch rt.Frequency {
	case FreqDaily:
		return true

	case FreqWeekly:
		return strings.EqualFold(rt.Due, date.Weekday())

	case FreqMonthly:
		day, err := parseMonthlyDue(rt.Due)
		if err != nil {
			log.Printf("[Frequency] template %s: monthly due %q is not a number, skipping", rt.TaskID, rt.Due)
			return false
		}
		if day < 1 || day > 28 {
			// 1-28 is valid in every month; 29-31 would silently skip
			// February, so the whole range is excluded.
			log.Printf("[Frequency] template %s: monthly due %d outside 1-28, skipping", rt.TaskID, day)
			return false
		}
		return date.DayOfMonth() == day

	default:
		log.Printf("[Frequency] template %s: unknown frequency %q, skipping", rt.TaskID, rt.Frequency)
		return false
	}
}

func parseMonthlyDue(due string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(due))
}

func isWeekdayName(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		return true
	default:
		return false
	}
}
