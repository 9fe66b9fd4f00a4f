/*
frequency_test.go - Behavior tests for the template-to-date predicate

ORGANIZATION:
  1. Status gating
  2. Daily / Weekly / Monthly matching
  3. The monthly 1-28 exclusion
  4. Defensive defaults

READING THESE TESTS:
  Each test has:
  - A descriptive name that states the behavior
  - GIVEN/WHEN/THEN comments explaining the scenario
*/
package household_test

import (
	"testing"

	"github.com/warp/household-engine/household"
)

func weeklyTemplate(due string) household.RecurringTask {
	return household.RecurringTask{
		TaskID:    "rt-weekly",
		TaskName:  "Water plants",
		Frequency: household.FreqWeekly,
		Due:       due,
		Status:    household.TemplateActive,
	}
}

// =============================================================================
// STATUS GATING
// =============================================================================

func TestInactiveTemplateNeverMatches(t *testing.T) {
	// GIVEN a daily template that is Inactive
	rt := household.RecurringTask{
		TaskID:    "rt-1",
		Frequency: household.FreqDaily,
		Due:       "Morning",
		Status:    household.TemplateInactive,
	}

	// THEN it matches no date at all
	if household.Matches(rt, "2024-08-05") {
		t.Fatal("inactive template must not match any date")
	}
}

// =============================================================================
// DAILY
// =============================================================================

func TestDailyMatchesEveryDate(t *testing.T) {
	// GIVEN an active daily template
	rt := household.RecurringTask{
		TaskID:    "rt-1",
		Frequency: household.FreqDaily,
		Due:       "Evening",
		Status:    household.TemplateActive,
	}

	// THEN it matches arbitrary dates
	for _, date := range []household.CivilDate{"2024-01-01", "2024-02-29", "2024-08-05", "2025-12-31"} {
		if !household.Matches(rt, date) {
			t.Fatalf("daily template must match %s", date)
		}
	}
}

// =============================================================================
// WEEKLY
// =============================================================================

func TestWeeklyMatchesOnlyItsWeekday(t *testing.T) {
	// GIVEN a weekly template due on Sunday
	rt := weeklyTemplate("Sunday")

	// WHEN 2024-08-04 is a Sunday and 2024-08-05 is a Monday
	// THEN only the Sunday matches
	if !household.Matches(rt, "2024-08-04") {
		t.Fatal("Sunday template must match 2024-08-04 (a Sunday)")
	}
	if household.Matches(rt, "2024-08-05") {
		t.Fatal("Sunday template must not match 2024-08-05 (a Monday)")
	}
}

func TestWeeklyMatchingIsCaseInsensitive(t *testing.T) {
	// GIVEN weekly templates with differently-cased due values
	for _, due := range []string{"sunday", "SUNDAY", "Sunday"} {
		if !household.Matches(weeklyTemplate(due), "2024-08-04") {
			t.Fatalf("due %q must match a Sunday regardless of case", due)
		}
	}
}

// =============================================================================
// MONTHLY
// =============================================================================

func TestMonthlyMatchesOnlyItsDayOfMonth(t *testing.T) {
	// GIVEN a monthly template due on the 15th
	rt := household.RecurringTask{
		TaskID:    "rt-monthly",
		Frequency: household.FreqMonthly,
		Due:       "15",
		Status:    household.TemplateActive,
	}

	// THEN it matches the 15th of any month and nothing else
	if !household.Matches(rt, "2024-08-15") {
		t.Fatal("monthly due 15 must match 2024-08-15")
	}
	if !household.Matches(rt, "2024-02-15") {
		t.Fatal("monthly due 15 must match 2024-02-15")
	}
	if household.Matches(rt, "2024-08-14") {
		t.Fatal("monthly due 15 must not match 2024-08-14")
	}
}

func TestMonthlyDueOutsideRangeNeverMatches(t *testing.T) {
	// GIVEN a monthly template whose due day can't exist in every month
	rt := household.RecurringTask{
		TaskID:    "rt-monthly-30",
		Frequency: household.FreqMonthly,
		Due:       "30",
		Status:    household.TemplateActive,
	}

	// THEN it never matches, not even on an actual 30th
	for _, date := range []household.CivilDate{"2024-01-30", "2024-04-30", "2024-08-30"} {
		if household.Matches(rt, date) {
			t.Fatalf("monthly due 30 must never match, matched %s", date)
		}
	}
}

func TestMonthlyDueMustBeNumeric(t *testing.T) {
	// GIVEN a monthly template with a non-numeric due value
	rt := household.RecurringTask{
		TaskID:    "rt-monthly-bad",
		Frequency: household.FreqMonthly,
		Due:       "fifteenth",
		Status:    household.TemplateActive,
	}

	// THEN it never matches and never panics
	if household.Matches(rt, "2024-08-15") {
		t.Fatal("non-numeric monthly due must not match")
	}
}

// =============================================================================
// DEFENSIVE DEFAULTS
// =============================================================================

func TestUnknownFrequencyNeverMatches(t *testing.T) {
	// GIVEN a template carrying a frequency value the engine doesn't know
	rt := household.RecurringTask{
		TaskID:    "rt-odd",
		Frequency: household.Frequency("Fortnightly"),
		Due:       "Monday",
		Status:    household.TemplateActive,
	}

	// THEN the default arm rejects it
	if household.Matches(rt, "2024-08-05") {
		t.Fatal("unknown frequency must never match")
	}
}
