/*
Package household provides the core task lifecycle engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking
  household chores and medication reminders. Two kinds of records exist:
  reusable recurring templates ("take pills every morning") and daily
  instances materialized from those templates for a specific calendar
  date, carrying a time-bounded lifecycle.

KEY CONCEPTS IN THIS FILE (types.go):
  - RecurringTask: A template describing when a task should recur
  - DailyTask: A single day's materialized occurrence of a template
  - Frequency/Status/Category: Closed enumerations with defensive defaults
  - CivilDate: A YYYY-MM-DD calendar date in the household timezone

DESIGN PRINCIPLES:
  1. UTC persistence: Every instant is stored as a UTC timestamp;
     only the household's civil calendar is local.
  2. Closed variants: Frequency handling is a tagged switch with one
     arm per case plus an explicit default, never open string dispatch.
  3. Non-owning references: A daily task points back at its template,
     but the template may be edited or deleted without affecting it.

LIFECYCLE:
  Pending --(now >= overdue_at, sweep)--> Overdue --(now >= clear_at, sweep)--> Cleared
  Pending/Overdue --(user)--> Completed --(user, uncomplete)--> Pending
  Cleared and Skipped are terminal for this engine.

SEE ALSO:
  - frequency.go: Which templates apply to a given date
  - timestamps.go: Due/overdue/clear instant computation
  - generate.go: Materializing a date's instances exactly once
  - sweep.go: Advancing time-based statuses
*/
package household

import (
	"fmt"
	"regexp"
	"time"
)

// =============================================================================
// ENUMERATIONS
// =============================================================================

// Frequency describes how often a recurring task applies.
type Frequency string

const (
	FreqDaily   Frequency = "Daily"
	FreqWeekly  Frequency = "Weekly"
	FreqMonthly Frequency = "Monthly"
)

// Status is the lifecycle state of a daily task instance.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusOverdue   Status = "Overdue"
	StatusCleared   Status = "Cleared"
	// StatusSkipped is reserved for manual exclusion. The engine never
	// produces it and never transitions out of it.
	StatusSkipped Status = "Skipped"
)

// TemplateStatus is the activation state of a recurring template.
type TemplateStatus string

const (
	TemplateActive   TemplateStatus = "Active"
	TemplateInactive TemplateStatus = "Inactive"
)

// Category classifies a task for display grouping.
type Category string

const (
	CategoryMedication Category = "Medication"
	CategoryFeeding    Category = "Feeding"
	CategoryHealth     Category = "Health"
	CategoryCleaning   Category = "Cleaning"
	CategoryOther      Category = "Other"
)

// OverdueWhen is the symbolic grace period between the due instant and
// the moment a pending task becomes overdue.
type OverdueWhen string

const (
	OverdueImmediate OverdueWhen = "Immediate"
	Overdue1Hour     OverdueWhen = "1 hour"
	Overdue6Hours    OverdueWhen = "6 hours"
	Overdue1Day      OverdueWhen = "1 day"
	Overdue3Days     OverdueWhen = "3 days"
	Overdue7Days     OverdueWhen = "7 days"
)

// ValidCategory reports whether c is one of the closed category values.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryMedication, CategoryFeeding, CategoryHealth, CategoryCleaning, CategoryOther:
		return true
	default:
		return false
	}
}

// ValidOverdueWhen reports whether o is one of the closed grace-period values.
func ValidOverdueWhen(o OverdueWhen) bool {
	switch o {
	case OverdueImmediate, Overdue1Hour, Overdue6Hours, Overdue1Day, Overdue3Days, Overdue7Days:
		return true
	default:
		return false
	}
}

// =============================================================================
// CIVIL DATE
// =============================================================================

var civilDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// CivilDate is a calendar date (YYYY-MM-DD) interpreted in the household's
// local timezone, distinct from the UTC instants stored on records.
type CivilDate string

// ParseCivilDate validates and normalizes a YYYY-MM-DD string.
// The format is checked both syntactically and as a real calendar date.
func ParseCivilDate(s string) (CivilDate, error) {
	if s == "" {
		return "", &ValidationError{Field: "date", Message: "date cannot be empty"}
	}
	if !civilDatePattern.MatchString(s) {
		return "", &ValidationError{Field: "date", Message: "invalid date format, expected YYYY-MM-DD"}
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", &ValidationError{Field: "date", Message: "invalid date format, expected YYYY-MM-DD"}
	}
	return CivilDate(s), nil
}

// Time returns the date at local midnight in the given location.
func (d CivilDate) Time(loc *time.Location) time.Time {
	t, _ := time.Parse("2006-01-02", string(d))
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Weekday returns the day-of-week name (Monday, Tuesday, ...).
func (d CivilDate) Weekday() string {
	t, _ := time.Parse("2006-01-02", string(d))
	return t.Weekday().String()
}

// DayOfMonth returns the day-of-month component (1-31).
func (d CivilDate) DayOfMonth() int {
	t, _ := time.Parse("2006-01-02", string(d))
	return t.Day()
}

// AddDays returns the civil date n days later (negative n for earlier).
func (d CivilDate) AddDays(n int) CivilDate {
	t, _ := time.Parse("2006-01-02", string(d))
	return CivilDate(t.AddDate(0, 0, n).Format("2006-01-02"))
}

func (d CivilDate) String() string { return string(d) }

// CivilDateOf returns the civil date of instant t in location loc.
func CivilDateOf(t time.Time, loc *time.Location) CivilDate {
	return CivilDate(t.In(loc).Format("2006-01-02"))
}

// =============================================================================
// RECURRING TASK (template)
// =============================================================================

// RecurringTask is a recurring rule describing when a task should recur.
// It is read-only to the lifecycle engine: only the API layer creates,
// updates, or deletes templates.
type RecurringTask struct {
	TaskID      string         `json:"task_id"`
	TaskName    string         `json:"task_name"`
	AssignedTo  string         `json:"assigned_to"`
	Frequency   Frequency      `json:"frequency"`
	Due         string         `json:"due"`
	OverdueWhen OverdueWhen    `json:"overdue_when"`
	Category    Category       `json:"category"`
	Status      TemplateStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ValidateDue checks that the template's due value is syntactically
// consistent with its frequency. Monthly values are only checked to be
// numeric: out-of-range days (29-31) are accepted at write time and
// treated as permanently non-matching by the frequency matcher.
func (rt RecurringTask) ValidateDue() error {
	switch rt.Frequency {
	case FreqDaily:
		if rt.Due != "Morning" && rt.Due != "Evening" {
			return &ValidationError{Field: "due", Message: "daily due must be Morning or Evening"}
		}
	case FreqWeekly:
		if !isWeekdayName(rt.Due) {
			return &ValidationError{Field: "due", Message: "weekly due must be a weekday name"}
		}
	case FreqMonthly:
		if _, err := parseMonthlyDue(rt.Due); err != nil {
			return &ValidationError{Field: "due", Message: "monthly due must be a day-of-month number"}
		}
	default:
		return &ValidationError{Field: "frequency", Message: fmt.Sprintf("unsupported frequency %q", rt.Frequency)}
	}
	return nil
}

// =============================================================================
// DAILY TASK (instance)
// =============================================================================

// DailyTask is one day's materialized occurrence of a recurring template.
// All instants are UTC; Date is the civil date the instance belongs to.
//
// OverdueWhen is copied from the template at generation time, so later
// template edits do not retroactively change already-generated instances.
type DailyTask struct {
	TaskID          string      `json:"task_id"`
	TaskName        string      `json:"task_name"`
	AssignedTo      string      `json:"assigned_to"`
	RecurringTaskID string      `json:"recurring_task_id"`
	Date            CivilDate   `json:"date"`
	DueTime         string      `json:"due_time"`
	Status          Status      `json:"status"`
	Category        Category    `json:"category"`
	OverdueWhen     OverdueWhen `json:"overdue_when"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	GeneratedAt     time.Time   `json:"generated_at"`
	OverdueAt       time.Time   `json:"overdue_at"`
	ClearAt         time.Time   `json:"clear_at"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
