/*
generate_test.go - Behavior tests for daily task generation

ORGANIZATION:
  1. Instantiation from matching templates
  2. Date-level idempotency
  3. Validation and error policy
*/
package household_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/warp/household-engine/household"
	"github.com/warp/household-engine/household/store"
)

func fixedNow() time.Time {
	return time.Date(2024, time.August, 5, 14, 30, 0, 0, time.UTC)
}

func newTestGenerator(templates *store.TemplateMemory, tasks household.DailyTaskStore) *household.Generator {
	g := household.NewGenerator(templates, tasks, household.NewDefaultSchedule())
	g.Now = fixedNow
	seq := 0
	g.NewID = func() string {
		seq++
		return fmt.Sprintf("task-%d", seq)
	}
	return g
}

func seedTemplate(t *testing.T, templates *store.TemplateMemory, rt household.RecurringTask) {
	t.Helper()
	if rt.Status == "" {
		rt.Status = household.TemplateActive
	}
	if err := templates.CreateRecurringTask(context.Background(), rt); err != nil {
		t.Fatalf("seed template: %v", err)
	}
}

// =============================================================================
// INSTANTIATION
// =============================================================================

func TestGenerateMaterializesMatchingTemplates(t *testing.T) {
	templates := store.NewTemplateMemory()
	tasks := store.NewTaskMemory()
	g := newTestGenerator(templates, tasks)

	// GIVEN a daily template, a weekly template matching the date, and a
	// weekly template that doesn't match
	seedTemplate(t, templates, household.RecurringTask{
		TaskID: "rt-pills", TaskName: "Take pills", AssignedTo: "Grandma",
		Frequency: household.FreqDaily, Due: "Morning",
		OverdueWhen: household.Overdue1Hour, Category: household.CategoryMedication,
	})
	seedTemplate(t, templates, household.RecurringTask{
		TaskID: "rt-trash", TaskName: "Take out trash", AssignedTo: "Alex",
		Frequency: household.FreqWeekly, Due: "Monday",
		OverdueWhen: household.Overdue6Hours, Category: household.CategoryCleaning,
	})
	seedTemplate(t, templates, household.RecurringTask{
		TaskID: "rt-plants", TaskName: "Water plants", AssignedTo: "Alex",
		Frequency: household.FreqWeekly, Due: "Sunday",
		OverdueWhen: household.Overdue1Day, Category: household.CategoryOther,
	})

	// WHEN generating for a Monday
	generated, err := g.GenerateDailyTasksForDate(context.Background(), "2024-08-05")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// THEN only the matching templates produce instances
	if len(generated) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(generated))
	}

	byTemplate := make(map[string]household.DailyTask)
	for _, task := range generated {
		byTemplate[task.RecurringTaskID] = task
	}

	pills, ok := byTemplate["rt-pills"]
	if !ok {
		t.Fatal("daily template rt-pills must produce an instance")
	}
	if pills.Status != household.StatusPending {
		t.Fatalf("new instance status %q, want Pending", pills.Status)
	}
	if pills.DueTime != "Morning" {
		t.Fatalf("daily instance keeps the template due, got %q", pills.DueTime)
	}
	if pills.Date != "2024-08-05" {
		t.Fatalf("instance date %q", pills.Date)
	}
	if pills.OverdueWhen != household.Overdue1Hour {
		t.Fatalf("overdue_when must be copied from the template, got %q", pills.OverdueWhen)
	}
	if !pills.GeneratedAt.Equal(fixedNow()) {
		t.Fatalf("generated_at %s, want %s", pills.GeneratedAt, fixedNow())
	}

	// Weekly instances carry no finer time-of-day and default to Morning.
	trash := byTemplate["rt-trash"]
	if trash.DueTime != "Morning" {
		t.Fatalf("weekly instance due_time %q, want Morning", trash.DueTime)
	}

	if _, ok := byTemplate["rt-plants"]; ok {
		t.Fatal("Sunday template must not produce an instance on a Monday")
	}
}

func TestGenerateComputesLifecycleInstants(t *testing.T) {
	templates := store.NewTemplateMemory()
	tasks := store.NewTaskMemory()
	g := newTestGenerator(templates, tasks)

	// GIVEN an evening daily template with a one-hour grace period
	seedTemplate(t, templates, household.RecurringTask{
		TaskID: "rt-dishes", TaskName: "Do dishes", AssignedTo: "Sam",
		Frequency: household.FreqDaily, Due: "Evening",
		OverdueWhen: household.Overdue1Hour, Category: household.CategoryCleaning,
	})

	generated, err := g.GenerateDailyTasksForDate(context.Background(), "2024-08-05")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	task := generated[0]

	// THEN overdue_at = 23:00 EDT + 1h and clear_at = next local midnight
	wantDue := time.Date(2024, time.August, 6, 3, 0, 0, 0, time.UTC)
	if !task.OverdueAt.Equal(wantDue.Add(time.Hour)) {
		t.Fatalf("overdue_at %s, want %s", task.OverdueAt, wantDue.Add(time.Hour))
	}
	wantClear := time.Date(2024, time.August, 6, 4, 0, 0, 0, time.UTC)
	if !task.ClearAt.Equal(wantClear) {
		t.Fatalf("clear_at %s, want %s", task.ClearAt, wantClear)
	}
}

// =============================================================================
// IDEMPOTENCY
// =============================================================================

func TestGenerateIsIdempotentPerDate(t *testing.T) {
	templates := store.NewTemplateMemory()
	tasks := store.NewTaskMemory()
	g := newTestGenerator(templates, tasks)

	seedTemplate(t, templates, household.RecurringTask{
		TaskID: "rt-pills", TaskName: "Take pills", AssignedTo: "Grandma",
		Frequency: household.FreqDaily, Due: "Morning",
		OverdueWhen: household.Overdue1Hour, Category: household.CategoryMedication,
	})

	// GIVEN a date that has already been generated
	first, err := g.GenerateDailyTasksForDate(context.Background(), "2024-08-05")
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}

	// WHEN a new template is activated afterwards
	seedTemplate(t, templates, household.RecurringTask{
		TaskID: "rt-late", TaskName: "Late addition", AssignedTo: "Sam",
		Frequency: household.FreqDaily, Due: "Evening",
		OverdueWhen: household.Overdue1Hour, Category: household.CategoryOther,
	})

	// THEN re-generating returns the existing set verbatim: the new
	// template does not retroactively appear
	second, err := g.GenerateDailyTasksForDate(context.Background(), "2024-08-05")
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("re-generation changed the set: %d then %d", len(first), len(second))
	}
	if second[0].TaskID != first[0].TaskID {
		t.Fatalf("re-generation must return the same instances")
	}

	// AND the store holds no duplicates
	all, _ := tasks.ListByDate(context.Background(), "2024-08-05")
	if len(all) != 1 {
		t.Fatalf("store holds %d instances, want 1", len(all))
	}

	// A different date still generates fresh instances, now including
	// the late template.
	other, err := g.GenerateDailyTasksForDate(context.Background(), "2024-08-06")
	if err != nil {
		t.Fatalf("other date: %v", err)
	}
	if len(other) != 2 {
		t.Fatalf("other date generated %d instances, want 2", len(other))
	}
}

// =============================================================================
// VALIDATION AND ERROR POLICY
// =============================================================================

func TestGenerateRejectsMalformedDates(t *testing.T) {
	g := newTestGenerator(store.NewTemplateMemory(), store.NewTaskMemory())

	for _, raw := range []string{"", "08/05/2024", "2024-13-01", "2024-8-5", "not-a-date"} {
		_, err := g.GenerateDailyTasksForDate(context.Background(), raw)
		if err == nil {
			t.Fatalf("date %q must be rejected", raw)
		}
		// Malformed input is the caller's fault, with a descriptive message.
		if !household.IsClientError(err) {
			t.Fatalf("date %q: expected a validation error, got %v", raw, err)
		}
	}
}

// failingTaskStore wraps TaskMemory and fails every create.
type failingTaskStore struct {
	*store.TaskMemory
}

func (f *failingTaskStore) CreateDailyTask(context.Context, household.DailyTask) error {
	return errors.New("disk full")
}

func TestGenerateCollapsesStoreFailures(t *testing.T) {
	templates := store.NewTemplateMemory()
	tasks := &failingTaskStore{store.NewTaskMemory()}
	g := newTestGenerator(templates, tasks)

	seedTemplate(t, templates, household.RecurringTask{
		TaskID: "rt-pills", TaskName: "Take pills", AssignedTo: "Grandma",
		Frequency: household.FreqDaily, Due: "Morning",
		OverdueWhen: household.Overdue1Hour, Category: household.CategoryMedication,
	})

	// WHEN persistence fails mid-generation
	_, err := g.GenerateDailyTasksForDate(context.Background(), "2024-08-05")

	// THEN the opaque sentinel surfaces, not the raw cause
	if !errors.Is(err, household.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if household.IsClientError(err) {
		t.Fatal("store failures must not read as client errors")
	}
}
