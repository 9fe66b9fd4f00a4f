/*
generate.go - Materializing a date's instances exactly once

PURPOSE:
  Orchestrates the frequency matcher, the timestamp calculator, and the
  two stores to turn the active template set into daily task instances
  for one civil date.

IDEMPOTENCY:
  Generation is guarded at the DATE level: if any instance already
  exists for the date, the existing set is returned verbatim and no new
  work happens. A template activated after the date was first generated
  will therefore never retroactively produce its instance for that date.
  This matches the historical behavior and is deliberate; a per-template
  guard would change it.

  The date-level check is not race-safe on its own: two concurrent
  Generate calls can both observe an empty date and double-write. The
  single-flight guard below serializes generation per date in-process;
  cross-process callers must serialize upstream.

ERROR POLICY:
  Validation errors propagate with their descriptive message. Store
  failures abort the whole date (no partial set is successful), are
  logged in full, and surface only as ErrGenerationFailed.

SEE ALSO:
  - frequency.go: Template-to-date matching
  - timestamps.go: Due/overdue/clear instants
  - sweep.go: What happens to the instances afterwards
*/
package household

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Generator materializes daily task instances from recurring templates.
type Generator struct {
	Templates RecurringTaskStore
	Tasks     DailyTaskStore
	Schedule  *Schedule

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time

	// NewID is injectable for tests; defaults to random UUIDs.
	NewID func() string

	mu     sync.Mutex
	inDate map[CivilDate]*sync.Mutex
}

// NewGenerator creates a Generator over the given stores.
func NewGenerator(templates RecurringTaskStore, tasks DailyTaskStore, schedule *Schedule) *Generator {
	return &Generator{
		Templates: templates,
		Tasks:     tasks,
		Schedule:  schedule,
		Now:       time.Now,
		NewID:     func() string { return uuid.NewString() },
		inDate:    make(map[CivilDate]*sync.Mutex),
	}
}

// GenerateDailyTasksForDate generates the instance set for one civil date.
// Returns the existing set when the date was already generated.
func (g *Generator) GenerateDailyTasksForDate(ctx context.Context, rawDate string) ([]DailyTask, error) {
	date, err := ParseCivilDate(rawDate)
	if err != nil {
		return nil, err
	}

	// Serialize generation per date so two in-process callers cannot
	// both observe an empty date and double-write.
	lock := g.dateLock(date)
	lock.Lock()
	defer lock.Unlock()

	// Date-level idempotency guard: any existing instance means the
	// date is considered fully generated.
	existing, err := g.Tasks.ListByDate(ctx, date)
	if err != nil {
		log.Printf("[Generation] failed to list existing tasks for %s: %v", date, err)
		return nil, ErrGenerationFailed
	}
	if len(existing) > 0 {
		log.Printf("[Generation] %s already generated (%d instances), returning existing set", date, len(existing))
		return existing, nil
	}

	templates, err := g.Templates.ListActive(ctx)
	if err != nil {
		log.Printf("[Generation] failed to load active templates for %s: %v", date, err)
		return nil, ErrGenerationFailed
	}

	now := g.Now().UTC()
	generated := make([]DailyTask, 0, len(templates))

	for _, rt := range templates {
		if !Matches(rt, date) {
			continue
		}

		task := g.instantiate(rt, date, now)
		if err := g.Tasks.CreateDailyTask(ctx, task); err != nil {
			// Abort the date entirely: a partial set is not a success.
			log.Printf("[Generation] failed to persist instance of template %s for %s: %v", rt.TaskID, date, err)
			return nil, ErrGenerationFailed
		}
		generated = append(generated, task)
	}

	log.Printf("[Generation] %s: %d active templates, %d instances generated", date, len(templates), len(generated))
	return generated, nil
}

// instantiate builds one DailyTask from a matching template.
func (g *Generator) instantiate(rt RecurringTask, date CivilDate, now time.Time) DailyTask {
	// Daily templates carry Morning/Evening directly; Weekly and Monthly
	// templates model no finer time-of-day and default to Morning.
	dueTime := "Morning"
	if rt.Frequency == FreqDaily {
		dueTime = rt.Due
	}

	ts := g.Schedule.Compute(date, dueTime, rt.OverdueWhen)

	return DailyTask{
		TaskID:          g.NewID(),
		TaskName:        rt.TaskName,
		AssignedTo:      rt.AssignedTo,
		RecurringTaskID: rt.TaskID,
		Date:            date,
		DueTime:         dueTime,
		Status:          StatusPending,
		Category:        rt.Category,
		OverdueWhen:     rt.OverdueWhen,
		CompletedAt:     nil,
		GeneratedAt:     now,
		OverdueAt:       ts.OverdueAt,
		ClearAt:         ts.ClearAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (g *Generator) dateLock(date CivilDate) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.inDate[date]
	if !ok {
		lock = &sync.Mutex{}
		g.inDate[date] = lock
	}
	return lock
}
