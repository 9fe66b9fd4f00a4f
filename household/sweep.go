/*
sweep.go - Periodic batch process advancing time-based statuses

PURPOSE:
  Scans recently-relevant instances and advances Pending->Overdue and
  Overdue->Cleared based on the current time, never disturbing the
  user-driven states (Completed) or the terminal ones (Cleared, Skipped).

SCAN WINDOW:
  Instances are partitioned by date and there is no global index of
  "instances needing review", so the sweep walks a bounded window of
  recent dates (default 30 days back from now, household-local). A store
  with a real secondary index could replace this with a range query on
  overdue_at/clear_at; the per-item transition semantics must not change.

IDEMPOTENCY:
  Both transitions use non-strict comparison (now >= threshold) and are
  applied via conditional updates, so sweeps are safe to repeat and to
  run concurrently with themselves: re-applying a transition to an
  instance already advanced is a no-op.

ERROR ISOLATION:
  A failure scanning one date is counted and logged but does not abort
  the remaining dates. Only a sweep that cannot run at all returns
  ErrSweepFailed.

SEE ALSO:
  - complete.go: User-driven transitions that take precedence
  - store.go: TransitionStatus contract
*/
package household

import (
	"context"
	"log"
	"time"
)

// DefaultSweepWindowDays is how many days back the sweep scans.
const DefaultSweepWindowDays = 30

// SweepResult reports how many instances each transition advanced.
type SweepResult struct {
	PendingToOverdue int `json:"pending_to_overdue"`
	OverdueToCleared int `json:"overdue_to_cleared"`
	DatesScanned     int `json:"dates_scanned"`
	DatesFailed      int `json:"dates_failed"`
}

// Sweeper advances time-based status transitions across the recent window.
type Sweeper struct {
	Tasks      DailyTaskStore
	Schedule   *Schedule
	WindowDays int
}

// NewSweeper creates a Sweeper with the default scan window.
func NewSweeper(tasks DailyTaskStore, schedule *Schedule) *Sweeper {
	return &Sweeper{Tasks: tasks, Schedule: schedule, WindowDays: DefaultSweepWindowDays}
}

// SweepStatuses walks the recent date window once and applies due
// transitions as of now.
func (sw *Sweeper) SweepStatuses(ctx context.Context, now time.Time) (SweepResult, error) {
	if sw.Tasks == nil {
		return SweepResult{}, ErrSweepFailed
	}
	now = now.UTC()

	window := sw.WindowDays
	if window <= 0 {
		window = DefaultSweepWindowDays
	}

	var result SweepResult
	today := CivilDateOf(now, sw.Schedule.Location())

	for back := 0; back < window; back++ {
		date := today.AddDays(-back)
		result.DatesScanned++

		if err := sw.sweepDate(ctx, date, now, &result); err != nil {
			// One bad date must not block the others.
			result.DatesFailed++
			log.Printf("[Sweep] failed to process %s: %v", date, err)
		}
	}

	log.Printf("[Sweep] completed: %d pending->overdue, %d overdue->cleared (%d dates, %d failed)",
		result.PendingToOverdue, result.OverdueToCleared, result.DatesScanned, result.DatesFailed)
	return result, nil
}

// sweepDate applies transitions to every candidate instance of one date.
func (sw *Sweeper) sweepDate(ctx context.Context, date CivilDate, now time.Time, result *SweepResult) error {
	tasks, err := sw.Tasks.ListByDate(ctx, date)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		switch task.Status {
		case StatusPending:
			if !now.Before(task.OverdueAt) {
				applied, err := sw.Tasks.TransitionStatus(ctx, task.TaskID, StatusPending, StatusOverdue)
				if err != nil {
					log.Printf("[Sweep] transition pending->overdue failed for %s: %v", task.TaskID, err)
					continue
				}
				if applied {
					result.PendingToOverdue++
				}
			}

		case StatusOverdue:
			if !now.Before(task.ClearAt) {
				applied, err := sw.Tasks.TransitionStatus(ctx, task.TaskID, StatusOverdue, StatusCleared)
				if err != nil {
					log.Printf("[Sweep] transition overdue->cleared failed for %s: %v", task.TaskID, err)
					continue
				}
				if applied {
					result.OverdueToCleared++
				}
			}

		default:
			// Completed, Cleared, Skipped: untouched.
		}
	}
	return nil
}
