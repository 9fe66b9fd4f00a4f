/*
complete.go - User-driven completion transitions

PURPOSE:
  Handles the two explicit user actions on a daily task instance:
  completing it and taking the completion back. These override the
  time-based sweep: a Completed instance is never touched by the sweep,
  and Uncomplete is the only transition that moves an instance backward
  in the lifecycle.

SEMANTICS:
  Complete(id, at):  status = Completed, completed_at = at, from any
                     prior status. Re-completing simply refreshes the
                     timestamp.
  Uncomplete(id):    status = Pending, completed_at = null. Always
                     user-triggered, never by the sweep.

  Both look up the instance by id alone (cross-date) and return
  (nil, nil) on a miss - absence is a signal, not an error.

SEE ALSO:
  - sweep.go: Time-driven transitions
  - store.go: UpdateStatus contract
*/
package household

import (
	"context"
	"log"
	"time"
)

// Completer applies user-driven complete/uncomplete actions.
type Completer struct {
	Tasks DailyTaskStore
}

// NewCompleter creates a Completer over the given store.
func NewCompleter(tasks DailyTaskStore) *Completer {
	return &Completer{Tasks: tasks}
}

// CompleteTask marks the instance Completed at the given instant.
// Returns (nil, nil) when no instance with that id exists.
func (c *Completer) CompleteTask(ctx context.Context, id string, completedAt time.Time) (*DailyTask, error) {
	if id == "" {
		return nil, &ValidationError{Field: "task_id", Message: "task_id cannot be empty"}
	}

	at := completedAt.UTC()
	updated, err := c.Tasks.UpdateStatus(ctx, id, StatusCompleted, &at)
	if err != nil {
		log.Printf("[Complete] failed to complete task %s: %v", id, err)
		return nil, ErrUpdateFailed
	}
	if updated == nil {
		return nil, nil
	}

	log.Printf("[Complete] task %s completed at %s", id, at.Format(time.RFC3339))
	return updated, nil
}

// UncompleteTask returns the instance to Pending and clears completed_at.
// Returns (nil, nil) when no instance with that id exists.
func (c *Completer) UncompleteTask(ctx context.Context, id string) (*DailyTask, error) {
	if id == "" {
		return nil, &ValidationError{Field: "task_id", Message: "task_id cannot be empty"}
	}

	updated, err := c.Tasks.UpdateStatus(ctx, id, StatusPending, nil)
	if err != nil {
		log.Printf("[Complete] failed to uncomplete task %s: %v", id, err)
		return nil, ErrUpdateFailed
	}
	if updated == nil {
		return nil, nil
	}

	log.Printf("[Complete] task %s returned to pending", id)
	return updated, nil
}
