/*
store.go - Persistence interfaces for templates and daily instances

PURPOSE:
  Defines the interface between the lifecycle engine and the database.
  Daily tasks are partitioned by civil date: every lookup is either
  (date) or a cross-date lookup by id. Different implementations exist
  for SQLite and in-memory storage.

KEY INTERFACES:
  RecurringTaskStore: Template reads consumed by the engine (the engine
                      never mutates templates)
  TemplateAdminStore: Template CRUD for the API layer
  DailyTaskStore:     Instance create/read/update-status operations

CONDITIONAL TRANSITIONS:
  TransitionStatus applies a status change only when the instance is
  still in the expected prior state. Two concurrent sweeps applying
  Pending->Overdue therefore converge: the second is a no-op. This is
  the single-conditional-update requirement for sweep safety.

DELETION:
  Daily tasks are never deleted by the engine. Template deletion does
  not cascade; instances keep their back-reference for audit history.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite store
  - household/store/memory.go: In-memory store for testing/fallback

SEE ALSO:
  - generate.go, sweep.go, complete.go: Consumers of these interfaces
*/
package household

import (
	"context"
	"time"
)

// =============================================================================
// RECURRING TASK STORE - Template persistence
// =============================================================================

// RecurringTaskStore is the read-side the engine consumes. Templates are
// read-only to the lifecycle engine.
type RecurringTaskStore interface {
	// ListActive returns all templates with status Active.
	ListActive(ctx context.Context) ([]RecurringTask, error)

	// GetRecurringTask returns the template, or (nil, nil) when absent.
	GetRecurringTask(ctx context.Context, id string) (*RecurringTask, error)
}

// TemplateAdminStore extends RecurringTaskStore with the CRUD surface
// used by the API layer.
type TemplateAdminStore interface {
	RecurringTaskStore

	ListRecurringTasks(ctx context.Context) ([]RecurringTask, error)
	CreateRecurringTask(ctx context.Context, rt RecurringTask) error
	UpdateRecurringTask(ctx context.Context, rt RecurringTask) error
	DeleteRecurringTask(ctx context.Context, id string) error
}

// =============================================================================
// DAILY TASK STORE - Instance persistence, partitioned by date
// =============================================================================

// DailyTaskStore persists daily task instances keyed by (date, task_id)
// with a secondary cross-date lookup by task_id alone.
type DailyTaskStore interface {
	// ListByDate returns all instances generated for a civil date.
	ListByDate(ctx context.Context, date CivilDate) ([]DailyTask, error)

	// GetDailyTask looks up an instance by id across all dates.
	// Returns (nil, nil) when absent.
	GetDailyTask(ctx context.Context, id string) (*DailyTask, error)

	// CreateDailyTask persists a new instance.
	CreateDailyTask(ctx context.Context, task DailyTask) error

	// UpdateStatus sets status and completed_at unconditionally, bumping
	// updated_at. completedAt == nil clears the completion timestamp.
	// Returns the updated instance, or (nil, nil) when absent.
	UpdateStatus(ctx context.Context, id string, status Status, completedAt *time.Time) (*DailyTask, error)

	// TransitionStatus sets status only if the instance is currently in
	// the from state. Reports whether the transition was applied.
	TransitionStatus(ctx context.Context, id string, from, to Status) (bool, error)
}
