/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements every persistence interface the system consumes
  (household.TemplateAdminStore, household.DailyTaskStore, family.Store,
  meal.Store, weather.Cache) using SQLite. The same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  recurring_tasks: Templates (read-only to the lifecycle engine)
  daily_tasks:     Instances, partitioned by civil date
  family_members:  Household people and pets
  meals:           Parsed meal-kit deliveries
  weather_cache:   Single-row cache of the last weather payload

PARTITIONING:
  daily_tasks carries an index on date because every engine read is
  either "all instances of a date" or a cross-date lookup by id. The
  sweep's bounded window walks dates; a production store with a status
  index could serve a direct range query instead.

CONDITIONAL TRANSITIONS:
  TransitionStatus is a single UPDATE ... WHERE status = ?, so two
  concurrent sweeps applying the same transition converge: the second
  matches zero rows.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers
  don't block and crash recovery improves.

USAGE:
  store, err := sqlite.New("./data/house.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - household/store.go: Interface definitions
  - household/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/household-engine/family"
	"github.com/warp/household-engine/household"
	"github.com/warp/household-engine/meal"
	"github.com/warp/household-engine/weather"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Recurring templates (engine reads, API writes)
	CREATE TABLE IF NOT EXISTS recurring_tasks (
		task_id TEXT PRIMARY KEY,
		task_name TEXT NOT NULL,
		assigned_to TEXT NOT NULL,
		frequency TEXT NOT NULL,
		due TEXT NOT NULL,
		overdue_when TEXT NOT NULL,
		category TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_recurring_tasks_status
		ON recurring_tasks(status);

	-- Daily instances, partitioned by civil date
	CREATE TABLE IF NOT EXISTS daily_tasks (
		task_id TEXT PRIMARY KEY,
		task_name TEXT NOT NULL,
		assigned_to TEXT NOT NULL,
		recurring_task_id TEXT NOT NULL,
		date TEXT NOT NULL,
		due_time TEXT NOT NULL,
		status TEXT NOT NULL,
		category TEXT NOT NULL,
		overdue_when TEXT NOT NULL,
		completed_at TEXT,
		generated_at TEXT NOT NULL,
		overdue_at TEXT NOT NULL,
		clear_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Hot path: the sweep and the tablet both read whole dates
	CREATE INDEX IF NOT EXISTS idx_daily_tasks_date
		ON daily_tasks(date);
	CREATE INDEX IF NOT EXISTS idx_daily_tasks_date_status
		ON daily_tasks(date, status);
	CREATE INDEX IF NOT EXISTS idx_daily_tasks_recurring
		ON daily_tasks(recurring_task_id);

	-- Household members
	CREATE TABLE IF NOT EXISTS family_members (
		member_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		member_type TEXT NOT NULL,
		pet_type TEXT,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Parsed meal-kit deliveries
	CREATE TABLE IF NOT EXISTS meals (
		meal_id TEXT PRIMARY KEY,
		meal_name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		date_shipped TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_meals_date_shipped
		ON meals(date_shipped);

	-- Single-row weather cache (stand-in for the S3 object)
	CREATE TABLE IF NOT EXISTS weather_cache (
		cache_key TEXT PRIMARY KEY,
		payload_json TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

const timeLayout = time.RFC3339Nano

func fmtTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

// =============================================================================
// RECURRING TASKS - household.TemplateAdminStore
// =============================================================================

const recurringColumns = `task_id, task_name, assigned_to, frequency, due, overdue_when, category, status, created_at, updated_at`

// ListActive returns all templates with status Active.
func (s *Store) ListActive(ctx context.Context) ([]household.RecurringTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_tasks WHERE status = ? ORDER BY task_id`,
		string(household.TemplateActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecurringTasks(rows)
}

// ListRecurringTasks returns every template regardless of status.
func (s *Store) ListRecurringTasks(ctx context.Context) ([]household.RecurringTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_tasks ORDER BY task_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecurringTasks(rows)
}

// GetRecurringTask returns the template, or (nil, nil) when absent.
func (s *Store) GetRecurringTask(ctx context.Context, id string) (*household.RecurringTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_tasks WHERE task_id = ?`, id)

	rt, err := scanRecurringTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// CreateRecurringTask persists a new template.
func (s *Store) CreateRecurringTask(ctx context.Context, rt household.RecurringTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recurring_tasks (`+recurringColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.TaskID, rt.TaskName, rt.AssignedTo, string(rt.Frequency), rt.Due,
		string(rt.OverdueWhen), string(rt.Category), string(rt.Status),
		fmtTime(rt.CreatedAt), fmtTime(rt.UpdatedAt))
	return err
}

// UpdateRecurringTask overwrites an existing template.
func (s *Store) UpdateRecurringTask(ctx context.Context, rt household.RecurringTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE recurring_tasks
		 SET task_name = ?, assigned_to = ?, frequency = ?, due = ?,
		     overdue_when = ?, category = ?, status = ?, updated_at = ?
		 WHERE task_id = ?`,
		rt.TaskName, rt.AssignedTo, string(rt.Frequency), rt.Due,
		string(rt.OverdueWhen), string(rt.Category), string(rt.Status),
		fmtTime(rt.UpdatedAt), rt.TaskID)
	return err
}

// DeleteRecurringTask removes a template. Instances generated from it
// are kept: deletion does not cascade.
func (s *Store) DeleteRecurringTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM recurring_tasks WHERE task_id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecurringTask(row rowScanner) (household.RecurringTask, error) {
	var rt household.RecurringTask
	var frequency, overdueWhen, category, status, createdAt, updatedAt string

	err := row.Scan(&rt.TaskID, &rt.TaskName, &rt.AssignedTo, &frequency, &rt.Due,
		&overdueWhen, &category, &status, &createdAt, &updatedAt)
	if err != nil {
		return household.RecurringTask{}, err
	}

	rt.Frequency = household.Frequency(frequency)
	rt.OverdueWhen = household.OverdueWhen(overdueWhen)
	rt.Category = household.Category(category)
	rt.Status = household.TemplateStatus(status)
	rt.CreatedAt = parseTime(createdAt)
	rt.UpdatedAt = parseTime(updatedAt)
	return rt, nil
}

func scanRecurringTasks(rows *sql.Rows) ([]household.RecurringTask, error) {
	var result []household.RecurringTask
	for rows.Next() {
		rt, err := scanRecurringTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rt)
	}
	return result, rows.Err()
}

// =============================================================================
// DAILY TASKS - household.DailyTaskStore
// =============================================================================

const dailyColumns = `task_id, task_name, assigned_to, recurring_task_id, date, due_time, status, category, overdue_when, completed_at, generated_at, overdue_at, clear_at, created_at, updated_at`

// ListByDate returns all instances generated for a civil date.
func (s *Store) ListByDate(ctx context.Context, date household.CivilDate) ([]household.DailyTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+dailyColumns+` FROM daily_tasks WHERE date = ? ORDER BY task_id`, string(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []household.DailyTask
	for rows.Next() {
		task, err := scanDailyTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}

// GetDailyTask looks up an instance by id across all dates.
func (s *Store) GetDailyTask(ctx context.Context, id string) (*household.DailyTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getDailyTaskLocked(ctx, id)
}

func (s *Store) getDailyTaskLocked(ctx context.Context, id string) (*household.DailyTask, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+dailyColumns+` FROM daily_tasks WHERE task_id = ?`, id)

	task, err := scanDailyTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateDailyTask persists a new instance.
func (s *Store) CreateDailyTask(ctx context.Context, task household.DailyTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var completedAt any
	if task.CompletedAt != nil {
		completedAt = fmtTime(*task.CompletedAt)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_tasks (`+dailyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.TaskID, task.TaskName, task.AssignedTo, task.RecurringTaskID,
		string(task.Date), task.DueTime, string(task.Status), string(task.Category),
		string(task.OverdueWhen), completedAt, fmtTime(task.GeneratedAt),
		fmtTime(task.OverdueAt), fmtTime(task.ClearAt),
		fmtTime(task.CreatedAt), fmtTime(task.UpdatedAt))
	return err
}

// UpdateStatus sets status and completed_at unconditionally.
// completedAt == nil clears the completion timestamp.
func (s *Store) UpdateStatus(ctx context.Context, id string, status household.Status, completedAt *time.Time) (*household.DailyTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var completed any
	if completedAt != nil {
		completed = fmtTime(*completedAt)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE daily_tasks SET status = ?, completed_at = ?, updated_at = ? WHERE task_id = ?`,
		string(status), completed, fmtTime(time.Now()), id)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	return s.getDailyTaskLocked(ctx, id)
}

// TransitionStatus applies the status change only when the instance is
// still in the expected prior state.
func (s *Store) TransitionStatus(ctx context.Context, id string, from, to household.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE daily_tasks SET status = ?, updated_at = ? WHERE task_id = ? AND status = ?`,
		string(to), fmtTime(time.Now()), id, string(from))
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanDailyTask(row rowScanner) (household.DailyTask, error) {
	var task household.DailyTask
	var date, status, category, overdueWhen string
	var completedAt sql.NullString
	var generatedAt, overdueAt, clearAt, createdAt, updatedAt string

	err := row.Scan(&task.TaskID, &task.TaskName, &task.AssignedTo, &task.RecurringTaskID,
		&date, &task.DueTime, &status, &category, &overdueWhen, &completedAt,
		&generatedAt, &overdueAt, &clearAt, &createdAt, &updatedAt)
	if err != nil {
		return household.DailyTask{}, err
	}

	task.Date = household.CivilDate(date)
	task.Status = household.Status(status)
	task.Category = household.Category(category)
	task.OverdueWhen = household.OverdueWhen(overdueWhen)
	if completedAt.Valid {
		t := parseTime(completedAt.String)
		task.CompletedAt = &t
	}
	task.GeneratedAt = parseTime(generatedAt)
	task.OverdueAt = parseTime(overdueAt)
	task.ClearAt = parseTime(clearAt)
	task.CreatedAt = parseTime(createdAt)
	task.UpdatedAt = parseTime(updatedAt)
	return task, nil
}

// =============================================================================
// FAMILY MEMBERS - family.Store
// =============================================================================

const memberColumns = `member_id, name, member_type, pet_type, status, created_at, updated_at`

func (s *Store) ListMembers(ctx context.Context) ([]family.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM family_members ORDER BY member_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []family.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (s *Store) GetMember(ctx context.Context, id string) (*family.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM family_members WHERE member_id = ?`, id)

	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) CreateMember(ctx context.Context, m family.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO family_members (`+memberColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.MemberID, m.Name, string(m.MemberType), nullableString(string(m.PetType)),
		string(m.Status), fmtTime(m.CreatedAt), fmtTime(m.UpdatedAt))
	return err
}

func (s *Store) UpdateMember(ctx context.Context, m family.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE family_members
		 SET name = ?, member_type = ?, pet_type = ?, status = ?, updated_at = ?
		 WHERE member_id = ?`,
		m.Name, string(m.MemberType), nullableString(string(m.PetType)),
		string(m.Status), fmtTime(m.UpdatedAt), m.MemberID)
	return err
}

func (s *Store) DeleteMember(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM family_members WHERE member_id = ?`, id)
	return err
}

func scanMember(row rowScanner) (family.Member, error) {
	var m family.Member
	var memberType, status, createdAt, updatedAt string
	var petType sql.NullString

	err := row.Scan(&m.MemberID, &m.Name, &memberType, &petType, &status, &createdAt, &updatedAt)
	if err != nil {
		return family.Member{}, err
	}

	m.MemberType = family.MemberType(memberType)
	if petType.Valid {
		m.PetType = family.PetType(petType.String)
	}
	m.Status = household.TemplateStatus(status)
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	return m, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// =============================================================================
// MEALS - meal.Store
// =============================================================================

const mealColumns = `meal_id, meal_name, description, thumbnail_url, date_shipped, status, created_at, updated_at`

func (s *Store) ListMealsByDate(ctx context.Context, date household.CivilDate) ([]meal.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE date_shipped = ? ORDER BY meal_id`, string(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMeals(rows)
}

func (s *Store) ListMeals(ctx context.Context) ([]meal.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+mealColumns+` FROM meals ORDER BY date_shipped DESC, meal_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMeals(rows)
}

func (s *Store) CreateMeal(ctx context.Context, m meal.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meals (`+mealColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.MealID, m.MealName, m.Description, m.ThumbnailURL, string(m.DateShipped),
		string(m.Status), fmtTime(m.CreatedAt), fmtTime(m.UpdatedAt))
	return err
}

func scanMeals(rows *sql.Rows) ([]meal.Meal, error) {
	var result []meal.Meal
	for rows.Next() {
		var m meal.Meal
		var dateShipped, status, createdAt, updatedAt string

		err := rows.Scan(&m.MealID, &m.MealName, &m.Description, &m.ThumbnailURL,
			&dateShipped, &status, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}

		m.DateShipped = household.CivilDate(dateShipped)
		m.Status = meal.MealStatus(status)
		m.CreatedAt = parseTime(createdAt)
		m.UpdatedAt = parseTime(updatedAt)
		result = append(result, m)
	}
	return result, rows.Err()
}

// =============================================================================
// WEATHER CACHE - weather.Cache
// =============================================================================

const weatherCacheKey = "current-weather"

func (s *Store) GetWeatherCache(ctx context.Context) (*weather.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload_json FROM weather_cache WHERE cache_key = ?`, weatherCacheKey).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var report weather.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("corrupt weather cache: %w", err)
	}
	return &report, nil
}

func (s *Store) PutWeatherCache(ctx context.Context, r weather.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO weather_cache (cache_key, payload_json, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET payload_json = excluded.payload_json, fetched_at = excluded.fetched_at`,
		weatherCacheKey, string(payload), fmtTime(r.FetchedAt))
	return err
}
