package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/household-engine/family"
	"github.com/warp/household-engine/household"
	"github.com/warp/household-engine/meal"
	"github.com/warp/household-engine/store/sqlite"
	"github.com/warp/household-engine/weather"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTemplate(id string) household.RecurringTask {
	now := time.Date(2024, time.August, 1, 12, 0, 0, 0, time.UTC)
	return household.RecurringTask{
		TaskID:      id,
		TaskName:    "Take pills",
		AssignedTo:  "Grandma",
		Frequency:   household.FreqDaily,
		Due:         "Morning",
		OverdueWhen: household.Overdue1Hour,
		Category:    household.CategoryMedication,
		Status:      household.TemplateActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func sampleDailyTask(id string, date household.CivilDate, status household.Status) household.DailyTask {
	now := time.Date(2024, time.August, 5, 14, 0, 0, 0, time.UTC)
	return household.DailyTask{
		TaskID:          id,
		TaskName:        "Take pills",
		AssignedTo:      "Grandma",
		RecurringTaskID: "rt-pills",
		Date:            date,
		DueTime:         "Morning",
		Status:          status,
		Category:        household.CategoryMedication,
		OverdueWhen:     household.Overdue1Hour,
		GeneratedAt:     now,
		OverdueAt:       time.Date(2024, time.August, 5, 17, 0, 0, 0, time.UTC),
		ClearAt:         time.Date(2024, time.August, 6, 4, 0, 0, 0, time.UTC),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// =============================================================================
// RECURRING TASKS
// =============================================================================

func TestRecurringTaskRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rt := sampleTemplate("rt-1")
	require.NoError(t, store.CreateRecurringTask(ctx, rt))

	got, err := store.GetRecurringTask(ctx, "rt-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rt.TaskName, got.TaskName)
	assert.Equal(t, rt.Frequency, got.Frequency)
	assert.Equal(t, rt.OverdueWhen, got.OverdueWhen)
	assert.True(t, got.CreatedAt.Equal(rt.CreatedAt))
}

func TestGetRecurringTaskMissReturnsNilNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetRecurringTask(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListActiveFiltersInactiveTemplates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	active := sampleTemplate("rt-active")
	inactive := sampleTemplate("rt-inactive")
	inactive.Status = household.TemplateInactive
	require.NoError(t, store.CreateRecurringTask(ctx, active))
	require.NoError(t, store.CreateRecurringTask(ctx, inactive))

	got, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "rt-active", got[0].TaskID)

	all, err := store.ListRecurringTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateAndDeleteRecurringTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rt := sampleTemplate("rt-1")
	require.NoError(t, store.CreateRecurringTask(ctx, rt))

	rt.TaskName = "Take evening pills"
	rt.Due = "Evening"
	require.NoError(t, store.UpdateRecurringTask(ctx, rt))

	got, err := store.GetRecurringTask(ctx, "rt-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Take evening pills", got.TaskName)
	assert.Equal(t, "Evening", got.Due)

	require.NoError(t, store.DeleteRecurringTask(ctx, "rt-1"))
	got, err = store.GetRecurringTask(ctx, "rt-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// =============================================================================
// DAILY TASKS
// =============================================================================

func TestDailyTaskRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task := sampleDailyTask("task-1", "2024-08-05", household.StatusPending)
	require.NoError(t, store.CreateDailyTask(ctx, task))

	got, err := store.GetDailyTask(ctx, "task-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, task.Date, got.Date)
	assert.Equal(t, task.RecurringTaskID, got.RecurringTaskID)
	assert.Nil(t, got.CompletedAt)
	assert.True(t, got.OverdueAt.Equal(task.OverdueAt))
	assert.True(t, got.ClearAt.Equal(task.ClearAt))
}

func TestListByDatePartitions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateDailyTask(ctx, sampleDailyTask("task-1", "2024-08-05", household.StatusPending)))
	require.NoError(t, store.CreateDailyTask(ctx, sampleDailyTask("task-2", "2024-08-05", household.StatusPending)))
	require.NoError(t, store.CreateDailyTask(ctx, sampleDailyTask("task-3", "2024-08-06", household.StatusPending)))

	day, err := store.ListByDate(ctx, "2024-08-05")
	require.NoError(t, err)
	assert.Len(t, day, 2)

	empty, err := store.ListByDate(ctx, "2024-08-07")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateStatusSetsAndClearsCompletion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateDailyTask(ctx, sampleDailyTask("task-1", "2024-08-05", household.StatusPending)))

	at := time.Date(2024, time.August, 5, 16, 0, 0, 0, time.UTC)
	updated, err := store.UpdateStatus(ctx, "task-1", household.StatusCompleted, &at)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, household.StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.Equal(at))

	// Clearing completed_at with a nil timestamp.
	updated, err = store.UpdateStatus(ctx, "task-1", household.StatusPending, nil)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, household.StatusPending, updated.Status)
	assert.Nil(t, updated.CompletedAt)
}

func TestUpdateStatusMissReturnsNilNil(t *testing.T) {
	store := newTestStore(t)

	updated, err := store.UpdateStatus(context.Background(), "ghost", household.StatusCompleted, nil)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestTransitionStatusIsConditional(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateDailyTask(ctx, sampleDailyTask("task-1", "2024-08-05", household.StatusPending)))

	// First transition applies.
	applied, err := store.TransitionStatus(ctx, "task-1", household.StatusPending, household.StatusOverdue)
	require.NoError(t, err)
	assert.True(t, applied)

	// Replaying the same transition matches zero rows.
	applied, err = store.TransitionStatus(ctx, "task-1", household.StatusPending, household.StatusOverdue)
	require.NoError(t, err)
	assert.False(t, applied)

	// Wrong prior state does not apply.
	applied, err = store.TransitionStatus(ctx, "task-1", household.StatusCompleted, household.StatusCleared)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := store.GetDailyTask(ctx, "task-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, household.StatusOverdue, got.Status)
}

// =============================================================================
// FAMILY MEMBERS
// =============================================================================

func TestFamilyMemberRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2024, time.August, 1, 10, 0, 0, 0, time.UTC)
	person := family.Member{
		MemberID: "m-1", Name: "Alex", MemberType: family.TypePerson,
		Status: household.TemplateActive, CreatedAt: now, UpdatedAt: now,
	}
	pet := family.Member{
		MemberID: "m-2", Name: "Rex", MemberType: family.TypePet, PetType: family.PetDog,
		Status: household.TemplateActive, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.CreateMember(ctx, person))
	require.NoError(t, store.CreateMember(ctx, pet))

	got, err := store.GetMember(ctx, "m-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, family.TypePerson, got.MemberType)
	assert.Empty(t, got.PetType)

	got, err = store.GetMember(ctx, "m-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, family.PetDog, got.PetType)

	members, err := store.ListMembers(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	require.NoError(t, store.DeleteMember(ctx, "m-1"))
	got, err = store.GetMember(ctx, "m-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// =============================================================================
// MEALS
// =============================================================================

func TestMealRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2024, time.August, 5, 10, 0, 0, 0, time.UTC)
	m := meal.Meal{
		MealID: "meal-1", MealName: "Chicken Alfredo with Broccoli",
		Description: "A creamy weeknight classic", DateShipped: "2024-08-05",
		Status: meal.StatusAvailable, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.CreateMeal(ctx, m))
	require.NoError(t, store.CreateMeal(ctx, meal.Meal{
		MealID: "meal-2", MealName: "Beef Tacos with Lime Crema",
		DateShipped: "2024-08-12", Status: meal.StatusAvailable,
		CreatedAt: now, UpdatedAt: now,
	}))

	byDate, err := store.ListMealsByDate(ctx, "2024-08-05")
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, "Chicken Alfredo with Broccoli", byDate[0].MealName)

	all, err := store.ListMeals(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// =============================================================================
// WEATHER CACHE
// =============================================================================

func TestWeatherCacheRoundTripAndUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Empty cache is a miss, not an error.
	got, err := store.GetWeatherCache(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	report := weather.Report{
		Conditions:  "Clear",
		Temperature: decimal.NewFromFloat(72.5),
		FeelsLike:   decimal.NewFromFloat(74.1),
		Humidity:    40,
		FetchedAt:   time.Date(2024, time.August, 5, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.PutWeatherCache(ctx, report))

	got, err = store.GetWeatherCache(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Clear", got.Conditions)
	assert.True(t, got.Temperature.Equal(report.Temperature))

	// Single-slot: a second put overwrites the first.
	report.Conditions = "Rain"
	report.FetchedAt = report.FetchedAt.Add(time.Hour)
	require.NoError(t, store.PutWeatherCache(ctx, report))

	got, err = store.GetWeatherCache(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Rain", got.Conditions)
}
