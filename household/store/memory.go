// Package store provides in-memory implementations of the household
// persistence interfaces, used by tests and as the no-database fallback.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/household-engine/household"
)

// =============================================================================
// MEMORY TEMPLATE STORE
// =============================================================================

// TemplateMemory is an in-memory TemplateAdminStore.
type TemplateMemory struct {
	mu        sync.RWMutex
	templates map[string]household.RecurringTask
}

func NewTemplateMemory() *TemplateMemory {
	return &TemplateMemory{templates: make(map[string]household.RecurringTask)}
}

func (m *TemplateMemory) ListActive(_ context.Context) ([]household.RecurringTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []household.RecurringTask
	for _, rt := range m.templates {
		if rt.Status == household.TemplateActive {
			result = append(result, rt)
		}
	}
	sortTemplates(result)
	return result, nil
}

func (m *TemplateMemory) ListRecurringTasks(_ context.Context) ([]household.RecurringTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]household.RecurringTask, 0, len(m.templates))
	for _, rt := range m.templates {
		result = append(result, rt)
	}
	sortTemplates(result)
	return result, nil
}

func (m *TemplateMemory) GetRecurringTask(_ context.Context, id string) (*household.RecurringTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rt, ok := m.templates[id]
	if !ok {
		return nil, nil
	}
	return &rt, nil
}

func (m *TemplateMemory) CreateRecurringTask(_ context.Context, rt household.RecurringTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[rt.TaskID] = rt
	return nil
}

func (m *TemplateMemory) UpdateRecurringTask(_ context.Context, rt household.RecurringTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[rt.TaskID] = rt
	return nil
}

func (m *TemplateMemory) DeleteRecurringTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.templates, id)
	return nil
}

func sortTemplates(ts []household.RecurringTask) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].TaskID < ts[j].TaskID })
}

// =============================================================================
// MEMORY DAILY TASK STORE
// =============================================================================

// TaskMemory is an in-memory DailyTaskStore, partitioned by date the
// same way the production store partitions its rows.
type TaskMemory struct {
	mu     sync.RWMutex
	byDate map[household.CivilDate][]string
	byID   map[string]household.DailyTask
}

func NewTaskMemory() *TaskMemory {
	return &TaskMemory{
		byDate: make(map[household.CivilDate][]string),
		byID:   make(map[string]household.DailyTask),
	}
}

func (m *TaskMemory) ListByDate(_ context.Context, date household.CivilDate) ([]household.DailyTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byDate[date]
	result := make([]household.DailyTask, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.byID[id])
	}
	return result, nil
}

func (m *TaskMemory) GetDailyTask(_ context.Context, id string) (*household.DailyTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

func (m *TaskMemory) CreateDailyTask(_ context.Context, task household.DailyTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID[task.TaskID] = task
	m.byDate[task.Date] = append(m.byDate[task.Date], task.TaskID)
	return nil
}

func (m *TaskMemory) UpdateStatus(_ context.Context, id string, status household.Status, completedAt *time.Time) (*household.DailyTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.byID[id]
	if !ok {
		return nil, nil
	}

	task.Status = status
	task.CompletedAt = completedAt
	task.UpdatedAt = time.Now().UTC()
	m.byID[id] = task
	return &task, nil
}

func (m *TaskMemory) TransitionStatus(_ context.Context, id string, from, to household.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.byID[id]
	if !ok || task.Status != from {
		return false, nil
	}

	task.Status = to
	task.UpdatedAt = time.Now().UTC()
	m.byID[id] = task
	return true, nil
}
