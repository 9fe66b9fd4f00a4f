package meal

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/household-engine/household"
)

// Memory is an in-memory Store for tests and the no-database fallback.
type Memory struct {
	mu    sync.RWMutex
	meals map[string]Meal
}

func NewMemory() *Memory {
	return &Memory{meals: make(map[string]Meal)}
}

func (m *Memory) ListMealsByDate(_ context.Context, date household.CivilDate) ([]Meal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Meal
	for _, meal := range m.meals {
		if meal.DateShipped == date {
			result = append(result, meal)
		}
	}
	sortMeals(result)
	return result, nil
}

func (m *Memory) ListMeals(_ context.Context) ([]Meal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Meal, 0, len(m.meals))
	for _, meal := range m.meals {
		result = append(result, meal)
	}
	sortMeals(result)
	return result, nil
}

func (m *Memory) CreateMeal(_ context.Context, meal Meal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meals[meal.MealID] = meal
	return nil
}

func sortMeals(ms []Meal) {
	sort.Slice(ms, func(i, j int) bool { return ms[i].MealID < ms[j].MealID })
}
