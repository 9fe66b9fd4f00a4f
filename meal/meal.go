/*
Package meal tracks meal-kit deliveries parsed out of the delivery
service's notification emails.

The pipeline is: raw email body -> quoted-printable decode -> body
extraction -> meal name/date extraction -> validated Meal records.
Meals are unrelated to the task lifecycle engine; they share only the
store and the API surface.
*/
package meal

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/warp/household-engine/household"
)

// MealStatus is the preparation state of a delivered meal.
type MealStatus string

const (
	StatusAvailable MealStatus = "available"
	StatusPrepared  MealStatus = "prepared"
	StatusExpired   MealStatus = "expired"
)

// Length caps for meal display strings.
const (
	MaxMealNameLen    = 100
	MaxDescriptionLen = 200
)

// Meal is one delivered meal.
type Meal struct {
	MealID       string              `json:"meal_id"`
	MealName     string              `json:"meal_name"`
	Description  string              `json:"description"`
	ThumbnailURL string              `json:"thumbnail_url,omitempty"`
	DateShipped  household.CivilDate `json:"date_shipped"`
	Status       MealStatus          `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Store persists meals, partitioned by shipped date.
type Store interface {
	ListMealsByDate(ctx context.Context, date household.CivilDate) ([]Meal, error)
	ListMeals(ctx context.Context) ([]Meal, error)
	CreateMeal(ctx context.Context, m Meal) error
}

// Service validates and persists parsed meals.
type Service struct {
	Store Store
	Now   func() time.Time
	NewID func() string
}

// NewService creates a Service over the given store.
func NewService(store Store) *Service {
	return &Service{
		Store: store,
		Now:   time.Now,
		NewID: func() string { return uuid.NewString() },
	}
}

// CreateMeal validates and persists one meal.
func (s *Service) CreateMeal(ctx context.Context, m Meal) (*Meal, error) {
	name, err := household.SanitizeDisplayString("meal_name", m.MealName, MaxMealNameLen)
	if err != nil {
		return nil, err
	}
	m.MealName = name

	if m.Description != "" {
		desc, err := household.SanitizeDisplayString("description", m.Description, MaxDescriptionLen)
		if err != nil {
			return nil, err
		}
		m.Description = desc
	}

	if _, err := household.ParseCivilDate(string(m.DateShipped)); err != nil {
		return nil, err
	}

	switch m.Status {
	case StatusAvailable, StatusPrepared, StatusExpired:
	case "":
		m.Status = StatusAvailable
	default:
		return nil, &household.ValidationError{Field: "status", Message: "status must be available, prepared, or expired"}
	}

	now := s.Now().UTC()
	m.MealID = s.NewID()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := s.Store.CreateMeal(ctx, m); err != nil {
		log.Printf("[Meal] failed to persist meal %q: %v", m.MealName, err)
		return nil, household.ErrUpdateFailed
	}
	return &m, nil
}

// IngestEmail parses a raw notification email and persists every meal
// found in it. Individual meal failures are logged and skipped; the
// successfully stored meals are returned.
func (s *Service) IngestEmail(ctx context.Context, rawEmail string) ([]Meal, error) {
	parsed := ParseEmail(rawEmail, household.CivilDateOf(s.Now(), time.UTC))
	if len(parsed.Meals) == 0 {
		return nil, nil
	}

	var stored []Meal
	for _, pm := range parsed.Meals {
		m, err := s.CreateMeal(ctx, Meal{
			MealName:    pm.Name,
			Description: pm.Description,
			DateShipped: parsed.DateShipped,
		})
		if err != nil {
			log.Printf("[Meal] skipping unparseable meal %q: %v", pm.Name, err)
			continue
		}
		stored = append(stored, *m)
	}
	return stored, nil
}
