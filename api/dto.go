/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Response wrappers where the domain type is not returned
               directly

  Daily tasks, recurring tasks, family members, meals, and weather
  reports already carry their wire-format json tags on the domain
  structs, so list/get endpoints return those directly.

VALIDATION:
  Validation is done in handlers and domain services, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - household/types.go: Domain structs with wire-format tags
*/
package api

import (
	"github.com/warp/household-engine/household"
	"github.com/warp/household-engine/meal"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// GenerateTasksRequest asks for a civil date to be materialized.
type GenerateTasksRequest struct {
	Date string `json:"date"`
}

// GenerateTasksResponse reports the instance set for the date.
type GenerateTasksResponse struct {
	Date  string                `json:"date"`
	Tasks []household.DailyTask `json:"tasks"`
	Count int                   `json:"count"`
}

// RecurringTaskRequest is the create/update body for a template.
type RecurringTaskRequest struct {
	TaskName    string `json:"task_name"`
	AssignedTo  string `json:"assigned_to"`
	Frequency   string `json:"frequency"`
	Due         string `json:"due"`
	OverdueWhen string `json:"overdue_when"`
	Category    string `json:"category"`
	Status      string `json:"status,omitempty"`
}

// FamilyMemberRequest is the create/update body for a household member.
type FamilyMemberRequest struct {
	Name       string `json:"name"`
	MemberType string `json:"member_type"`
	PetType    string `json:"pet_type,omitempty"`
	Status     string `json:"status,omitempty"`
}

// CreateMealRequest is the manual meal creation body.
type CreateMealRequest struct {
	MealName     string `json:"meal_name"`
	Description  string `json:"description,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	DateShipped  string `json:"date_shipped"`
	Status       string `json:"status,omitempty"`
}

// MealEmailRequest carries a raw delivery notification email body.
type MealEmailRequest struct {
	RawEmail string `json:"raw_email"`
}

// MealEmailResponse reports what the parser extracted and stored.
type MealEmailResponse struct {
	MealsFound int         `json:"meals_found"`
	Meals      []meal.Meal `json:"meals"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status   string `json:"status"`
	Timezone string `json:"timezone"`
	Time     string `json:"time"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
