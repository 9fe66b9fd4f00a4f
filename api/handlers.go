/*
handlers.go - HTTP API handlers for the household task system

PURPOSE:
  Exposes the task lifecycle engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Daily tasks:
    GET    /api/daily-tasks                    List instances for a date
    POST   /api/daily-tasks/generate           Materialize a date
    POST   /api/daily-tasks/{id}/complete      Mark completed
    POST   /api/daily-tasks/{id}/uncomplete    Return to pending

  Recurring tasks:
    GET    /api/recurring-tasks                List templates
    POST   /api/recurring-tasks                Create template
    GET    /api/recurring-tasks/{id}           Get template
    PUT    /api/recurring-tasks/{id}           Update template
    DELETE /api/recurring-tasks/{id}           Delete template

  Family:
    GET/POST       /api/family-members
    GET/PUT/DELETE /api/family-members/{id}

  Meals:
    GET    /api/meals                          List (optionally by date)
    POST   /api/meals                          Create manually
    POST   /api/meals/email                    Ingest notification email

  Weather:
    GET    /api/weather                        Cached current conditions

  Admin:
    POST   /api/admin/sweep                    Run status sweep now
    GET    /api/health                         Liveness

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

  Domain services collapse store failures to opaque sentinels; the raw
  cause is already logged by the service, never surfaced to clients.

SECURITY NOTE:
  Currently NO authentication or authorization. The server is meant to
  sit on a home LAN behind the tablet.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Background generation and sweeping
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/household-engine/family"
	"github.com/warp/household-engine/household"
	"github.com/warp/household-engine/meal"
	"github.com/warp/household-engine/weather"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Templates household.TemplateAdminStore
	Tasks     household.DailyTaskStore
	Generator *household.Generator
	Sweeper   *household.Sweeper
	Completer *household.Completer
	Schedule  *household.Schedule

	Family  *family.Service
	Meals   *meal.Service
	Weather *weather.Service

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time

	// NewID is injectable for tests; defaults to random UUIDs.
	NewID func() string
}

// NewHandler wires a handler over the given stores and services.
func NewHandler(templates household.TemplateAdminStore, tasks household.DailyTaskStore, schedule *household.Schedule) *Handler {
	return &Handler{
		Templates: templates,
		Tasks:     tasks,
		Generator: household.NewGenerator(templates, tasks, schedule),
		Sweeper:   household.NewSweeper(tasks, schedule),
		Completer: household.NewCompleter(tasks),
		Schedule:  schedule,
		Now:       time.Now,
		NewID:     func() string { return uuid.NewString() },
	}
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness and the configured household timezone.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Timezone: h.Schedule.Location().String(),
		Time:     h.Now().UTC().Format(time.RFC3339),
	})
}

// =============================================================================
// DAILY TASK HANDLERS
// =============================================================================

// ListDailyTasks returns the instance set for one civil date.
// Defaults to today in the household timezone when no date is given.
func (h *Handler) ListDailyTasks(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		raw = string(household.CivilDateOf(h.Now(), h.Schedule.Location()))
	}

	date, err := household.ParseCivilDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	tasks, err := h.Tasks.ListByDate(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list daily tasks", err)
		return
	}
	if tasks == nil {
		tasks = []household.DailyTask{}
	}

	writeJSON(w, http.StatusOK, tasks)
}

// GenerateDailyTasks materializes a civil date's instances. Safe to call
// repeatedly: an already-generated date returns its existing set.
func (h *Handler) GenerateDailyTasks(w http.ResponseWriter, r *http.Request) {
	var req GenerateTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Date == "" {
		req.Date = string(household.CivilDateOf(h.Now(), h.Schedule.Location()))
	}

	tasks, err := h.Generator.GenerateDailyTasksForDate(r.Context(), req.Date)
	if err != nil {
		if household.IsClientError(err) {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if tasks == nil {
		tasks = []household.DailyTask{}
	}

	writeJSON(w, http.StatusCreated, GenerateTasksResponse{
		Date:  req.Date,
		Tasks: tasks,
		Count: len(tasks),
	})
}

// CompleteDailyTask marks an instance completed now.
func (h *Handler) CompleteDailyTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	task, err := h.Completer.CompleteTask(r.Context(), id, h.Now())
	if err != nil {
		if household.IsClientError(err) {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "Daily task not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// UncompleteDailyTask returns a completed instance to pending.
func (h *Handler) UncompleteDailyTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	task, err := h.Completer.UncompleteTask(r.Context(), id)
	if err != nil {
		if household.IsClientError(err) {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "Daily task not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// =============================================================================
// RECURRING TASK HANDLERS
// =============================================================================

// ListRecurringTasks returns every template regardless of status.
func (h *Handler) ListRecurringTasks(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Templates.ListRecurringTasks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recurring tasks", err)
		return
	}
	if templates == nil {
		templates = []household.RecurringTask{}
	}

	writeJSON(w, http.StatusOK, templates)
}

// GetRecurringTask returns a single template.
func (h *Handler) GetRecurringTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rt, err := h.Templates.GetRecurringTask(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get recurring task", err)
		return
	}
	if rt == nil {
		writeError(w, http.StatusNotFound, "Recurring task not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, rt)
}

// CreateRecurringTask validates and persists a new template.
func (h *Handler) CreateRecurringTask(w http.ResponseWriter, r *http.Request) {
	var req RecurringTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rt, err := h.templateFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	now := h.Now().UTC()
	rt.TaskID = h.NewID()
	rt.CreatedAt = now
	rt.UpdatedAt = now

	if err := h.Templates.CreateRecurringTask(r.Context(), rt); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create recurring task", err)
		return
	}

	writeJSON(w, http.StatusCreated, rt)
}

// UpdateRecurringTask validates and overwrites an existing template.
// Edits apply to future generations only: instances already materialized
// keep the values they were generated with.
func (h *Handler) UpdateRecurringTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.Templates.GetRecurringTask(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get recurring task", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Recurring task not found", nil)
		return
	}

	var req RecurringTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rt, err := h.templateFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	rt.TaskID = existing.TaskID
	rt.CreatedAt = existing.CreatedAt
	rt.UpdatedAt = h.Now().UTC()

	if err := h.Templates.UpdateRecurringTask(r.Context(), rt); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update recurring task", err)
		return
	}

	writeJSON(w, http.StatusOK, rt)
}

// DeleteRecurringTask removes a template. Already-generated instances
// are preserved.
func (h *Handler) DeleteRecurringTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.Templates.GetRecurringTask(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get recurring task", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Recurring task not found", nil)
		return
	}

	if err := h.Templates.DeleteRecurringTask(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete recurring task", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// templateFromRequest validates the request body into a RecurringTask.
func (h *Handler) templateFromRequest(req RecurringTaskRequest) (household.RecurringTask, error) {
	name, err := household.SanitizeDisplayString("task_name", req.TaskName, household.MaxTaskNameLen)
	if err != nil {
		return household.RecurringTask{}, err
	}

	assignedTo, err := household.SanitizeDisplayString("assigned_to", req.AssignedTo, household.MaxMemberNameLen)
	if err != nil {
		return household.RecurringTask{}, err
	}

	if !household.ValidCategory(household.Category(req.Category)) {
		return household.RecurringTask{}, &household.ValidationError{Field: "category", Message: "unknown category"}
	}
	if !household.ValidOverdueWhen(household.OverdueWhen(req.OverdueWhen)) {
		return household.RecurringTask{}, &household.ValidationError{Field: "overdue_when", Message: "unknown overdue_when value"}
	}

	status := household.TemplateStatus(req.Status)
	if status == "" {
		status = household.TemplateActive
	}
	if status != household.TemplateActive && status != household.TemplateInactive {
		return household.RecurringTask{}, &household.ValidationError{Field: "status", Message: "status must be Active or Inactive"}
	}

	rt := household.RecurringTask{
		TaskName:    name,
		AssignedTo:  assignedTo,
		Frequency:   household.Frequency(req.Frequency),
		Due:         req.Due,
		OverdueWhen: household.OverdueWhen(req.OverdueWhen),
		Category:    household.Category(req.Category),
		Status:      status,
	}

	if err := rt.ValidateDue(); err != nil {
		return household.RecurringTask{}, err
	}
	return rt, nil
}

// =============================================================================
// FAMILY MEMBER HANDLERS
// =============================================================================

// ListFamilyMembers returns every household member.
func (h *Handler) ListFamilyMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Family.Store.ListMembers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list family members", err)
		return
	}
	if members == nil {
		members = []family.Member{}
	}

	writeJSON(w, http.StatusOK, members)
}

// GetFamilyMember returns one member.
func (h *Handler) GetFamilyMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m, err := h.Family.Store.GetMember(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get family member", err)
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "Family member not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// CreateFamilyMember validates and persists a new member.
func (h *Handler) CreateFamilyMember(w http.ResponseWriter, r *http.Request) {
	var req FamilyMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	m, err := h.Family.CreateMember(r.Context(), memberFromRequest(req))
	if err != nil {
		if household.IsClientError(err) {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

// UpdateFamilyMember validates and overwrites an existing member.
func (h *Handler) UpdateFamilyMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req FamilyMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	m := memberFromRequest(req)
	m.MemberID = id

	updated, err := h.Family.UpdateMember(r.Context(), m)
	if err != nil {
		if household.IsClientError(err) {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Family member not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteFamilyMember removes a member. Task history keeps its
// assigned_to strings.
func (h *Handler) DeleteFamilyMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.Family.Store.GetMember(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get family member", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Family member not found", nil)
		return
	}

	if err := h.Family.Store.DeleteMember(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete family member", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func memberFromRequest(req FamilyMemberRequest) family.Member {
	status := household.TemplateStatus(req.Status)
	if status == "" {
		status = household.TemplateActive
	}
	return family.Member{
		Name:       req.Name,
		MemberType: family.MemberType(req.MemberType),
		PetType:    family.PetType(req.PetType),
		Status:     status,
	}
}

// =============================================================================
// MEAL HANDLERS
// =============================================================================

// ListMeals returns meals, optionally filtered by shipped date.
func (h *Handler) ListMeals(w http.ResponseWriter, r *http.Request) {
	var (
		meals []meal.Meal
		err   error
	)

	if raw := r.URL.Query().Get("date"); raw != "" {
		date, perr := household.ParseCivilDate(raw)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", perr)
			return
		}
		meals, err = h.Meals.Store.ListMealsByDate(r.Context(), date)
	} else {
		meals, err = h.Meals.Store.ListMeals(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list meals", err)
		return
	}
	if meals == nil {
		meals = []meal.Meal{}
	}

	writeJSON(w, http.StatusOK, meals)
}

// CreateMeal persists a manually entered meal.
func (h *Handler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	var req CreateMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	m, err := h.Meals.CreateMeal(r.Context(), meal.Meal{
		MealName:     req.MealName,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		DateShipped:  household.CivilDate(req.DateShipped),
		Status:       meal.MealStatus(req.Status),
	})
	if err != nil {
		if household.IsClientError(err) {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

// IngestMealEmail parses a delivery notification email and stores the
// meals found in it. A parseable email with zero meals is not an error.
func (h *Handler) IngestMealEmail(w http.ResponseWriter, r *http.Request) {
	var req MealEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.RawEmail == "" {
		writeError(w, http.StatusBadRequest, "raw_email cannot be empty", nil)
		return
	}

	stored, err := h.Meals.IngestEmail(r.Context(), req.RawEmail)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to ingest email", err)
		return
	}
	if stored == nil {
		stored = []meal.Meal{}
	}

	writeJSON(w, http.StatusOK, MealEmailResponse{
		MealsFound: len(stored),
		Meals:      stored,
	})
}

// =============================================================================
// WEATHER HANDLER
// =============================================================================

// GetWeather returns the cached-or-fresh weather report.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	if h.Weather == nil {
		writeError(w, http.StatusServiceUnavailable, "Weather service not configured", nil)
		return
	}

	report, err := h.Weather.CurrentWeather(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// RunSweep runs the status sweep immediately and reports the counts.
func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.Sweeper.SweepStatuses(r.Context(), h.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
