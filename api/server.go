/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the tablet frontend

ROUTE GROUPS:
  /api/daily-tasks/*      Instance list, generation, complete/uncomplete
  /api/recurring-tasks/*  Template CRUD
  /api/family-members/*   Household member CRUD
  /api/meals/*            Meal list/create and email ingestion
  /api/weather            Cached weather report
  /api/admin/*            Manual sweep trigger
  /api/health             Liveness

SECURITY NOTE:
  No authentication middleware. The server targets a home LAN.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Daily task instances
		r.Route("/daily-tasks", func(r chi.Router) {
			r.Get("/", h.ListDailyTasks)
			r.Post("/generate", h.GenerateDailyTasks)
			r.Post("/{id}/complete", h.CompleteDailyTask)
			r.Post("/{id}/uncomplete", h.UncompleteDailyTask)
		})

		// Recurring templates
		r.Route("/recurring-tasks", func(r chi.Router) {
			r.Get("/", h.ListRecurringTasks)
			r.Post("/", h.CreateRecurringTask)
			r.Get("/{id}", h.GetRecurringTask)
			r.Put("/{id}", h.UpdateRecurringTask)
			r.Delete("/{id}", h.DeleteRecurringTask)
		})

		// Household members
		r.Route("/family-members", func(r chi.Router) {
			r.Get("/", h.ListFamilyMembers)
			r.Post("/", h.CreateFamilyMember)
			r.Get("/{id}", h.GetFamilyMember)
			r.Put("/{id}", h.UpdateFamilyMember)
			r.Delete("/{id}", h.DeleteFamilyMember)
		})

		// Meals
		r.Route("/meals", func(r chi.Router) {
			r.Get("/", h.ListMeals)
			r.Post("/", h.CreateMeal)
			r.Post("/email", h.IngestMealEmail)
		})

		// Weather
		r.Get("/weather", h.GetWeather)

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/sweep", h.RunSweep)
		})
	})

	return r
}
