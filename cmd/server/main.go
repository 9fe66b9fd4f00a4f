/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the household task engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Create domain services and API handler
  4. Start background lifecycle scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port            HTTP server port (default: 8080)
  -db              SQLite database path (default: household.db)
                   Use ":memory:" for in-memory database
  -timezone        Household timezone (default: America/New_York)
  -sweep-interval  Scheduler tick interval (default: 1h)
  -location        Weather location, city name or "lat,lon"
  -weather-key     OpenWeather API key (or OPENWEATHER_API_KEY env)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/household.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run with weather enabled
  OPENWEATHER_API_KEY=... ./server -location="Boston"

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Background generation and sweeping
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/household-engine/api"
	"github.com/warp/household-engine/family"
	"github.com/warp/household-engine/household"
	"github.com/warp/household-engine/meal"
	"github.com/warp/household-engine/store/sqlite"
	"github.com/warp/household-engine/weather"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "household.db", "SQLite database path")
	timezone := flag.String("timezone", household.DefaultTimezone, "Household timezone")
	sweepInterval := flag.Duration("sweep-interval", time.Hour, "Scheduler tick interval")
	location := flag.String("location", "", "Weather location (city name or lat,lon)")
	weatherKey := flag.String("weather-key", "", "OpenWeather API key (or OPENWEATHER_API_KEY env)")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	schedule := household.NewSchedule(*timezone)

	// Initialize handler
	handler := api.NewHandler(store, store, schedule)
	handler.Family = family.NewService(store)
	handler.Meals = meal.NewService(store)

	apiKey := *weatherKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENWEATHER_API_KEY")
	}
	if apiKey != "" && *location != "" {
		handler.Weather = weather.NewService(apiKey, *location, store)
	} else {
		log.Println("Weather disabled: set -location and -weather-key (or OPENWEATHER_API_KEY)")
	}

	// Background generation and sweeping
	scheduler := api.NewLifecycleScheduler(handler)
	scheduler.CheckInterval = *sweepInterval
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d (timezone %s)", *port, schedule.Location())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
