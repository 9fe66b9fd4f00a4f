/*
scheduler.go - Background lifecycle scheduler

PURPOSE:
  Periodically generates the current date's instances and advances
  time-based statuses, so the tablet always shows a materialized,
  up-to-date task list without anyone having to call the admin
  endpoints.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each tick: generate today's date (idempotent), then sweep
  - Generation failure does not skip the sweep; each half is
    independently logged

CONFIGURATION:
  - CheckInterval: How often to tick (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewLifecycleScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GenerateDailyTasks/RunSweep endpoints (manual triggers)
  - household/sweep.go: Transition semantics
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/household-engine/household"
)

// LifecycleScheduler drives generation and sweeping on a timer.
type LifecycleScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewLifecycleScheduler creates a new scheduler.
func NewLifecycleScheduler(handler *Handler) *LifecycleScheduler {
	return &LifecycleScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ls *LifecycleScheduler) Start() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if !ls.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ls.ticker = time.NewTicker(ls.CheckInterval)
	ls.wg.Add(1)

	go ls.run()

	log.Printf("[Scheduler] Started with check interval: %v", ls.CheckInterval)
}

// Stop stops the scheduler.
func (ls *LifecycleScheduler) Stop() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.ticker != nil {
		ls.ticker.Stop()
		close(ls.stop)
		ls.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ls *LifecycleScheduler) run() {
	defer ls.wg.Done()

	// Run immediately on start
	ls.tick()

	for {
		select {
		case <-ls.ticker.C:
			ls.tick()
		case <-ls.stop:
			return
		}
	}
}

func (ls *LifecycleScheduler) tick() {
	ctx := context.Background()
	now := ls.Handler.Now()

	today := household.CivilDateOf(now, ls.Handler.Schedule.Location())
	log.Printf("[Scheduler] Tick for %s", today)

	if _, err := ls.Handler.Generator.GenerateDailyTasksForDate(ctx, string(today)); err != nil {
		log.Printf("[Scheduler] Generation for %s failed: %v", today, err)
	}

	result, err := ls.Handler.Sweeper.SweepStatuses(ctx, now)
	if err != nil {
		log.Printf("[Scheduler] Sweep failed: %v", err)
		return
	}
	if result.PendingToOverdue > 0 || result.OverdueToCleared > 0 || result.DatesFailed > 0 {
		log.Printf("[Scheduler] Sweep: %d pending->overdue, %d overdue->cleared, %d dates failed",
			result.PendingToOverdue, result.OverdueToCleared, result.DatesFailed)
	}
}

// RunNow triggers an immediate tick (for testing/admin).
func (ls *LifecycleScheduler) RunNow() {
	ls.tick()
}

// GetNextRunTime returns when the next scheduled tick will occur.
func (ls *LifecycleScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(ls.CheckInterval)
}
