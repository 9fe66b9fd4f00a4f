/*
errors.go - Centralized error types for the lifecycle engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Two tiers exist: validation errors carry descriptive, safe-to-display
  messages; persistence failures are logged in full internally and
  surfaced to callers only as generic sentinels.

ERROR CATEGORIES:
  1. Validation errors - malformed input (bad date, bad template fields)
  2. Persistence sentinels - store failures, wrapped and non-leaking
  3. Not-found - NOT an error; lookups return (nil, nil) on absence

USAGE:
  if household.IsClientError(err) {
      // safe to show err.Error() to the caller
  }

SEE ALSO:
  - generate.go, sweep.go, complete.go: Producers of these errors
*/
package household

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrGenerationFailed is the generic failure surfaced when a store
	// error aborts daily task generation. The underlying cause is logged,
	// never returned.
	ErrGenerationFailed = errors.New("an error occurred while generating daily tasks")

	// ErrSweepFailed is the generic failure surfaced when the status
	// sweep cannot run at all (individual date failures do not trigger it).
	ErrSweepFailed = errors.New("an error occurred during task status updates")

	// ErrUpdateFailed is the generic failure surfaced when a completion
	// or uncompletion cannot be persisted.
	ErrUpdateFailed = errors.New("an error occurred while updating the task")
)

// =============================================================================
// VALIDATION ERRORS - Safe to display
// =============================================================================

// ValidationError reports invalid caller input. Its message is written
// to be safe to return to clients verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// and its message may be shown to the caller.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInternal returns true if the error is a non-leaking persistence sentinel.
func IsInternal(err error) bool {
	return errors.Is(err, ErrGenerationFailed) ||
		errors.Is(err, ErrSweepFailed) ||
		errors.Is(err, ErrUpdateFailed)
}
