package coordinator

import "errors"

// ErrCancelled identifies coordinator cancellation. Runs themselves do not
// return it: a cancelled run returns its partial DiscoveryResult with
// Cancelled set and a nil error.
var ErrCancelled = errors.New("coordinator: cancelled")

// ErrAlreadyRunning is returned when a second run is started while one is
// already in flight on the same Coordinator.
var ErrAlreadyRunning = errors.New("coordinator: a run is already in progress")
