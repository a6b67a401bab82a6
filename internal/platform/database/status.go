package database

import (
	"sync"
)

// statusManager tracks whether Redis can currently be trusted.
type statusManager struct {
	mu             sync.RWMutex
	isRedisHealthy bool
	lastKnownRunID string
	onChange       func(healthy bool)
}

var globalStatus = &statusManager{
	isRedisHealthy: true,
}

// IsRedisHealthy reports the last health verdict. Redis-backed caches
// consult it before reading so they can fall back to SQL.
func IsRedisHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isRedisHealthy
}

// OnStatusChange registers a callback fired whenever the verdict flips.
func OnStatusChange(fn func(healthy bool)) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.onChange = fn
}

// SetInitialRunID records the Redis run_id observed at startup.
func SetInitialRunID(runID string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.lastKnownRunID = runID
}

// UpdateStatus stores a new verdict; the run_id only moves while healthy.
func UpdateStatus(isHealthy bool, newRunID string) {
	globalStatus.mu.Lock()
	changed := globalStatus.isRedisHealthy != isHealthy
	globalStatus.isRedisHealthy = isHealthy
	if isHealthy {
		globalStatus.lastKnownRunID = newRunID
	}
	fn := globalStatus.onChange
	globalStatus.mu.Unlock()

	if changed && fn != nil {
		fn(isHealthy)
	}
}

// GetLastKnownRunID returns the run_id of the Redis instance the caches were built against.
func GetLastKnownRunID() string {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.lastKnownRunID
}
