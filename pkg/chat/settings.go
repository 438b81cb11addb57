package chat

import "sync"

// Messaging limits. Configure runs once at startup; the defaults keep the
// package usable on its own (tests, embedded use).
var (
	settingsMu      sync.RWMutex
	DefaultPageSize = 50
	MaxPageSize     = 200
	maxContentBytes = int64(64 * 1024)
)

// Configure installs the messaging limits from configuration. Zero values
// keep the built-in defaults.
func Configure(defPage, maxPage int, maxContent int64) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	if defPage > 0 {
		DefaultPageSize = defPage
	}
	if maxPage > 0 {
		MaxPageSize = maxPage
	}
	if maxContent > 0 {
		maxContentBytes = maxContent
	}
}

func contentLimit() int64 {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return maxContentBytes
}

func clampLimit(limit int) int {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
