package store

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"chatcore/pkg/logger"
)

var (
	db     *pebble.DB
	dbPath string

	// mu narrows the check-then-write window for unique-key upserts
	// (reaction get-or-create, membership reactivation). Individual Sets are
	// already atomic; this only serializes the composite operations.
	mu sync.Mutex
)

// Open opens (or creates) a Pebble database at the given path and keeps a
// global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

func notOpen() error {
	return fmt.Errorf("pebble not opened; call store.Open first")
}

// get returns the raw value for a key, a found flag, and an error for real
// storage failures. A missing key is not an error.
func get(key string) ([]byte, bool, error) {
	v, closer, err := db.Get([]byte(key))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	out := append([]byte(nil), v...)
	if closer != nil {
		_ = closer.Close()
	}
	return out, true, nil
}

func set(key string, value []byte) error {
	return db.Set([]byte(key), value, pebble.Sync)
}

func del(key string) error {
	return db.Delete([]byte(key), pebble.Sync)
}

// prefixUpperBound returns the smallest key strictly greater than every key
// carrying the prefix.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
