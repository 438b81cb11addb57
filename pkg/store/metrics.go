package store

import (
	"io/fs"
	"path/filepath"
)

// StoreMetrics is a compact view of store health for the maintenance job.
type StoreMetrics struct {
	DiskBytes uint64
}

// GetStoreMetrics returns best-effort metrics about the pebble DB. It
// prefers pebble's own accounting and falls back to walking the DB
// directory.
func GetStoreMetrics() StoreMetrics {
	var out StoreMetrics
	if db == nil {
		return out
	}
	if m := db.Metrics(); m != nil {
		if u := m.DiskSpaceUsage(); u > 0 {
			out.DiskBytes = u
			return out
		}
	}
	if dbPath == "" {
		return out
	}
	var total uint64
	_ = filepath.WalkDir(dbPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += uint64(fi.Size())
		}
		return nil
	})
	out.DiskBytes = total
	return out
}
