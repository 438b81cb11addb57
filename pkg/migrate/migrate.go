// Package migrate performs in-place store upgrades between releases. The
// stored schema version gates each step; a crash mid-run leaves the
// in-progress marker so the next start retries.
package migrate

import (
	"context"
	"fmt"
	"time"

	"chatcore/pkg/logger"
	"chatcore/pkg/store"
)

const (
	versionKey    = "version"
	inProgressKey = "migration_in_progress"

	// SchemaVersion is the version this build writes and expects.
	SchemaVersion = "2"
)

// Sync upgrades the store schema to SchemaVersion. Steps are idempotent so
// a retry after a crash is safe.
func Sync(ctx context.Context) error {
	from, ok, err := store.GetSystem(versionKey)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if !ok {
		from = "1"
	}
	if from == SchemaVersion {
		return nil
	}

	logger.Info("migration_start", "from", from, "to", SchemaVersion)
	if err := store.SetSystem(inProgressKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	// v1 -> v2: membership rows predate the per-user conversation index;
	// backfill it so directory listings do not need full scans.
	if from == "1" {
		n := 0
		err := store.ScanAllMembers(func(convID, userID string) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := store.RepairMemberIndex(convID, userID); err != nil {
				return err
			}
			n++
			return nil
		})
		if err != nil {
			return fmt.Errorf("backfill member index: %w", err)
		}
		logger.Info("migration_member_index_backfilled", "rows", n)
	}

	if err := store.SetSystem(versionKey, SchemaVersion); err != nil {
		return err
	}
	if err := store.DelSystem(inProgressKey); err != nil {
		logger.Warn("migration_marker_cleanup_failed", "error", err)
	}
	logger.Info("migration_complete", "version", SchemaVersion)
	return nil
}
