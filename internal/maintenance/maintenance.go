// Package maintenance runs the cron-scheduled housekeeping pass: it evicts
// expired typing indicators and refreshes the store gauges. Read semantics
// never depend on it; skipping a run only delays physical cleanup.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"chatcore/pkg/chat"
	"chatcore/pkg/config"
	"chatcore/pkg/logger"
	"chatcore/pkg/store"
	"chatcore/pkg/telemetry"
)

const defaultCron = "*/5 * * * *"

// Start starts the maintenance scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, eff config.EffectiveConfigResult) (context.CancelFunc, error) {
	mc := eff.Config.Maintenance
	if !mc.Enabled {
		logger.Info("maintenance_disabled")
		return func() {}, nil
	}

	cronExpr := mc.Cron
	if cronExpr == "" {
		cronExpr = defaultCron
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("maintenance_invalid_cron", "cron", mc.Cron)
		return nil, fmt.Errorf("invalid maintenance cron expression: %s", mc.Cron)
	}

	logger.Info("maintenance_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr)
	return cancel, nil
}

// RunOnce performs one housekeeping pass. Exposed so admin triggers and
// tests can run it on demand.
func RunOnce() {
	live := chat.Typists.Prune()
	telemetry.SetActiveTypists(live)

	m := store.GetStoreMetrics()
	telemetry.SetStoreDiskBytes(m.DiskBytes)

	logger.Info("maintenance_run", "live_typists", live, "store_disk_bytes", m.DiskBytes)
}

// runScheduler computes the next tick for the configured cron expression
// with gronx and sleeps until then.
func runScheduler(ctx context.Context, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("maintenance_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("maintenance_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			RunOnce()
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(wait):
			RunOnce()
		case <-ctx.Done():
			logger.Info("maintenance_scheduler_stopping")
			return
		}
	}
}
