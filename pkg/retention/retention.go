// Package retention purges aged event log records on a cron schedule.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"bmcd/pkg/eventlog"
	"bmcd/pkg/logger"
)

// Config controls the purge scheduler.
type Config struct {
	Enabled bool
	// Cron is a standard five-field cron expression; empty means daily
	// at 02:00.
	Cron string
	// Period is how long records are kept.
	Period time.Duration
}

// Start launches the scheduler when enabled and returns a cancel func.
func Start(ctx context.Context, cfg Config) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}
	if cfg.Period <= 0 {
		return nil, fmt.Errorf("retention enabled but period is not positive")
	}

	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Cron)
	}

	logger.Info("retention_enabled", "cron", cronExpr, "period", cfg.Period.String())
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cfg, cronExpr)
	return cancel, nil
}

// RunOnce performs a single purge pass immediately.
func RunOnce(cfg Config) error {
	if cfg.Period <= 0 {
		return fmt.Errorf("retention period is not positive")
	}
	cutoff := time.Now().Add(-cfg.Period)
	n, err := eventlog.PurgeOlderThan(cutoff)
	if err != nil {
		return fmt.Errorf("purge event log: %w", err)
	}
	logger.Info("retention_run_complete", "purged", n, "cutoff", cutoff.UTC().Format(time.RFC3339))
	return nil
}

func runScheduler(ctx context.Context, cfg Config, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if err := RunOnce(cfg); err != nil {
				logger.Error("retention_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}
