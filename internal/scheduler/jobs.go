package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Refresher reloads the catalog snapshot; *catalog.Store implements it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Pruner deletes analytics events older than a cutoff.
type Pruner interface {
	PruneEvents(ctx context.Context, before time.Time) (int64, error)
}

// RefreshJob reloads the catalog so edits made directly in the database
// (for example by the seed command) show up without a restart.
func RefreshJob(r Refresher) Job {
	return r.Refresh
}

// PruneJob drops analytics events older than retention. Counters on the
// resources are left untouched.
func PruneJob(p Pruner, retention time.Duration, now func() time.Time, logger *slog.Logger) Job {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context) error {
		cutoff := now().Add(-retention).UTC()
		n, err := p.PruneEvents(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("pruning analytics events: %w", err)
		}
		if n > 0 {
			logger.Info("analytics events pruned", slog.Int64("deleted", n), slog.Time("before", cutoff))
		}
		return nil
	}
}
