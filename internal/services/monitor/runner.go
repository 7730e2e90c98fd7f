package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runner invokes the orchestrator on a fixed interval. Runs are strictly
// serialized: the next tick waits for the previous run to finish.
type Runner struct {
	Log      *zap.Logger
	Orc      *Orchestrator
	Interval time.Duration
}

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.Orc.RunChecks(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Orc.RunChecks(ctx)
		}
	}
}
