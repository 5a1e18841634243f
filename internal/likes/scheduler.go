package likes

import (
	"context"

	"gamestore/backend/internal/logging"

	"github.com/robfig/cron/v3"
)

// StartReconcileJob runs ReconcileAll on the given cron schedule. An empty
// schedule disables the job and returns a nil scheduler.
func StartReconcileJob(svc *Service, schedule string) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}

	logger := logging.With("like-reconciler")
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx := logging.WithContext(context.Background(), logger)
		repairs, err := svc.ReconcileAll(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("like counter reconciliation failed")
			return
		}
		var total int64
		for _, r := range repairs {
			total += r.Repaired
		}
		logger.Info().Int64("repaired", total).Msg("like counter reconciliation finished")
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
