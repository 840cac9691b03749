// Package scheduler wires up the cron job that periodically runs a full
// owner-resolution pass against the listing store.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"rental-intel/services"
	"rental-intel/utils"
)

// Scheduler wraps robfig/cron and manages the periodic detection loop.
type Scheduler struct {
	cron     *cron.Cron
	resolver *services.Resolver
	logger   *utils.Logger
	spec     string
}

// New creates a Scheduler that fires every intervalHours hours.
func New(resolver *services.Resolver, logger *utils.Logger, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		resolver: resolver,
		logger:   logger,
		spec:     fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. One pass runs
// immediately so the owner table is populated without waiting for the
// first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runDetect(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduler: cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("[scheduler] Cron started — spec: %s", s.spec)

	go s.runDetect(ctx)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("[scheduler] Cron stopped")
}

func (s *Scheduler) runDetect(ctx context.Context) {
	s.logger.Info("[scheduler] Detection cycle started")

	stats, _, err := s.resolver.Run(ctx)
	if err != nil {
		s.logger.Error("[scheduler] Detection cycle failed: %v", err)
		return
	}

	s.logger.Info("[scheduler] Detection cycle complete — owners=%d new=%d updated=%d failed=%d",
		stats.TotalOwners, stats.NewOwners, stats.UpdatedOwners, stats.FailedClusters)
}
