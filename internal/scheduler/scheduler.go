// Package scheduler runs periodic scans of watched treasury addresses.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fyclub/treasury-guardian/internal/domain"
)

type scanner interface {
	Run(ctx context.Context, address string) domain.ScanResult
}

// Scheduler scans a fixed set of addresses on an interval. Results land in
// the workflow's history like interactive scans.
type Scheduler struct {
	cron      *cron.Cron
	workflow  scanner
	addresses []string
	logger    *zap.Logger
}

// New creates a scheduler for the given addresses.
func New(workflow scanner, addresses []string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		workflow:  workflow,
		addresses: addresses,
		logger:    logger,
	}
}

// Start registers the scan job and starts the cron loop. It is a no-op when
// there are no watched addresses.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) error {
	if len(s.addresses) == 0 {
		return nil
	}
	if interval < time.Minute {
		interval = time.Minute
	}

	spec := fmt.Sprintf("@every %s", interval)
	if _, err := s.cron.AddFunc(spec, func() { s.scanAll(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduled treasury watch started",
		zap.Int("addresses", len(s.addresses)),
		zap.Duration("interval", interval))
	return nil
}

// Stop halts the cron loop, waiting for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) scanAll(ctx context.Context) {
	for _, address := range s.addresses {
		result := s.workflow.Run(ctx, address)
		s.logger.Info("watched treasury scanned",
			zap.String("address", address),
			zap.String("risk_level", string(result.Risk.Level)),
			zap.Bool("approved", result.Governance.Approved))
	}
}
