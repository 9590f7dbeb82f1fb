// Package scheduler runs periodic monitoring sweeps across accounts.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/clientpulse/pulse-core/internal/domain/ports"
	"github.com/clientpulse/pulse-core/internal/workflow"
)

// Scheduler triggers a monitoring sweep for every account of the tenant on
// a fixed interval. Accounts are swept sequentially; a failed sweep is
// logged and the schedule continues.
type Scheduler struct {
	cron       *cron.Cron
	store      ports.DocumentStore
	monitoring *workflow.MonitoringProcess
	tenantID   string
	searchTerm string
}

// New creates a scheduler over the given monitoring process.
func New(store ports.DocumentStore, monitoring *workflow.MonitoringProcess, tenantID, searchTerm string) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		store:      store,
		monitoring: monitoring,
		tenantID:   tenantID,
		searchTerm: searchTerm,
	}
}

// Start begins sweeping every intervalHours hours. It returns after
// scheduling; sweeps run on the cron goroutine until Stop is called.
func (s *Scheduler) Start(ctx context.Context, intervalHours int) error {
	if intervalHours <= 0 {
		intervalHours = 6
	}

	spec := fmt.Sprintf("@every %dh", intervalHours)
	_, err := s.cron.AddFunc(spec, func() {
		s.SweepAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling sweep: %w", err)
	}

	s.cron.Start()
	slog.Info("monitoring schedule started", "interval_hours", intervalHours, "tenant_id", s.tenantID)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

// SweepAll runs one monitoring sweep for every account of the tenant.
func (s *Scheduler) SweepAll(ctx context.Context) {
	accounts, err := s.store.ListAccounts(ctx, s.tenantID)
	if err != nil {
		slog.Error("listing accounts for sweep failed", "tenant_id", s.tenantID, "error", err)
		return
	}

	for _, account := range accounts {
		if ctx.Err() != nil {
			slog.Warn("sweep interrupted", "error", ctx.Err())
			return
		}

		term := s.searchTerm
		if term == "" {
			term = account.Name
		}

		result := s.monitoring.Run(ctx, s.tenantID, account.ID, term)
		if result.Status != workflow.StatusCompleted {
			slog.Error("account sweep failed",
				"account_id", account.ID, "status", result.Status, "error", result.Err)
			continue
		}
		slog.Info("account sweep finished",
			"account_id", account.ID, "hits", result.Hits, "skipped", result.Skipped)
	}
}
