package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clientpulse/pulse-core/internal/infrastructure/scheduler"
)

func newWatchCmd() *cobra.Command {
	var intervalHours int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously sweep all accounts on a schedule",
		Long:  "Runs a monitoring sweep over every account at a fixed interval until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, intervalHours)
		},
	}

	cmd.Flags().IntVarP(&intervalHours, "interval", "i", 0, "Hours between sweeps (defaults to the configured interval)")

	return cmd
}

func runWatch(cmd *cobra.Command, intervalHours int) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if intervalHours <= 0 {
			intervalHours = d.Config.Monitor.IntervalHours
		}

		s := scheduler.New(d.Store, d.Monitoring, d.TenantID, d.Config.Monitor.SearchTerm)
		if err := s.Start(ctx, intervalHours); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}

		fmt.Printf("Watching all accounts every %dh. Press Ctrl+C to stop.\n", intervalHours)
		s.SweepAll(ctx)
		<-ctx.Done()

		fmt.Println("\nStopping...")
		s.Stop()
		return nil
	})
}
