package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/workflow"
)

func newMonitorCmd() *cobra.Command {
	var (
		searchTerm string
		hitsFile   string
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run a single monitoring sweep for an account",
		Long:  "Drains the account's spool inbox (or an explicit hits file) and ingests every hit not seen before.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, searchTerm, hitsFile)
		},
	}

	cmd.Flags().StringVarP(&searchTerm, "term", "t", "", "Search term recorded on ingested signals")
	cmd.Flags().StringVar(&hitsFile, "hits", "", "Read hits from this JSON file instead of the spool inbox")

	return cmd
}

func runMonitor(cmd *cobra.Command, searchTerm, hitsFile string) error {
	ctx := cmd.Context()

	accountID, err := requireAccount()
	if err != nil {
		return err
	}

	return withDeps(func(d *Deps) error {
		monitoring := d.Monitoring
		if hitsFile != "" {
			hits, err := loadHitsFile(hitsFile)
			if err != nil {
				return err
			}
			search := func(ctx context.Context, account *entities.Account, term string) ([]workflow.SourceHit, error) {
				return hits, nil
			}
			monitoring = workflow.NewMonitoringProcess(d.Engine, d.Store, search, d.Ingestion)
		}

		result := monitoring.Run(ctx, d.TenantID, accountID, searchTerm)
		if result.Status != workflow.StatusCompleted {
			return fmt.Errorf("monitoring sweep failed: %s", result.Err)
		}

		fmt.Printf("Sweep complete for %s: %d hits, %d already seen, %d ingested\n",
			accountID, result.Hits, result.Skipped, len(result.Ingestions))
		for _, ing := range result.Ingestions {
			printIngestionResult(ing)
		}
		return nil
	})
}
