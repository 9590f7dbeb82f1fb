package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
)

func newOpportunitiesCmd() *cobra.Command {
	var (
		limit  int
		status string
	)

	cmd := &cobra.Command{
		Use:   "opportunities",
		Short: "List an account's opportunities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpportunities(cmd, limit, status)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", defaultListLimit, "Maximum number of opportunities to display")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (e.g. draft, pending_review, approved)")

	return cmd
}

func runOpportunities(cmd *cobra.Command, limit int, status string) error {
	ctx := cmd.Context()

	accountID, err := requireAccount()
	if err != nil {
		return err
	}

	var filter entities.OpportunityStatus
	if status != "" {
		filter, err = entities.ParseOpportunityStatus(status)
		if err != nil {
			return err
		}
	}

	return withDeps(func(d *Deps) error {
		opportunities, err := d.Store.ListOpportunities(ctx, d.TenantID, accountID, limit)
		if err != nil {
			return fmt.Errorf("listing opportunities: %w", err)
		}

		shown := 0
		for _, opp := range opportunities {
			if filter != "" && opp.Status != filter {
				continue
			}
			shown++
			fmt.Printf("%s  [%s]  score %.1f  %s\n", opp.ID, opp.Status, opp.Score, opp.Title)
			if opp.Theme != "" {
				fmt.Printf("  theme: %s", opp.Theme)
				if opp.FeedbackPenalty > 0 {
					fmt.Printf("  (penalty %.2f)", opp.FeedbackPenalty)
				}
				fmt.Println()
			}
			for system, record := range opp.CRMRecords {
				fmt.Printf("  %s: %s\n", system, record.RecordID)
			}
		}

		if shown == 0 {
			fmt.Println("No opportunities found.")
		}
		return nil
	})
}
