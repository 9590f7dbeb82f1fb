package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/clientpulse/pulse-core/internal/workflow"
)

func newActivateCmd() *cobra.Command {
	var systems []string

	cmd := &cobra.Command{
		Use:   "activate <opportunity-id>",
		Short: "Push an approved opportunity to CRM systems",
		Long:  "Fans an approved opportunity out to the target CRM systems. A partial activation can be retried; already activated systems are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivate(cmd, args[0], systems)
		},
	}

	cmd.Flags().StringSliceVar(&systems, "systems", nil, "Target CRM systems (defaults to the configured set)")

	return cmd
}

func runActivate(cmd *cobra.Command, opportunityID string, systems []string) error {
	ctx := cmd.Context()

	accountID, err := requireAccount()
	if err != nil {
		return err
	}

	return withDeps(func(d *Deps) error {
		if len(systems) == 0 {
			systems = d.Config.CRM.Systems
		}

		result := d.Activation.Run(ctx, d.TenantID, accountID, opportunityID, systems)
		if result.Status != workflow.StatusCompleted {
			return fmt.Errorf("activation failed: %s", result.Err)
		}

		names := make([]string, 0, len(result.Systems))
		for name := range result.Systems {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			outcome := result.Systems[name]
			if outcome.OK {
				fmt.Printf("  %s: ok (record %s)\n", name, outcome.RecordID)
			} else {
				fmt.Printf("  %s: failed (%s)\n", name, outcome.Err)
			}
		}

		fmt.Printf("Opportunity %s is now %s\n", result.OpportunityID, result.FinalStatus)
		return nil
	})
}
