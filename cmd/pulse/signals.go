package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const defaultListLimit = 20

func newSignalsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "signals",
		Short: "List an account's signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignals(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", defaultListLimit, "Maximum number of signals to display")

	return cmd
}

func runSignals(cmd *cobra.Command, limit int) error {
	ctx := cmd.Context()

	accountID, err := requireAccount()
	if err != nil {
		return err
	}

	return withDeps(func(d *Deps) error {
		signals, err := d.Store.ListSignals(ctx, d.TenantID, accountID, limit)
		if err != nil {
			return fmt.Errorf("listing signals: %w", err)
		}

		if len(signals) == 0 {
			fmt.Println("No signals found.")
			return nil
		}

		for _, signal := range signals {
			fmt.Printf("%s  [%s]  %s  (%s)\n", signal.ID, signal.WorkflowStatus, signal.Title, signal.SourceType)
			if signal.SourceURL != "" {
				fmt.Printf("  %s\n", signal.SourceURL)
			}
			if len(signal.Themes) > 0 {
				fmt.Printf("  themes: %v\n", signal.Themes)
			}
		}
		return nil
	})
}
