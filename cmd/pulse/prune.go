package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newPruneCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete stale rejection history",
		Long:  "Deletes rejection records older than the cutoff. Old rejections barely affect scoring but still cost a row per score.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(cmd, days)
		},
	}

	cmd.Flags().IntVar(&days, "days", 90, "Delete rejections older than this many days")

	return cmd
}

func runPrune(cmd *cobra.Command, days int) error {
	ctx := cmd.Context()

	if days <= 0 {
		return fmt.Errorf("--days must be positive")
	}

	return withDeps(func(d *Deps) error {
		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		pruned, err := d.Store.PruneRejections(ctx, d.TenantID, cutoff)
		if err != nil {
			return fmt.Errorf("pruning rejections: %w", err)
		}
		fmt.Printf("Pruned %d rejection records older than %d days\n", pruned, days)
		return nil
	})
}
