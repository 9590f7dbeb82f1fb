// Package main provides the entry point for the pulse CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version       = "0.1.0-dev"
	globalAccount string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "pulse",
		Short:   "Sales intelligence: turn account signals into reviewed, CRM-ready opportunities",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&globalAccount, "account", "a", "", "Account to operate on")

	rootCmd.AddCommand(
		newInitCmd(),
		newAccountsCmd(),
		newIngestCmd(),
		newMonitorCmd(),
		newWatchCmd(),
		newReviewCmd(),
		newActivateCmd(),
		newSignalsCmd(),
		newOpportunitiesCmd(),
		newPruneCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
