package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/workflow"
)

func newIngestCmd() *cobra.Command {
	var (
		title       string
		description string
		sourceType  string
		sourceURL   string
		themes      []string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a signal for an account",
		Long:  "Stores a raw signal and runs discovery: evidence retrieval, opportunity card generation and scoring.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, title, description, sourceType, sourceURL, themes)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Signal headline")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Signal body text")
	cmd.Flags().StringVar(&sourceType, "source-type", string(entities.SourceNews), "Signal source type")
	cmd.Flags().StringVarP(&sourceURL, "url", "u", "", "Source URL")
	cmd.Flags().StringSliceVar(&themes, "themes", nil, "Business themes (extracted from the text when omitted)")

	return cmd
}

func runIngest(cmd *cobra.Command, title, description, sourceType, sourceURL string, themes []string) error {
	ctx := cmd.Context()

	accountID, err := requireAccount()
	if err != nil {
		return err
	}
	if title == "" {
		return fmt.Errorf("--title is required")
	}

	return withDeps(func(d *Deps) error {
		if len(themes) == 0 && description != "" {
			extracted, err := d.Narrative.ExtractThemes(ctx, title+"\n"+description)
			if err != nil {
				slog.Warn("theme extraction failed, using defaults", "error", err)
			} else {
				themes = extracted
			}
		}

		signal := &entities.Signal{
			TenantID:    d.TenantID,
			AccountID:   accountID,
			Title:       title,
			Description: description,
			SourceType:  entities.SourceType(sourceType),
			SourceURL:   sourceURL,
			Themes:      themes,
			CreatedAt:   time.Now().UTC(),
		}

		fmt.Printf("Ingesting signal for account %s...\n", accountID)
		result := d.Ingestion.Run(ctx, signal)
		printIngestionResult(result)

		if result.Status != workflow.StatusCompleted {
			return fmt.Errorf("ingestion failed: %s", result.Err)
		}
		return nil
	})
}

func printIngestionResult(result workflow.IngestionResult) {
	fmt.Printf("Signal %s: %s\n", result.SignalID, result.Status)

	if result.Discovery == nil {
		return
	}
	if result.Discovery.Status != workflow.StatusCompleted {
		fmt.Printf("Discovery failed: %s\n", result.Discovery.Err)
		return
	}

	fmt.Printf("Opportunity %s created (score %.1f", result.Discovery.OpportunityID, result.Discovery.Score)
	if result.Discovery.FeedbackPenalty > 0 {
		fmt.Printf(", feedback penalty %.2f", result.Discovery.FeedbackPenalty)
	}
	fmt.Println(")")
	fmt.Printf("Review it with: pulse review -a %s %s\n", globalAccount, result.Discovery.OpportunityID)
}
