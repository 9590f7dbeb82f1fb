package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/workflow"
)

func newReviewCmd() *cobra.Command {
	var (
		action string
		reason string
		user   string
	)

	cmd := &cobra.Command{
		Use:   "review <opportunity-id>",
		Short: "Review a drafted opportunity",
		Long:  "Presents the opportunity card and delivers your decision (approve, reject or refine) to the waiting review.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(cmd, args[0], action, reason, user)
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "Decision: approve, reject or refine (prompted when omitted)")
	cmd.Flags().StringVar(&reason, "reason", "", "Decision reason")
	cmd.Flags().StringVar(&user, "user", "", "Reviewer's user id")

	return cmd
}

func runReview(cmd *cobra.Command, opportunityID, action, reason, user string) error {
	ctx := cmd.Context()

	accountID, err := requireAccount()
	if err != nil {
		return err
	}

	return withDeps(func(d *Deps) error {
		opp, err := d.Store.GetOpportunity(ctx, d.TenantID, accountID, opportunityID)
		if err != nil {
			return fmt.Errorf("loading opportunity: %w", err)
		}
		displayOpportunity(opp)

		results := make(chan workflow.ReviewResult, 1)
		go func() {
			results <- d.Review.Run(ctx, d.TenantID, accountID, opportunityID)
		}()

		runID := workflow.ReviewRunID(d.TenantID, accountID, opportunityID)
		if !awaitWaiting(d.Engine, runID, results) {
			result := <-results
			return fmt.Errorf("review did not reach pending state: %s", result.Err)
		}

		if action == "" {
			action, reason, user = promptDecision()
		}

		decision := entities.Decision{
			Action:    entities.ParseDecisionAction(action),
			Reason:    reason,
			UserID:    user,
			Timestamp: time.Now().UTC(),
		}
		if err := d.Engine.SubmitDecision(runID, decision); err != nil {
			return fmt.Errorf("submitting decision: %w", err)
		}

		result := <-results
		if result.Status != workflow.StatusCompleted {
			return fmt.Errorf("review failed: %s", result.Err)
		}

		fmt.Printf("Opportunity %s is now %s\n", result.OpportunityID, result.NewStatus)
		if result.NewStatus == entities.StatusApproved {
			fmt.Printf("Activate it with: pulse activate -a %s %s\n", accountID, result.OpportunityID)
		}
		return nil
	})
}

// awaitWaiting polls until the review instance is registered and waiting for
// a decision, or the review goroutine finishes early (bad state, store error).
func awaitWaiting(engine *workflow.Engine, runID string, results chan workflow.ReviewResult) bool {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if engine.Running(runID) {
			return true
		}
		select {
		case result := <-results:
			results <- result
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
	return false
}

func promptDecision() (action, reason, user string) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Decision [approve/reject/refine]: ")
	action, _ = reader.ReadString('\n')

	fmt.Print("Reason (optional): ")
	reason, _ = reader.ReadString('\n')

	fmt.Print("Your user id: ")
	user, _ = reader.ReadString('\n')

	return strings.TrimSpace(action), strings.TrimSpace(reason), strings.TrimSpace(user)
}

func displayOpportunity(opp *entities.Opportunity) {
	fmt.Printf("%s  [%s]  score %.1f\n", opp.ID, opp.Status, opp.Score)
	fmt.Printf("  %s\n", opp.Title)
	if opp.Description != "" {
		fmt.Printf("  %s\n", opp.Description)
	}
	if opp.Narrative != "" {
		fmt.Printf("\n  %s\n", opp.Narrative)
	}
	for _, point := range opp.KeyPoints {
		fmt.Printf("  - %s\n", point)
	}
	b := opp.Breakdown
	fmt.Printf("\n  impact %.0f | urgency %.0f | fit %.0f | access %.0f | feasibility %.0f | confidence %.0f\n",
		b.Impact, b.Urgency, b.Fit, b.Access, b.Feasibility, b.Confidence)
	if opp.FeedbackPenalty > 0 {
		fmt.Printf("  feedback penalty: %.2f (theme %q rejected before)\n", opp.FeedbackPenalty, opp.Theme)
	}
	for _, variant := range opp.DraftOutreach {
		fmt.Printf("\n  Draft %s (%s): %s\n", variant.Channel, variant.Tone, variant.Subject)
	}
	fmt.Println()
}
