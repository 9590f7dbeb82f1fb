// Package openai provides a NarrativeClient implementation using OpenAI.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
	"github.com/clientpulse/pulse-core/internal/infrastructure/config"
)

const themesPrompt = `You are a business analyst. Extract the business themes present in the given text.

Themes are short lowercase labels such as "growth", "market", "technology", "competitive", "hiring", "funding".

Return ONLY a valid JSON array of theme strings, no other text.

Example:
Input: "Acme announced a new regional HQ and 200 open engineering roles."
Output: ["growth", "hiring"]`

const cardPrompt = `You are a sales intelligence analyst. Build an opportunity card for the account team from a business signal and its supporting evidence.

Signal for account %q:
Title: %s
Summary: %s
Source type: %s
Themes: %s

Supporting evidence:
%s

Score each factor 0-100:
- impact: revenue potential of acting on this signal
- urgency: how time-sensitive the window is
- fit: alignment with what we sell
- access: strength of our relationships at this account
- feasibility: ability to deliver if we win
- confidence: how certain the underlying signal is

Return ONLY a valid JSON object, no other text:
{
  "title": "short opportunity title",
  "narrative": "2-3 sentence explanation of the opportunity",
  "key_points": ["..."],
  "action_items": ["..."],
  "stakeholder_hints": ["roles or people to involve"],
  "score_breakdown": {"impact": 0, "urgency": 0, "fit": 0, "access": 0, "feasibility": 0, "confidence": 0}
}`

const outreachPrompt = `You are a sales copywriter. Draft outreach for the opportunity below.

Account: %s
Opportunity: %s
Summary: %s
Stakeholders: %s

Produce exactly three variants: one email in a professional tone, one email in a warm tone, and one linkedin message in a brief tone.

Return ONLY a valid JSON array, no other text:
[
  {"channel": "email", "tone": "professional", "subject": "...", "body": "...", "call_to_action": "..."}
]`

// Client implements the NarrativeClient interface using OpenAI.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new OpenAI narrative client.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	client := openai.NewClient(cfg.APIKey)

	model := "gpt-4o-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// ExtractThemes extracts business themes from free text.
func (c *Client) ExtractThemes(ctx context.Context, text string) ([]string, error) {
	content, err := c.complete(ctx, themesPrompt, text)
	if err != nil {
		return nil, err
	}

	var themes []string
	if err := json.Unmarshal([]byte(cleanJSONResponse(content)), &themes); err != nil {
		return nil, fmt.Errorf("parsing themes JSON: %w (response: %s)", err, content)
	}
	return themes, nil
}

// GenerateCard builds an opportunity card from a signal and its evidence.
// A malformed model response falls back to a minimal card built from the
// signal itself rather than failing discovery.
func (c *Client) GenerateCard(ctx context.Context, req ports.CardRequest) (*ports.Card, error) {
	prompt := fmt.Sprintf(cardPrompt,
		req.AccountName, req.SignalTitle, req.SignalSummary,
		req.SourceType, strings.Join(req.Themes, ", "), formatEvidence(req.Evidence))

	content, err := c.complete(ctx, prompt, "")
	if err != nil {
		return nil, err
	}

	var raw rawCard
	if err := json.Unmarshal([]byte(cleanJSONResponse(content)), &raw); err != nil {
		slog.Warn("malformed card response, using fallback card",
			"signal_id", req.SignalID, "error", err)
		return fallbackCard(req), nil
	}

	card := &ports.Card{
		Title:            raw.Title,
		Narrative:        raw.Narrative,
		KeyPoints:        raw.KeyPoints,
		ActionItems:      raw.ActionItems,
		StakeholderHints: raw.StakeholderHints,
		Breakdown:        clampBreakdown(raw.Breakdown),
	}
	if card.Title == "" {
		card.Title = req.SignalTitle
	}
	return card, nil
}

// GenerateOutreach drafts outreach variants for a created opportunity.
func (c *Client) GenerateOutreach(ctx context.Context, req ports.OutreachRequest) ([]entities.OutreachVariant, error) {
	prompt := fmt.Sprintf(outreachPrompt,
		req.AccountName, req.OpportunityTitle, req.Summary,
		strings.Join(req.StakeholderHints, ", "))

	content, err := c.complete(ctx, prompt, "")
	if err != nil {
		return nil, err
	}

	var variants []entities.OutreachVariant
	if err := json.Unmarshal([]byte(cleanJSONResponse(content)), &variants); err != nil {
		return nil, fmt.Errorf("parsing outreach JSON: %w (response: %s)", err, content)
	}
	return variants, nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		},
	}
	if user != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: user,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// rawCard is the JSON structure for generated cards.
type rawCard struct {
	Title            string                  `json:"title"`
	Narrative        string                  `json:"narrative"`
	KeyPoints        []string                `json:"key_points"`
	ActionItems      []string                `json:"action_items"`
	StakeholderHints []string                `json:"stakeholder_hints"`
	Breakdown        entities.ScoreBreakdown `json:"score_breakdown"`
}

// fallbackCard builds a neutral card from the signal when the model
// response cannot be parsed.
func fallbackCard(req ports.CardRequest) *ports.Card {
	return &ports.Card{
		Title:     req.SignalTitle,
		Narrative: req.SignalSummary,
		Breakdown: entities.ScoreBreakdown{
			Impact: 50, Urgency: 50, Fit: 50, Access: 50, Feasibility: 50, Confidence: 50,
		},
	}
}

// clampBreakdown pins every factor to the 0-100 scale.
func clampBreakdown(b entities.ScoreBreakdown) entities.ScoreBreakdown {
	b.Impact = clamp(b.Impact)
	b.Urgency = clamp(b.Urgency)
	b.Fit = clamp(b.Fit)
	b.Access = clamp(b.Access)
	b.Feasibility = clamp(b.Feasibility)
	b.Confidence = clamp(b.Confidence)
	return b
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// formatEvidence renders evidence items as a numbered list for the prompt.
func formatEvidence(evidence []entities.Evidence) string {
	if len(evidence) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for i, ev := range evidence {
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, ev.SourceType, ev.Text)
	}
	return sb.String()
}

// cleanJSONResponse removes markdown code blocks if present.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
