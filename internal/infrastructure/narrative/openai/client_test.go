package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
	"github.com/clientpulse/pulse-core/internal/infrastructure/config"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			cfg: config.LLMConfig{
				APIKey: "test-key",
			},
			wantErr: false,
		},
		{
			name: "valid config with model",
			cfg: config.LLMConfig{
				APIKey: "test-key",
				Model:  "gpt-4",
			},
			wantErr: false,
		},
		{
			name:    "missing API key",
			cfg:     config.LLMConfig{},
			wantErr: true,
			errMsg:  "API key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, client)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain json",
			input:    `{"title": "x"}`,
			expected: `{"title": "x"}`,
		},
		{
			name:     "json code block",
			input:    "```json\n{\"title\": \"x\"}\n```",
			expected: `{"title": "x"}`,
		},
		{
			name:     "bare code block",
			input:    "```\n{\"title\": \"x\"}\n```",
			expected: `{"title": "x"}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  {\"title\": \"x\"}  ",
			expected: `{"title": "x"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanJSONResponse(tt.input))
		})
	}
}

func TestClampBreakdown(t *testing.T) {
	b := clampBreakdown(entities.ScoreBreakdown{
		Impact:      150,
		Urgency:     -10,
		Fit:         75,
		Access:      100,
		Feasibility: 0,
		Confidence:  101,
	})

	assert.Equal(t, 100.0, b.Impact)
	assert.Equal(t, 0.0, b.Urgency)
	assert.Equal(t, 75.0, b.Fit)
	assert.Equal(t, 100.0, b.Access)
	assert.Equal(t, 0.0, b.Feasibility)
	assert.Equal(t, 100.0, b.Confidence)
}

func TestFallbackCard(t *testing.T) {
	card := fallbackCard(ports.CardRequest{
		SignalTitle:   "Acme expands into APAC",
		SignalSummary: "New regional HQ announced",
	})

	assert.Equal(t, "Acme expands into APAC", card.Title)
	assert.Equal(t, "New regional HQ announced", card.Narrative)
	// Neutral factors, so a fallback card scores exactly 50.
	assert.Equal(t, 50.0, card.Breakdown.Impact)
	assert.Equal(t, 50.0, card.Breakdown.Confidence)
}

func TestFormatEvidence(t *testing.T) {
	assert.Equal(t, "(none)", formatEvidence(nil))

	formatted := formatEvidence([]entities.Evidence{
		{SourceType: entities.SourceNews, Text: "regional hiring spike"},
		{SourceType: entities.SourceJobPosting, Text: "200 open roles"},
	})
	assert.Contains(t, formatted, "1. [news] regional hiring spike")
	assert.Contains(t, formatted, "2. [job_posting] 200 open roles")
}
