package mocks

import (
	"context"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
)

// NarrativeClient is a mock implementation of ports.NarrativeClient.
type NarrativeClient struct {
	Themes    []string
	ThemesErr error

	Card    *ports.Card
	CardErr error

	Variants    []entities.OutreachVariant
	OutreachErr error

	// CardRequests records every GenerateCard call for assertions.
	CardRequests []ports.CardRequest
}

// ExtractThemes returns the configured themes or error.
func (m *NarrativeClient) ExtractThemes(ctx context.Context, text string) ([]string, error) {
	if m.ThemesErr != nil {
		return nil, m.ThemesErr
	}
	return m.Themes, nil
}

// GenerateCard returns the configured card or error.
func (m *NarrativeClient) GenerateCard(ctx context.Context, req ports.CardRequest) (*ports.Card, error) {
	m.CardRequests = append(m.CardRequests, req)
	if m.CardErr != nil {
		return nil, m.CardErr
	}
	return m.Card, nil
}

// GenerateOutreach returns the configured variants or error.
func (m *NarrativeClient) GenerateOutreach(ctx context.Context, req ports.OutreachRequest) ([]entities.OutreachVariant, error) {
	if m.OutreachErr != nil {
		return nil, m.OutreachErr
	}
	return m.Variants, nil
}
