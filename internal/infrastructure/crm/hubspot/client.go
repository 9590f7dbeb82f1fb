// Package hubspot provides a CRMClient implementation for HubSpot.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clientpulse/pulse-core/internal/domain/ports"
	"github.com/clientpulse/pulse-core/internal/infrastructure/config"
)

// SystemName identifies this client during activation fan-out.
const SystemName = "hubspot"

// Client implements ports.CRMClient against the HubSpot CRM API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new HubSpot client.
func NewClient(cfg config.CRMSystemConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("hubspot token is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.hubapi.com"
	}

	return &Client{
		baseURL: baseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Name returns the system identifier.
func (c *Client) Name() string { return SystemName }

type taskBody struct {
	Properties taskProperties `json:"properties"`
}

type taskProperties struct {
	Subject   string `json:"hs_task_subject"`
	Body      string `json:"hs_task_body"`
	Status    string `json:"hs_task_status"`
	Timestamp string `json:"hs_timestamp"`
}

type taskResponse struct {
	ID string `json:"id"`
}

// CreateTask creates an activation task for the account.
func (c *Client) CreateTask(ctx context.Context, accountID string, payload ports.TaskPayload) (*ports.TaskRecord, error) {
	now := time.Now().UTC()
	body, err := json.Marshal(taskBody{
		Properties: taskProperties{
			Subject:   payload.Subject,
			Body:      fmt.Sprintf("%s\n\nAccount: %s\nOpportunity: %s", payload.Description, accountID, payload.OpportunityID),
			Status:    "NOT_STARTED",
			Timestamp: now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling task: %w", err)
	}

	url := c.baseURL + "/crm/v3/objects/tasks"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling hubspot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("hubspot returned %d: %s", resp.StatusCode, data)
	}

	var result taskResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &ports.TaskRecord{
		TaskID:    result.ID,
		CreatedAt: now,
	}, nil
}
