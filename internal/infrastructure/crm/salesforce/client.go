// Package salesforce provides a CRMClient implementation for Salesforce.
package salesforce

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
const SystemName = "salesforce"

// Client implements ports.CRMClient against the Salesforce REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new Salesforce client.
func NewClient(cfg config.CRMSystemConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("salesforce base URL is required")
	}
	if cfg.Token == "" {
		return nil, errors.New("salesforce token is required")
	}

	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Name returns the system identifier.
func (c *Client) Name() string { return SystemName }

type taskBody struct {
	Subject     string `json:"Subject"`
	Description string `json:"Description"`
	WhatID      string `json:"WhatId,omitempty"`
	Status      string `json:"Status"`
}

type taskResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

// CreateTask creates an activation task on the account.
func (c *Client) CreateTask(ctx context.Context, accountID string, payload ports.TaskPayload) (*ports.TaskRecord, error) {
	body, err := json.Marshal(taskBody{
		Subject:     payload.Subject,
		Description: fmt.Sprintf("%s\n\nOpportunity: %s", payload.Description, payload.OpportunityID),
		WhatID:      accountID,
		Status:      "Not Started",
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling task: %w", err)
	}

	url := c.baseURL + "/services/data/v59.0/sobjects/Task"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling salesforce: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("salesforce returned %d: %s", resp.StatusCode, data)
	}

	var result taskResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if !result.Success {
		return nil, errors.New("salesforce reported failure")
	}

	return &ports.TaskRecord{
		TaskID:    result.ID,
		CreatedAt: time.Now().UTC(),
	}, nil
}
