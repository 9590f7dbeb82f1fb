package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/clientpulse/pulse-core/internal/domain/ports"
)

// CRMClient is a mock implementation of ports.CRMClient.
type CRMClient struct {
	mu sync.Mutex

	System string
	TaskID string
	Err    error

	// Calls records every CreateTask payload.
	Calls []ports.TaskPayload
}

// Name returns the configured system name.
func (m *CRMClient) Name() string { return m.System }

// CreateTask returns the configured record or error.
func (m *CRMClient) CreateTask(ctx context.Context, accountID string, payload ports.TaskPayload) (*ports.TaskRecord, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, payload)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return &ports.TaskRecord{TaskID: m.TaskID, CreatedAt: time.Now()}, nil
}
