package mocks

import (
	"context"
	"sync"

	"github.com/clientpulse/pulse-core/internal/domain/ports"
)

// Notifier is a mock implementation of ports.Notifier.
type Notifier struct {
	mu sync.Mutex

	Err error

	// Sent records every delivered notification.
	Sent []ports.Notification
}

// Notify records the notification or returns the configured error.
func (m *Notifier) Notify(ctx context.Context, n ports.Notification) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	m.Sent = append(m.Sent, n)
	m.mu.Unlock()
	return nil
}
