package ports

import "context"

// Notification severities.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notification is an outcome message for an assigned user.
type Notification struct {
	UserID   string
	Title    string
	Message  string
	Severity string
}

// Notifier delivers process outcomes to users. Delivery is best-effort;
// callers treat failures as degradable.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
