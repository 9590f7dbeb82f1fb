// Package slack provides a Notifier implementation using Slack.
package slack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/clientpulse/pulse-core/internal/domain/ports"
	"github.com/clientpulse/pulse-core/internal/infrastructure/config"
)

// severityEmoji maps notification severities to message prefixes.
var severityEmoji = map[string]string{
	ports.SeverityInfo:    ":information_source:",
	ports.SeveritySuccess: ":white_check_mark:",
	ports.SeverityWarning: ":warning:",
	ports.SeverityError:   ":x:",
}

// Notifier implements ports.Notifier using a Slack bot. When no token is
// configured the notifier is disabled and Notify is a logged no-op, so
// installations without Slack still work.
type Notifier struct {
	client  *slack.Client
	channel string
}

// NewNotifier creates a Slack notifier from configuration.
func NewNotifier(cfg config.SlackConfig) *Notifier {
	if cfg.Token == "" {
		return &Notifier{}
	}
	return &Notifier{
		client:  slack.New(cfg.Token),
		channel: cfg.Channel,
	}
}

// Enabled reports whether a Slack token is configured.
func (n *Notifier) Enabled() bool {
	return n.client != nil
}

// Notify posts the notification to the configured channel, mentioning the
// target user.
func (n *Notifier) Notify(ctx context.Context, notification ports.Notification) error {
	if !n.Enabled() {
		slog.Debug("slack disabled, dropping notification",
			"user_id", notification.UserID, "title", notification.Title)
		return nil
	}

	emoji := severityEmoji[notification.Severity]
	if emoji == "" {
		emoji = severityEmoji[ports.SeverityInfo]
	}

	text := fmt.Sprintf("%s *%s*\n%s", emoji, notification.Title, notification.Message)
	if notification.UserID != "" {
		text = fmt.Sprintf("<@%s> %s", notification.UserID, text)
	}

	_, _, err := n.client.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl())
	if err != nil {
		return fmt.Errorf("posting slack message: %w", err)
	}
	return nil
}
