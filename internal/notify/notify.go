// Package notify delivers the operator notification raised when the gate
// opens.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Title is used for every gate notification.
const Title = "Gate Control System"

// Notification is a single message for the operator.
type Notification struct {
	Title   string
	Message string
	At      time.Time
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification", "title", n.Title, "message", n.Message, "at", n.At.Format(time.RFC3339))
	return nil
}

// CommandNotifier runs an operator-supplied shell command for each
// notification, e.g. `notify-send "$GATEWATCH_TITLE" "$GATEWATCH_MESSAGE"`.
type CommandNotifier struct {
	Command string
	Timeout time.Duration
}

func (c *CommandNotifier) Notify(ctx context.Context, n Notification) error {
	if c.Command == "" {
		return nil
	}
	env := map[string]string{
		"GATEWATCH_TITLE":   n.Title,
		"GATEWATCH_MESSAGE": n.Message,
		"GATEWATCH_TIME":    n.At.Format(time.RFC3339),
	}
	res := Execute(ctx, c.Command, c.Timeout, env)
	if res.Err != nil {
		if res.Output != "" {
			return fmt.Errorf("notify command: %w: %s", res.Err, res.Output)
		}
		return fmt.Errorf("notify command: %w", res.Err)
	}
	return nil
}

// Multi delivers to every notifier, continuing past failures.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
