// Package notify decides which due items deserve a reminder right now
// and hands delivery requests to a platform notifier.
package notify

import "log/slog"

// Request is a notification handed to the delivery collaborator. The Tag
// carries the action id for de-duplication and click-routing.
type Request struct {
	Title               string
	Body                string
	Tag                 string
	RequiresInteraction bool
	ActionID            string
}

// Notifier is the platform delivery boundary. The engine decides whether
// and with what content to notify; rendering and permissioning live
// behind this interface.
type Notifier interface {
	Send(req Request) error
	// SetBadge sets the app icon badge to the current due-item count.
	SetBadge(count int) error
}

// LogNotifier writes notification requests to the structured log. It is
// the headless default delivery backend.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a LogNotifier on the given logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{log: logger}
}

func (n *LogNotifier) Send(req Request) error {
	n.log.Info("notification",
		"title", req.Title, "body", req.Body,
		"tag", req.Tag, "requires_interaction", req.RequiresInteraction)
	return nil
}

func (n *LogNotifier) SetBadge(count int) error {
	n.log.Info("badge", "count", count)
	return nil
}
