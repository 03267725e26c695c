// Package notify carries user-facing outcome messages. Presentation (toast,
// terminal, test recorder) is up to the Notifier implementation; callers only
// ever hand it message categories, never raw error text.
package notify

import (
	"postline/internal/models"
	"postline/internal/observability"
)

// Notifier receives user-facing outcome messages.
type Notifier interface {
	Success(message string)
	Failure(message string)
}

// Created reports the standard creation success message for a resource type.
func Created(n Notifier, resource string) {
	n.Success("Successfully created " + resource)
}

// ReportError maps err to its user-facing category and reports it.
func ReportError(n Notifier, err error) {
	n.Failure(models.UserMessage(err))
}

// LogNotifier writes notifications to the structured log. It is the default
// sink when no interactive presentation is wired in.
type LogNotifier struct {
	log *observability.Logger
}

// NewLogNotifier returns a Notifier backed by the given logger.
func NewLogNotifier(log *observability.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Success(message string) {
	n.log.Info("notification", "kind", "success", "message", message)
}

func (n *LogNotifier) Failure(message string) {
	n.log.Warn("notification", "kind", "failure", "message", message)
}
