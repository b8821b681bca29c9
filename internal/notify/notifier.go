// Package notify is the boundary to whatever surfaces notifications to
// the user. The core only decides what to say and when; presentation
// and delivery channels live outside it.
package notify

import (
	"go.uber.org/zap"
)

// Notifier delivers a notification. Implementations get no feedback
// channel back into the core and must tolerate repeated delivery of
// the same logical occurrence under distinct IDs.
type Notifier interface {
	Deliver(id, title, body string) error
}

// LogNotifier writes notifications to the structured log. It is the
// default surface for headless runs and for tests.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Deliver(id, title, body string) error {
	n.logger.Info("notification",
		zap.String("id", id),
		zap.String("title", title),
		zap.String("body", body),
	)
	return nil
}
