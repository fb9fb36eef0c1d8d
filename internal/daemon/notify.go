package daemon

import (
	"github.com/rs/zerolog"

	"github.com/jfmyers9/earshot/internal/deeplink"
)

// Notification is emitted for every finished recognition
type Notification struct {
	Title  string
	Body   string
	Intent deeplink.Intent
}

// Notifier delivers notifications to the user
type Notifier interface {
	Notify(n Notification)
}

// LogNotifier writes notifications to the log
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notifier").Logger()}
}

// Notify implements Notifier
func (n *LogNotifier) Notify(notification Notification) {
	uri := ""
	if notification.Intent.URI != nil {
		uri = notification.Intent.URI.String()
	}
	n.logger.Info().
		Str("title", notification.Title).
		Str("body", notification.Body).
		Str("uri", uri).
		Msg("Notification")
}
