package toast

import (
	"encoding/json"
	"log/slog"

	"github.com/gregdel/pushover"
	"github.com/r3labs/sse/v2"

	"github.com/VietCH57/What-to-watch/models"
)

// SSESink pushes every toast onto the local event stream so attached views
// can render it.
type SSESink struct {
	Server *sse.Server
	Stream string
}

func (s *SSESink) Publish(t models.Toast) {
	payload, err := json.Marshal(t)
	if err != nil {
		slog.Error("Failed to encode toast for event stream", slog.String("stack", err.Error()))
		return
	}
	s.Server.Publish(s.Stream, &sse.Event{Data: payload})
}

// PushoverSink forwards error toasts to Pushover. Success chatter stays
// local; nobody wants a phone buzz for "Added to favorites".
type PushoverSink struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
}

func NewPushoverSink(token, recipient string) *PushoverSink {
	return &PushoverSink{
		app:       pushover.New(token),
		recipient: pushover.NewRecipient(recipient),
	}
}

func (s *PushoverSink) Publish(t models.Toast) {
	if t.Severity != models.SeverityError {
		return
	}
	message := &pushover.Message{
		Message: t.Message,
		Title:   "What to Watch hit a problem",
	}
	if _, err := s.app.SendMessage(message, s.recipient); err != nil {
		slog.Error("Failed to forward toast to Pushover", slog.String("stack", err.Error()))
	}
}
