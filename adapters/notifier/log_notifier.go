package notifier

import (
	"context"
	"log"

	"github.com/propchain/gatekeeper/ports"
)

// LogNotifier writes notifications to the process log instead of sending
// mail. Used when SMTP is not configured, e.g. in local development.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (LogNotifier) Send(ctx context.Context, to string, kind ports.NotificationKind, token string) error {
	log.Printf("notification %s for %s: token=%s", kind, to, token)
	return nil
}

var _ ports.Notifier = (*LogNotifier)(nil)
