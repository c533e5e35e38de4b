package ports

import "context"

// NotificationKind selects the message template.
type NotificationKind string

const (
	NotificationVerifyEmail   NotificationKind = "verify_email"
	NotificationResetPassword NotificationKind = "reset_password"
)

// Notifier delivers out-of-band messages carrying a ticket. Fire and forget:
// the auth flows never consume a delivery result.
type Notifier interface {
	Send(ctx context.Context, to string, kind NotificationKind, token string) error
}
