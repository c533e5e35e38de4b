package notifier

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/propchain/gatekeeper/ports"
)

// GomailNotifier implements the Notifier interface over SMTP.
type GomailNotifier struct {
	dialer  *gomail.Dialer
	from    string
	baseURL string
}

// NewGomailNotifier creates a new SMTP notifier. baseURL is the public
// address of the frontend that links embed.
func NewGomailNotifier(host string, port int, username, password, from, baseURL string) *GomailNotifier {
	return &GomailNotifier{
		dialer:  gomail.NewDialer(host, port, username, password),
		from:    from,
		baseURL: baseURL,
	}
}

// Send delivers the notification carrying the ticket.
func (n *GomailNotifier) Send(ctx context.Context, to string, kind ports.NotificationKind, token string) error {
	var subject, body string

	switch kind {
	case ports.NotificationVerifyEmail:
		subject = "Verify your email address"
		body = fmt.Sprintf("Welcome to PropChain!\n\nVerify your email address by opening %s/verify-email/%s\n\nThe link expires in 24 hours.", n.baseURL, token)
	case ports.NotificationResetPassword:
		subject = "Password reset request"
		body = fmt.Sprintf("A password reset was requested for your account.\n\nReset your password at %s/reset-password?token=%s\n\nThe link expires in 1 hour. If you did not request this, ignore this email.", n.baseURL, token)
	default:
		return fmt.Errorf("unknown notification kind %q", kind)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}
	return nil
}

var _ ports.Notifier = (*GomailNotifier)(nil)
