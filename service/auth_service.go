package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	passwordvalidator "github.com/wagslane/go-password-validator"

	"github.com/propchain/gatekeeper/core"
	"github.com/propchain/gatekeeper/ports"
)

const (
	// DefaultVerificationTTL bounds email-verification tickets.
	DefaultVerificationTTL = 24 * time.Hour

	// DefaultResetTTL bounds password-reset tickets.
	DefaultResetTTL = time.Hour

	// PasswordMinEntropyBits is the minimum entropy accepted for new
	// passwords.
	PasswordMinEntropyBits = 60
)

// resetTicket is the payload of a password-reset ticket. The expiry is
// redundant with the store TTL and checked as defense in depth.
type resetTicket struct {
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"`
}

// verificationTicket is the payload of an email-verification ticket.
type verificationTicket struct {
	UserID string `json:"user_id"`
}

// AuthService composes the credential verifier, token issuer and ticket
// store into the user-facing auth flows. All durable state lives in the user
// store and the ticket store; the service itself holds none.
type AuthService struct {
	users    ports.UserStore
	tickets  ports.TicketStore
	verifier *CredentialVerifier
	issuer   *TokenIssuer
	hasher   ports.Hasher
	notifier ports.Notifier
	eventPub ports.EventPublisher

	verificationTTL time.Duration
	resetTTL        time.Duration
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users ports.UserStore,
	tickets ports.TicketStore,
	verifier *CredentialVerifier,
	issuer *TokenIssuer,
	hasher ports.Hasher,
	notifier ports.Notifier,
	eventPub ports.EventPublisher,
) *AuthService {
	return &AuthService{
		users:           users,
		tickets:         tickets,
		verifier:        verifier,
		issuer:          issuer,
		hasher:          hasher,
		notifier:        notifier,
		eventPub:        eventPub,
		verificationTTL: DefaultVerificationTTL,
		resetTTL:        DefaultResetTTL,
	}
}

// Register creates a new identity and issues an email-verification ticket.
// Returns core.ErrConflict when the email or wallet address is taken.
func (s *AuthService) Register(ctx context.Context, email, password, walletAddress string) (*core.User, error) {
	if err := passwordvalidator.Validate(password, PasswordMinEntropyBits); err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrWeakPassword, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, hash, walletAddress)
	if err != nil {
		return nil, err
	}

	if err := s.issueVerificationTicket(ctx, user); err != nil {
		return nil, err
	}

	if err := s.eventPub.PublishRegistered(ctx, user.ID, user.Email); err != nil {
		log.Printf("failed to publish registered event for %s: %v", user.ID, err)
	}

	return user, nil
}

// Login authenticates the supplied credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, creds core.Credentials) (*core.TokenPair, *core.User, error) {
	var user *core.User
	var err error

	switch c := creds.(type) {
	case core.PasswordCredentials:
		if c.Email == "" || c.Password == "" {
			return nil, nil, core.ErrBadRequest
		}
		user, err = s.verifier.VerifyPassword(ctx, c.Email, c.Password)
	case core.WalletCredentials:
		if c.Address == "" || c.Signature == "" {
			return nil, nil, core.ErrBadRequest
		}
		user, err = s.verifier.VerifyWallet(ctx, c.Address, c.Signature)
	default:
		return nil, nil, core.ErrBadRequest
	}
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issuer.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return pair, user, nil
}

// Refresh rotates the refresh token and returns a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*core.TokenPair, error) {
	return s.issuer.Renew(ctx, refreshToken)
}

// Logout revokes the subject's refresh token. Idempotent.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.issuer.Revoke(ctx, userID); err != nil {
		return err
	}

	if err := s.eventPub.PublishLogout(ctx, userID); err != nil {
		// The token is already revoked in the store, which is the
		// critical part.
		log.Printf("failed to publish logout event for %s: %v", userID, err)
	}

	return nil
}

// ForgotPassword issues a password-reset ticket when the email belongs to an
// account. Unknown emails succeed identically so callers cannot probe for
// account existence.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	payload, err := json.Marshal(resetTicket{
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.resetTTL).UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode reset ticket: %w", err)
	}

	ticket := uuid.New().String()
	if err := s.tickets.PutUnique(ctx, ports.NamespaceReset, ticket, string(payload), s.resetTTL); err != nil {
		return fmt.Errorf("failed to store reset ticket: %w", err)
	}

	s.notify(ctx, user.Email, ports.NotificationResetPassword, ticket)

	return nil
}

// ResetPassword consumes a reset ticket and updates the password hash. The
// ticket is single use: a concurrent call with the same ticket fails.
func (s *AuthService) ResetPassword(ctx context.Context, ticket, newPassword string) error {
	if err := passwordvalidator.Validate(newPassword, PasswordMinEntropyBits); err != nil {
		return fmt.Errorf("%w: %s", core.ErrWeakPassword, err)
	}

	payload, err := s.tickets.Consume(ctx, ports.NamespaceReset, ticket)
	if err != nil {
		if errors.Is(err, ports.ErrTicketNotFound) {
			return core.ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("failed to consume reset ticket: %w", err)
	}

	var data resetTicket
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return core.ErrInvalidOrExpiredToken
	}

	// The store TTL should have evicted the entry already; the embedded
	// expiry catches entries that outlived it.
	if time.Now().UnixMilli() > data.ExpiresAt {
		return core.ErrInvalidOrExpiredToken
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, data.UserID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// VerifyEmail consumes a verification ticket and marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, ticket string) error {
	payload, err := s.tickets.Consume(ctx, ports.NamespaceVerification, ticket)
	if err != nil {
		if errors.Is(err, ports.ErrTicketNotFound) {
			return core.ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("failed to consume verification ticket: %w", err)
	}

	var data verificationTicket
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return core.ErrInvalidOrExpiredToken
	}

	if err := s.users.MarkVerified(ctx, data.UserID); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	return nil
}

// User returns the identity for a direct id lookup. Unlike email lookups,
// this surfaces core.ErrNotFound.
func (s *AuthService) User(ctx context.Context, id string) (*core.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *AuthService) issueVerificationTicket(ctx context.Context, user *core.User) error {
	payload, err := json.Marshal(verificationTicket{UserID: user.ID})
	if err != nil {
		return fmt.Errorf("failed to encode verification ticket: %w", err)
	}

	ticket := uuid.New().String()
	if err := s.tickets.PutUnique(ctx, ports.NamespaceVerification, ticket, string(payload), s.verificationTTL); err != nil {
		return fmt.Errorf("failed to store verification ticket: %w", err)
	}

	s.notify(ctx, user.Email, ports.NotificationVerifyEmail, ticket)

	return nil
}

// notify dispatches the send without waiting for delivery. Mail is fire and
// forget, and keeping delivery off the request path means the forgot-password
// flow takes the same time whether or not the email belongs to an account.
func (s *AuthService) notify(ctx context.Context, to string, kind ports.NotificationKind, token string) {
	go func(ctx context.Context) {
		if err := s.notifier.Send(ctx, to, kind, token); err != nil {
			log.Printf("failed to send %s email to %s: %v", kind, to, err)
		}
	}(context.WithoutCancel(ctx))
}
