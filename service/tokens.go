package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/propchain/gatekeeper/core"
	"github.com/propchain/gatekeeper/ports"
)

// TokenIssuer mints access/refresh token pairs and manages the server-side
// refresh record. At most one refresh token is valid per subject: Issue
// overwrites the record, so every issuance supersedes the previous token.
type TokenIssuer struct {
	tokenizer  ports.Tokenizer
	tickets    ports.TicketStore
	users      ports.UserStore
	refreshTTL time.Duration
}

// NewTokenIssuer creates a token issuer. refreshTTL must match the validity
// window the tokenizer signs refresh tokens with, so the stored record and
// the token expire together.
func NewTokenIssuer(tokenizer ports.Tokenizer, tickets ports.TicketStore, users ports.UserStore, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		tokenizer:  tokenizer,
		tickets:    tickets,
		users:      users,
		refreshTTL: refreshTTL,
	}
}

// Issue mints a token pair for the user and registers the refresh token
// under the subject id. This registration is the rotation point.
func (i *TokenIssuer) Issue(ctx context.Context, user *core.User) (*core.TokenPair, error) {
	claims := core.TokenClaims{UserID: user.ID, Email: user.Email}

	accessToken, err := i.tokenizer.SignAccessToken(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := i.tokenizer.SignRefreshToken(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	if err := i.tickets.Put(ctx, ports.NamespaceRefresh, user.ID, refreshToken, i.refreshTTL); err != nil {
		return nil, fmt.Errorf("failed to register refresh token: %w", err)
	}

	return &core.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Renew validates the presented refresh token, cross-checks it against the
// stored record and issues a fresh pair. A token revoked by logout or
// superseded by a later refresh fails even if its signature is still valid.
func (i *TokenIssuer) Renew(ctx context.Context, refreshToken string) (*core.TokenPair, error) {
	claims, err := i.tokenizer.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, core.ErrInvalidRefreshToken
	}

	user, err := i.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	match, err := i.tickets.PeekCompare(ctx, ports.NamespaceRefresh, user.ID, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if !match {
		return nil, core.ErrInvalidRefreshToken
	}

	return i.Issue(ctx, user)
}

// Revoke deletes the stored refresh token for the subject. Idempotent.
func (i *TokenIssuer) Revoke(ctx context.Context, userID string) error {
	if err := i.tickets.Delete(ctx, ports.NamespaceRefresh, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
