package ports

import (
	"context"
	"errors"
	"time"
)

// Ticket namespaces. Each one partitions the key-value store; a ticket id is
// only meaningful within the namespace it was created under.
const (
	NamespaceRefresh      = "refresh_token"
	NamespaceReset        = "password_reset"
	NamespaceVerification = "email_verification"
)

// ErrTicketNotFound is returned by Consume and PeekCompare when no live
// entry exists for the key, either because it was never written, already
// consumed, or expired by the store.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrTicketExists is returned by PutUnique when the key is already taken.
var ErrTicketExists = errors.New("ticket already exists")

// TicketStore is the single-use, time-boxed token abstraction over a
// key-value backend with per-entry TTL. Refresh tokens, password-reset
// tickets and email-verification tickets all live here under different
// namespaces.
type TicketStore interface {
	// Put writes payload under the key, overwriting any previous value.
	// Refresh-token registration relies on the overwrite: re-issuing
	// always supersedes the prior token.
	Put(ctx context.Context, namespace, key, payload string, ttl time.Duration) error

	// PutUnique writes payload only if the key does not exist yet. Used
	// for reset/verification tickets where the key is the random ticket
	// id itself.
	PutUnique(ctx context.Context, namespace, key, payload string, ttl time.Duration) error

	// Consume atomically reads and deletes the entry. Two concurrent
	// callers must never both observe the value; exactly one succeeds,
	// the other gets ErrTicketNotFound.
	Consume(ctx context.Context, namespace, key string) (string, error)

	// PeekCompare reads the entry without deleting it and reports whether
	// it equals expected byte for byte. A missing entry compares false.
	PeekCompare(ctx context.Context, namespace, key, expected string) (bool, error)

	// Delete removes the entry. Idempotent.
	Delete(ctx context.Context, namespace, key string) error
}
