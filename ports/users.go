package ports

import (
	"context"

	"github.com/propchain/gatekeeper/core"
)

// UserStore owns identity persistence. Uniqueness of email and wallet
// address is enforced by the store; Create returns core.ErrConflict on a
// duplicate so that concurrent wallet auto-provisioning converges on a
// single record.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, walletAddress string) (*core.User, error)
	FindByEmail(ctx context.Context, email string) (*core.User, error)
	FindByWallet(ctx context.Context, address string) (*core.User, error)
	FindByID(ctx context.Context, id string) (*core.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	MarkVerified(ctx context.Context, id string) error
}
