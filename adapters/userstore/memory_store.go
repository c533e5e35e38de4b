package userstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/propchain/gatekeeper/core"
	"github.com/propchain/gatekeeper/ports"
)

// MemoryUserStore implements the UserStore interface with an in-memory map.
// This is primarily intended for testing purposes; it enforces the same
// email/wallet uniqueness as the relational store.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]*core.User
}

// NewMemoryUserStore creates a new MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*core.User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, email, passwordHash, walletAddress string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return nil, core.ErrConflict
		}
		if walletAddress != "" && strings.EqualFold(u.WalletAddress, walletAddress) {
			return nil, core.ErrConflict
		}
	}

	user := &core.User{
		ID:            uuid.New().String(),
		Email:         email,
		WalletAddress: walletAddress,
		PasswordHash:  passwordHash,
		Active:        true,
		CreatedAt:     time.Now(),
	}
	s.users[user.ID] = user

	copied := *user
	return &copied, nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.find(func(u *core.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *MemoryUserStore) FindByWallet(ctx context.Context, address string) (*core.User, error) {
	return s.find(func(u *core.User) bool {
		return u.WalletAddress != "" && strings.EqualFold(u.WalletAddress, address)
	})
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id string) (*core.User, error) {
	return s.find(func(u *core.User) bool { return u.ID == id })
}

func (s *MemoryUserStore) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	user.PasswordHash = hash
	return nil
}

func (s *MemoryUserStore) MarkVerified(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	user.Verified = true
	return nil
}

// Delete removes a user. Test helper.
func (s *MemoryUserStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
}

func (s *MemoryUserStore) find(match func(*core.User) bool) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, core.ErrNotFound
}

var _ ports.UserStore = (*MemoryUserStore)(nil)
