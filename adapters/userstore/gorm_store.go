package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propchain/gatekeeper/core"
	"github.com/propchain/gatekeeper/ports"
)

// userRecord is the persistence shape of a user. Email and wallet address
// carry unique indexes so concurrent auto-provisioning of the same wallet
// resolves to a single row.
type userRecord struct {
	ID            string  `gorm:"primaryKey"`
	Email         string  `gorm:"uniqueIndex;not null"`
	WalletAddress *string `gorm:"uniqueIndex"`
	PasswordHash  *string
	Verified      bool `gorm:"not null;default:false"`
	Active        bool `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (userRecord) TableName() string { return "users" }

// GormUserStore implements the UserStore interface on a relational database.
type GormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore creates the store and runs the schema migration.
func NewGormUserStore(db *gorm.DB) (*GormUserStore, error) {
	if err := db.AutoMigrate(&userRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate users table: %w", err)
	}
	return &GormUserStore{db: db}, nil
}

// Create inserts a new user. Empty passwordHash or walletAddress are stored
// as NULL. Duplicate email or wallet address returns core.ErrConflict.
func (s *GormUserStore) Create(ctx context.Context, email, passwordHash, walletAddress string) (*core.User, error) {
	record := userRecord{
		ID:            uuid.New().String(),
		Email:         email,
		WalletAddress: nullable(walletAddress),
		PasswordHash:  nullable(passwordHash),
		Active:        true,
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, core.ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return toUser(record), nil
}

func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.findOne(ctx, "email = ?", email)
}

func (s *GormUserStore) FindByWallet(ctx context.Context, address string) (*core.User, error) {
	return s.findOne(ctx, "wallet_address = ?", address)
}

func (s *GormUserStore) FindByID(ctx context.Context, id string) (*core.User, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *GormUserStore) findOne(ctx context.Context, query string, arg string) (*core.User, error) {
	var record userRecord
	if err := s.db.WithContext(ctx).Where(query, arg).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return toUser(record), nil
}

func (s *GormUserStore) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	result := s.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *GormUserStore) MarkVerified(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", id).Update("verified", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark user verified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func toUser(record userRecord) *core.User {
	user := &core.User{
		ID:        record.ID,
		Email:     record.Email,
		Verified:  record.Verified,
		Active:    record.Active,
		CreatedAt: record.CreatedAt,
	}
	if record.WalletAddress != nil {
		user.WalletAddress = *record.WalletAddress
	}
	if record.PasswordHash != nil {
		user.PasswordHash = *record.PasswordHash
	}
	return user
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ ports.UserStore = (*GormUserStore)(nil)
