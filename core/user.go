package core

import "time"

// User represents an authenticated identity. The record is owned by the user
// store; this service only ever writes the password hash and the verified
// flag through dedicated store operations.
type User struct {
	ID            string    // Unique user identifier
	Email         string    // Unique email address
	WalletAddress string    // Optional Ethereum address, unique when present
	PasswordHash  string    // Empty for wallet-only accounts
	Verified      bool      // Email verified
	Active        bool      // Account enabled
	CreatedAt     time.Time // When the account was created
}

// HasPassword reports whether the account can be used for password login.
// Wallet-provisioned accounts carry no hash and must be refused on the
// password path rather than compared against a placeholder.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}
