package ports

import "context"

// Hasher is the password hashing primitive.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// SignatureVerifier recovers the signing address from a message signature.
// The recovered address is compared case-insensitively against the claimed
// one by the caller.
type SignatureVerifier interface {
	RecoverAddress(ctx context.Context, message string, signature string) (string, error)
}
