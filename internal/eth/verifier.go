package eth

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/propchain/gatekeeper/core"
	"github.com/propchain/gatekeeper/ports"
)

// Verifier recovers the signer address of EIP-191 personal messages, the
// scheme wallets use for `personal_sign`.
type Verifier struct{}

// NewVerifier creates a new personal-message signature verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// RecoverAddress recovers the address that signed message. The signature is
// the 0x-prefixed 65-byte wallet output with V in {0, 1, 27, 28}.
func (v *Verifier) RecoverAddress(ctx context.Context, message string, signature string) (string, error) {
	decodedSig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("failed to decode signature: %w", core.ErrInvalidSignature)
	}
	if len(decodedSig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be 65 bytes: %w", core.ErrInvalidSignature)
	}

	// Wallets return V as 27/28; go-ethereum expects 0/1.
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, decodedSig)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	hash := accounts.TextHash([]byte(message))

	pubKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return "", fmt.Errorf("failed to recover public key: %w", core.ErrInvalidSignature)
	}

	return crypto.PubkeyToAddress(*pubKey).Hex(), nil
}

// SameAddress compares two addresses case-insensitively.
func SameAddress(a, b string) bool {
	return common.HexToAddress(a) == common.HexToAddress(b)
}

// NormalizeAddress returns the EIP-55 checksummed form of an address, the
// canonical representation used for storage and lookups.
func NormalizeAddress(address string) string {
	return common.HexToAddress(address).Hex()
}

var _ ports.SignatureVerifier = (*Verifier)(nil)
