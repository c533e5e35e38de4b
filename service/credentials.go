package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/propchain/gatekeeper/core"
	"github.com/propchain/gatekeeper/internal/eth"
	"github.com/propchain/gatekeeper/ports"
)

// ChallengeWindow is the granularity of the timestamp baked into the sign-in
// message. The verifier accepts the current and the previous window, so a
// signature stays valid for at least one full window.
const ChallengeWindow = 5 * time.Minute

const walletEmailDomain = "wallet.auth"

// ChallengeMessage returns the server-defined text a wallet must sign to log
// in, bound to the timestamp bucket containing ts.
func ChallengeMessage(ts time.Time) string {
	bucket := ts.UTC().Truncate(ChallengeWindow).Unix()
	return fmt.Sprintf("Welcome to PropChain!\n\nClick to sign in and accept the Terms of Service.\n\nTimestamp: %d", bucket)
}

// CredentialVerifier validates email/password and wallet/signature pairs
// against stored user records.
type CredentialVerifier struct {
	users     ports.UserStore
	hasher    ports.Hasher
	signature ports.SignatureVerifier

	now func() time.Time
}

// NewCredentialVerifier creates a credential verifier.
func NewCredentialVerifier(users ports.UserStore, hasher ports.Hasher, signature ports.SignatureVerifier) *CredentialVerifier {
	return &CredentialVerifier{
		users:     users,
		hasher:    hasher,
		signature: signature,
		now:       time.Now,
	}
}

// VerifyPassword authenticates by email and password. Unknown email, missing
// password hash (wallet-only account) and wrong password all collapse into
// ErrInvalidCredentials; callers must not be able to tell them apart.
func (v *CredentialVerifier) VerifyPassword(ctx context.Context, email, password string) (*core.User, error) {
	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.HasPassword() {
		return nil, core.ErrInvalidCredentials
	}

	if !v.hasher.Verify(password, user.PasswordHash) {
		return nil, core.ErrInvalidCredentials
	}

	return user, nil
}

// VerifyWallet authenticates by Ethereum address and a signature over the
// challenge message. A first successful login auto-provisions an account
// with no password hash; the resulting Conflict under concurrent first
// logins is resolved by re-fetching the winner's record.
func (v *CredentialVerifier) VerifyWallet(ctx context.Context, address, signature string) (*core.User, error) {
	if !v.signatureMatches(ctx, address, signature) {
		return nil, core.ErrInvalidSignature
	}

	// Store and look up addresses in their checksummed form so differently
	// cased logins resolve to the same record.
	address = eth.NormalizeAddress(address)

	user, err := v.users.FindByWallet(ctx, address)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user, err = v.users.Create(ctx, walletEmail(address), "", address)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, core.ErrConflict) {
		return nil, fmt.Errorf("failed to provision wallet user: %w", err)
	}

	// Lost the provisioning race; the winner's record is authoritative.
	user, err = v.users.FindByWallet(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user after conflict: %w", err)
	}
	return user, nil
}

// signatureMatches checks the signature against the current and the previous
// challenge window.
func (v *CredentialVerifier) signatureMatches(ctx context.Context, address, signature string) bool {
	now := v.now()
	for _, ts := range []time.Time{now, now.Add(-ChallengeWindow)} {
		recovered, err := v.signature.RecoverAddress(ctx, ChallengeMessage(ts), signature)
		if err != nil {
			continue
		}
		if eth.SameAddress(recovered, address) {
			return true
		}
	}
	return false
}

func walletEmail(address string) string {
	return strings.ToLower(address) + "@" + walletEmailDomain
}
