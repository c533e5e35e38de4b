package service

import (
	"context"
	"crypto/ecdsa"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propchain/gatekeeper/core"
)

func newWallet(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func signChallenge(t *testing.T, key *ecdsa.PrivateKey, ts time.Time) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(ChallengeMessage(ts))), key)
	require.NoError(t, err)
	return hexutil.Encode(sig)
}

func TestLoginWallet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key, address := newWallet(t)
	signature := signChallenge(t, key, time.Now())

	pair, user, err := f.svc.Login(ctx, core.WalletCredentials{
		Address:   address,
		Signature: signature,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, address, user.WalletAddress)
	assert.False(t, user.HasPassword())

	t.Run("second login reuses the identity", func(t *testing.T) {
		_, again, err := f.svc.Login(ctx, core.WalletCredentials{
			Address:   address,
			Signature: signature,
		})
		require.NoError(t, err)
		assert.Equal(t, user.ID, again.ID)
	})

	t.Run("password login against a wallet-only account is refused", func(t *testing.T) {
		_, _, err := f.svc.Login(ctx, core.PasswordCredentials{
			Email:    user.Email,
			Password: "anything at all really",
		})
		assert.ErrorIs(t, err, core.ErrInvalidCredentials)
	})

	t.Run("wrong signer fails", func(t *testing.T) {
		otherKey, _ := newWallet(t)
		_, _, err := f.svc.Login(ctx, core.WalletCredentials{
			Address:   address,
			Signature: signChallenge(t, otherKey, time.Now()),
		})
		assert.ErrorIs(t, err, core.ErrInvalidSignature)
	})

	t.Run("mixed-case address still matches", func(t *testing.T) {
		_, again, err := f.svc.Login(ctx, core.WalletCredentials{
			Address:   strings.ToLower(address),
			Signature: signature,
		})
		require.NoError(t, err)
		assert.Equal(t, user.ID, again.ID)
	})
}

func TestWalletChallengeWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key, address := newWallet(t)

	t.Run("previous window accepted", func(t *testing.T) {
		signature := signChallenge(t, key, time.Now().Add(-ChallengeWindow))
		_, _, err := f.svc.Login(ctx, core.WalletCredentials{
			Address:   address,
			Signature: signature,
		})
		assert.NoError(t, err)
	})

	t.Run("stale window rejected", func(t *testing.T) {
		signature := signChallenge(t, key, time.Now().Add(-3*ChallengeWindow))
		_, _, err := f.svc.Login(ctx, core.WalletCredentials{
			Address:   address,
			Signature: signature,
		})
		assert.ErrorIs(t, err, core.ErrInvalidSignature)
	})
}

func TestWalletProvisioningConcurrency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key, address := newWallet(t)
	signature := signChallenge(t, key, time.Now())

	const callers = 16
	ids := make([]string, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			_, user, err := f.svc.Login(ctx, core.WalletCredentials{
				Address:   address,
				Signature: signature,
			})
			if assert.NoError(t, err) {
				ids[i] = user.ID
			}
		}(i)
	}
	wg.Wait()

	// Exactly one identity must exist; every caller sees the same id.
	user, err := f.users.FindByWallet(ctx, address)
	require.NoError(t, err)
	for i := 0; i < callers; i++ {
		assert.Equal(t, user.ID, ids[i])
	}
}
