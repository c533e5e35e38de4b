package tokenizer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/propchain/gatekeeper/core"
	"github.com/propchain/gatekeeper/ports"
)

const AudienceAccess = "auth:access"
const AudienceRefresh = "auth:refresh"

const (
	// DefaultAccessTTL is the default validity window for access tokens.
	DefaultAccessTTL = 15 * time.Minute

	// DefaultRefreshTTL is the default validity window for refresh tokens.
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs. Access
// and refresh tokens are signed with separate secrets so a leaked access
// secret cannot be used to mint refresh tokens.
type JWTTokenizer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTTokenizer creates a new JWT tokenizer with the default TTLs.
func NewJWTTokenizer(accessSecret, refreshSecret []byte) *JWTTokenizer {
	return &JWTTokenizer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     DefaultAccessTTL,
		refreshTTL:    DefaultRefreshTTL,
	}
}

// WithTTLs overrides the token validity windows. Zero values keep the
// current setting.
func (j *JWTTokenizer) WithTTLs(access, refresh time.Duration) *JWTTokenizer {
	if access > 0 {
		j.accessTTL = access
	}
	if refresh > 0 {
		j.refreshTTL = refresh
	}
	return j
}

// RefreshTTL returns the refresh token validity window. The token issuer
// uses it as the TTL for the server-side refresh record.
func (j *JWTTokenizer) RefreshTTL() time.Duration {
	return j.refreshTTL
}

// SignAccessToken mints a short-lived access token for the identity.
func (j *JWTTokenizer) SignAccessToken(tc core.TokenClaims) (string, error) {
	return j.sign(tc, AudienceAccess, j.accessTTL, j.accessSecret)
}

// SignRefreshToken mints a refresh token for the identity.
func (j *JWTTokenizer) SignRefreshToken(tc core.TokenClaims) (string, error) {
	return j.sign(tc, AudienceRefresh, j.refreshTTL, j.refreshSecret)
}

func (j *JWTTokenizer) sign(tc core.TokenClaims, audience string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tc.UserID,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{audience},
		},
		Email: tc.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ParseAccessToken validates an access token and returns its claims.
func (j *JWTTokenizer) ParseAccessToken(tokenStr string) (*core.TokenClaims, error) {
	return j.parse(tokenStr, AudienceAccess, j.accessSecret)
}

// ParseRefreshToken validates a refresh token and returns its claims.
func (j *JWTTokenizer) ParseRefreshToken(tokenStr string) (*core.TokenClaims, error) {
	return j.parse(tokenStr, AudienceRefresh, j.refreshSecret)
}

func (j *JWTTokenizer) parse(tokenStr, audience string, secret []byte) (*core.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithAudience(audience), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims type")
	}

	return &core.TokenClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
	}, nil
}

var _ ports.Tokenizer = (*JWTTokenizer)(nil)
