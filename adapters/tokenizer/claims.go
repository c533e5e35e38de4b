package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines the standard claims with the identity email. The
// same shape is used for access and refresh tokens; the audience claim
// distinguishes them.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}
