package ports

import "github.com/propchain/gatekeeper/core"

// Tokenizer converts between identities and signed tokens. Access and
// refresh tokens are signed with distinct secrets; parse failures of any
// kind (signature, expiry, audience) surface as a single error.
type Tokenizer interface {
	SignAccessToken(claims core.TokenClaims) (string, error)
	SignRefreshToken(claims core.TokenClaims) (string, error)
	ParseAccessToken(token string) (*core.TokenClaims, error)
	ParseRefreshToken(token string) (*core.TokenClaims, error)
}
