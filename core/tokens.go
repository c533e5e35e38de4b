package core

// TokenPair holds the signed bearer credentials returned by login and
// refresh. The access token is stateless; the refresh token additionally has
// a server-side record keyed by the subject id, and at most one refresh token
// per subject is valid at any time.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenClaims is the identity carried by both tokens.
type TokenClaims struct {
	UserID string
	Email  string
}
