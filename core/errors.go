package core

import "errors"

var (
	// ErrInvalidCredentials covers unknown email, wrong password and
	// password login against a wallet-only account. The cases are
	// deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidSignature is returned when a wallet signature does not
	// recover to the claimed address.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrBadRequest is returned when login input matches neither the
	// password nor the wallet credential shape.
	ErrBadRequest = errors.New("email/password or wallet address/signature required")

	// ErrConflict is returned when an identity with the same email or
	// wallet address already exists.
	ErrConflict = errors.New("user already exists")

	// ErrInvalidRefreshToken covers expired, malformed, revoked and
	// superseded refresh tokens uniformly.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrInvalidOrExpiredToken covers missing, consumed and expired
	// reset/verification tickets uniformly.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// ErrNotFound is returned by direct id lookups only; email lookups
	// never surface it to avoid account enumeration.
	ErrNotFound = errors.New("user not found")

	// ErrWeakPassword is returned when a new password does not meet the
	// minimum entropy requirement.
	ErrWeakPassword = errors.New("password is too weak")
)
