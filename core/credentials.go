package core

// Credentials is the tagged union fed into the login flow. Exactly one of the
// concrete types below is accepted; the orchestrator dispatches on the type
// rather than on which optional fields happen to be set.
type Credentials interface {
	isCredentials()
}

// PasswordCredentials authenticates by email and password.
type PasswordCredentials struct {
	Email    string
	Password string
}

// WalletCredentials authenticates by Ethereum address and a signature over
// the server-defined challenge message.
type WalletCredentials struct {
	Address   string
	Signature string
}

func (PasswordCredentials) isCredentials() {}
func (WalletCredentials) isCredentials()   {}
