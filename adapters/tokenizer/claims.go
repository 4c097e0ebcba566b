package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the ledger-reported username.
// The subject is the user's Ethereum address.
type SessionClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}
