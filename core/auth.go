package core

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// CredentialTTL is the fixed validity window of a session credential.
const CredentialTTL = 24 * time.Hour

// Identity is the authenticated pairing of a chain address with the
// username the ledger (or the caller) assigned to it.
type Identity struct {
	Address  common.Address
	Username string
}

// Credential represents an authenticated session. It is the payload of the
// signed session token: who is logged in and for how long.
type Credential struct {
	Address   common.Address // Ethereum address of the user
	Username  string         // Username reported by the ledger or chosen by the caller
	IssuedAt  time.Time      // When the credential was issued
	ExpiresAt time.Time      // IssuedAt + CredentialTTL
}

// WalletConnection describes the active link to an external signing
// identity. It lives only for the process lifetime and is never persisted;
// a stored credential does not imply a live connection.
type WalletConnection struct {
	Address   common.Address
	ChainID   *big.Int
	Connected bool
}

// UserInfo mirrors the ledger's registration record for an address.
type UserInfo struct {
	Username         string
	IsActive         bool
	RegistrationTime time.Time
	LastLoginTime    *time.Time // nil if the user never logged in on-chain
}

// TxReceipt reports a mined ledger transaction.
type TxReceipt struct {
	TxHash common.Hash
}
