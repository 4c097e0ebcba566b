package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
)

// LedgerGateway abstracts the on-chain registration/login bookkeeping.
// Write operations wait for inclusion before returning; an in-flight
// transaction cannot be aborted, but waiting is bounded and a timeout is
// reported as core.ErrLedgerTimeout.
type LedgerGateway interface {
	// RegisterUser submits a registration transaction. The ledger enforces
	// username and address uniqueness.
	RegisterUser(ctx context.Context, username, passwordHash string) (core.TxReceipt, error)

	// Login submits a login-record transaction. A mined transaction from
	// the signing account is itself the ledger-side proof of liveness.
	Login(ctx context.Context) (core.TxReceipt, error)

	// VerifySignature is a read-only call checking a signature over a
	// message against the caller's account.
	VerifySignature(ctx context.Context, message, signature string) (bool, error)

	// GetUserInfo returns the registration record for an address.
	GetUserInfo(ctx context.Context, address common.Address) (core.UserInfo, error)

	// IsUserRegistered is a read-only existence check.
	IsUserRegistered(ctx context.Context, address common.Address) (bool, error)
}
