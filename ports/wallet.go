package ports

import (
	"context"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
)

// WalletGateway abstracts the external signing identity.
type WalletGateway interface {
	// Connect establishes a connection to the wallet. A user-declined
	// connection is a normal outcome: the returned record has
	// Connected=false and the error is nil. An error means the wallet
	// itself is unavailable.
	Connect(ctx context.Context) (core.WalletConnection, error)

	// SignMessage requests a signature over the exact message string.
	// The returned signature is 0x-prefixed hex. A declined prompt is
	// reported as core.ErrUserDeclined.
	SignMessage(ctx context.Context, message string) (string, error)
}
