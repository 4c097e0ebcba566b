package ports

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
)

// CredentialIssuer mints and validates session credentials.
type CredentialIssuer interface {
	// Issue produces a signed session token for a verified identity.
	// Failure to sign is a configuration fault, not a runtime condition.
	Issue(address common.Address, username string) (string, error)

	// Validate parses and verifies a session token. Tampered, expired and
	// malformed tokens fail with core.ErrCredentialSignature,
	// core.ErrCredentialExpired and core.ErrCredentialMalformed
	// respectively.
	Validate(token string) (*core.Credential, error)
}
