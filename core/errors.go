package core

import "errors"

var (
	// ErrUserDeclined means the user rejected a wallet prompt. It is a
	// normal outcome of the flow, not a fault.
	ErrUserDeclined = errors.New("user declined the wallet request")

	// ErrGatewayUnavailable means no compatible wallet was found or the
	// network endpoint could not be reached.
	ErrGatewayUnavailable = errors.New("gateway unavailable")

	// ErrLedgerRejected means the contract reverted the transaction
	// (duplicate registration, unregistered login, insufficient funds).
	ErrLedgerRejected = errors.New("ledger rejected the transaction")

	// ErrLedgerTimeout means the transaction was submitted but inclusion
	// was not observed before the deadline. Not a success.
	ErrLedgerTimeout = errors.New("timed out waiting for transaction inclusion")

	// ErrCredentialExpired means the session token is past its expiry.
	ErrCredentialExpired = errors.New("credential has expired")

	// ErrCredentialSignature means the session token signature does not
	// verify against the configured secret.
	ErrCredentialSignature = errors.New("credential signature mismatch")

	// ErrCredentialMalformed means the session token could not be parsed.
	ErrCredentialMalformed = errors.New("credential is malformed")

	// ErrNoSession means no credential is stored.
	ErrNoSession = errors.New("no stored session")

	// ErrNotConnected means an operation required a live wallet connection.
	ErrNotConnected = errors.New("wallet is not connected")

	// ErrAuthInFlight means a second register/authenticate attempt was made
	// while one is still pending.
	ErrAuthInFlight = errors.New("another authentication attempt is in flight")

	// ErrConfiguration means required configuration is missing. Fatal,
	// never surfaced as a retryable user-facing message.
	ErrConfiguration = errors.New("invalid configuration")
)
