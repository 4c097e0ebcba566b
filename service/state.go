package service

// State names a position in the authentication flow.
type State string

const (
	StateIdle           State = "idle"
	StateConnecting     State = "connecting"
	StateConnected      State = "connected"
	StateRegistering    State = "registering"
	StateAuthenticating State = "authenticating"
	StateVerifying      State = "verifying"
	StateAuthenticated  State = "authenticated"
	StateFailed         State = "failed"
)

// StateChange is delivered to subscribers on every transition. Reason is
// set only when the new state is StateFailed and carries the failing
// gateway's message verbatim.
type StateChange struct {
	State  State
	Reason string
}
