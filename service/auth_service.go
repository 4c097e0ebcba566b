// Package service contains the authentication orchestrator: the state
// machine tying the wallet gateway, ledger gateway, credential issuer and
// session store into one flow. All shared mutable state (wallet
// connection, current user, active ledger handle) is owned here; only one
// register/authenticate attempt may be in flight at a time.
package service

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/challenge"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/ports"
)

// LedgerFactory constructs a ledger gateway bound to the contract
// coordinates of one chain. The orchestrator calls it whenever the active
// chain changes, so coordinates are never reused across networks.
type LedgerFactory func(ctx context.Context, chainID *big.Int) (ports.LedgerGateway, error)

// AuthService orchestrates the authentication flow.
type AuthService struct {
	wallet    ports.WalletGateway
	ledgerFor LedgerFactory
	issuer    ports.CredentialIssuer
	store     ports.SessionStore
	events    ports.EventPublisher // optional; nil disables events
	log       logrus.FieldLogger

	mu          sync.Mutex
	inFlight    bool
	state       State
	conn        core.WalletConnection
	ledger      ports.LedgerGateway
	ledgerChain *big.Int
	user        *core.Identity
	subscribers []func(StateChange)
}

// NewAuthService creates a new orchestrator in the Idle state.
func NewAuthService(
	wallet ports.WalletGateway,
	ledgerFor LedgerFactory,
	issuer ports.CredentialIssuer,
	store ports.SessionStore,
	events ports.EventPublisher,
	log logrus.FieldLogger,
) *AuthService {
	return &AuthService{
		wallet:    wallet,
		ledgerFor: ledgerFor,
		issuer:    issuer,
		store:     store,
		events:    events,
		log:       log,
		state:     StateIdle,
	}
}

// Subscribe registers a callback invoked on every state transition.
func (s *AuthService) Subscribe(fn func(StateChange)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// State returns the current state.
func (s *AuthService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentUser returns the authenticated identity, or nil.
func (s *AuthService) CurrentUser() *core.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Wallet returns the current wallet connection record.
func (s *AuthService) Wallet() core.WalletConnection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// IsAuthenticated reports whether a stored credential exists and still
// validates. The store never checks expiry itself; the composition
// happens here.
func (s *AuthService) IsAuthenticated() bool {
	token, err := s.store.Load()
	if err != nil {
		return false
	}
	_, err = s.issuer.Validate(token)
	return err == nil
}

// RestoreSession rebuilds the authenticated user from a stored credential
// on startup. An invalid or expired credential is discarded and the user
// is simply unauthenticated; restoration never hard-fails.
func (s *AuthService) RestoreSession() (*core.Identity, bool) {
	token, err := s.store.Load()
	if err != nil {
		return nil, false
	}

	cred, err := s.issuer.Validate(token)
	if err != nil {
		s.log.WithError(err).Info("discarding invalid stored session")
		if clearErr := s.store.Clear(); clearErr != nil {
			s.log.WithError(clearErr).Warn("failed to clear invalid session")
		}
		return nil, false
	}

	identity := core.Identity{Address: cred.Address, Username: cred.Username}

	s.mu.Lock()
	s.user = &identity
	s.mu.Unlock()
	s.transition(StateAuthenticated, "")

	return &identity, true
}

// Connect establishes the wallet connection without authenticating.
func (s *AuthService) Connect(ctx context.Context) (core.WalletConnection, error) {
	if err := s.begin(); err != nil {
		return core.WalletConnection{}, err
	}
	defer s.end()

	conn, err := s.ensureConnected(ctx)
	if err != nil {
		return core.WalletConnection{}, err
	}
	return conn, nil
}

// Disconnect nulls the wallet connection. The session credential is left
// untouched; wallet and session lifecycles are deliberately independent.
func (s *AuthService) Disconnect() {
	s.mu.Lock()
	s.conn = core.WalletConnection{}
	s.ledger = nil
	s.ledgerChain = nil
	s.mu.Unlock()
	s.log.Info("wallet disconnected")
}

// Register submits a registration for username and, on success, falls
// through into the authentication flow.
func (s *AuthService) Register(ctx context.Context, username string) (core.Identity, error) {
	if err := s.begin(); err != nil {
		return core.Identity{}, err
	}
	defer s.end()

	conn, err := s.ensureConnected(ctx)
	if err != nil {
		return core.Identity{}, err
	}

	s.transition(StateRegistering, "")

	ledger := s.activeLedger()
	receipt, err := ledger.RegisterUser(ctx, username, "")
	if err != nil {
		return core.Identity{}, s.fail(err)
	}
	s.log.WithFields(logrus.Fields{
		"address":  conn.Address.Hex(),
		"username": username,
		"tx":       receipt.TxHash.Hex(),
	}).Info("user registered")

	s.publish(ctx, func(ctx context.Context, p ports.EventPublisher) error {
		return p.PublishRegistered(ctx, conn.Address.Hex(), username)
	})

	// Registration implies an immediate authenticate pass.
	return s.authenticate(ctx, username)
}

// Authenticate runs the challenge/sign/login flow. A non-empty username
// overrides the ledger-reported one in the issued credential.
func (s *AuthService) Authenticate(ctx context.Context, username string) (core.Identity, error) {
	if err := s.begin(); err != nil {
		return core.Identity{}, err
	}
	defer s.end()

	if _, err := s.ensureConnected(ctx); err != nil {
		return core.Identity{}, err
	}

	return s.authenticate(ctx, username)
}

// Logout clears the session credential. The wallet connection stays up.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.mu.Lock()
	var address string
	if s.user != nil {
		address = s.user.Address.Hex()
	}
	s.user = nil
	s.mu.Unlock()

	if address != "" {
		s.publish(ctx, func(ctx context.Context, p ports.EventPublisher) error {
			return p.PublishLogout(ctx, address)
		})
	}

	s.transition(StateIdle, "")
	s.log.Info("logged out")
	return nil
}

// authenticate is the shared sign → login → issue → persist sub-flow.
// The caller holds the in-flight guard and has ensured a connection.
func (s *AuthService) authenticate(ctx context.Context, username string) (core.Identity, error) {
	conn := s.Wallet()
	ledger := s.activeLedger()

	s.transition(StateAuthenticating, "")

	nonce, err := challenge.NewNonce()
	if err != nil {
		return core.Identity{}, s.fail(err)
	}
	message := challenge.Message(nonce)

	if _, err := s.wallet.SignMessage(ctx, message); err != nil {
		return core.Identity{}, s.fail(err)
	}

	s.transition(StateVerifying, "")

	receipt, err := ledger.Login(ctx)
	if err != nil {
		return core.Identity{}, s.fail(err)
	}
	s.log.WithField("tx", receipt.TxHash.Hex()).Info("login recorded on ledger")

	info, err := ledger.GetUserInfo(ctx, conn.Address)
	if err != nil {
		return core.Identity{}, s.fail(err)
	}

	// The caller-supplied username wins over the ledger-reported one.
	name := username
	if name == "" {
		name = info.Username
	}

	token, err := s.issuer.Issue(conn.Address, name)
	if err != nil {
		return core.Identity{}, s.fail(err)
	}

	if err := s.store.Save(token); err != nil {
		return core.Identity{}, s.fail(err)
	}

	identity := core.Identity{Address: conn.Address, Username: name}

	s.mu.Lock()
	s.user = &identity
	s.mu.Unlock()

	s.publish(ctx, func(ctx context.Context, p ports.EventPublisher) error {
		return p.PublishLogin(ctx, identity.Address.Hex(), identity.Username)
	})

	s.transition(StateAuthenticated, "")
	s.log.WithFields(logrus.Fields{
		"address":  identity.Address.Hex(),
		"username": identity.Username,
	}).Info("authenticated")

	return identity, nil
}

// ensureConnected establishes the wallet connection and the matching
// ledger gateway if either is missing. A ledger handle built for another
// chain is discarded, never reused.
func (s *AuthService) ensureConnected(ctx context.Context) (core.WalletConnection, error) {
	s.mu.Lock()
	conn := s.conn
	chain := s.ledgerChain
	s.mu.Unlock()

	if !conn.Connected {
		s.transition(StateConnecting, "")

		fresh, err := s.wallet.Connect(ctx)
		if err != nil {
			return core.WalletConnection{}, s.fail(err)
		}
		if !fresh.Connected {
			return core.WalletConnection{}, s.fail(fmt.Errorf("%w: wallet connection declined", core.ErrUserDeclined))
		}
		conn = fresh

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{
			"address": conn.Address.Hex(),
			"chain":   conn.ChainID.String(),
		}).Info("wallet connected")
	}

	if s.activeLedger() == nil || chain == nil || chain.Cmp(conn.ChainID) != 0 {
		ledger, err := s.ledgerFor(ctx, conn.ChainID)
		if err != nil {
			return core.WalletConnection{}, s.fail(err)
		}
		s.mu.Lock()
		s.ledger = ledger
		s.ledgerChain = new(big.Int).Set(conn.ChainID)
		s.mu.Unlock()
	}

	s.transition(StateConnected, "")
	return conn, nil
}

func (s *AuthService) activeLedger() ports.LedgerGateway {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger
}

// begin acquires the single-flight guard. A Failed state left over from a
// previous attempt resets to Idle here, on the next user action.
func (s *AuthService) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return core.ErrAuthInFlight
	}
	s.inFlight = true
	if s.state == StateFailed {
		s.state = StateIdle
	}
	return nil
}

func (s *AuthService) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// fail moves to Failed carrying the error message verbatim and returns
// the error unchanged for the caller.
func (s *AuthService) fail(err error) error {
	s.log.WithError(err).Warn("authentication attempt failed")
	s.transition(StateFailed, err.Error())
	return err
}

func (s *AuthService) transition(state State, reason string) {
	s.mu.Lock()
	s.state = state
	subs := make([]func(StateChange), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	change := StateChange{State: state, Reason: reason}
	for _, fn := range subs {
		fn(change)
	}
}

// publish runs an event publication, logging rather than failing on
// error: events are advisory, the store is the source of session truth.
func (s *AuthService) publish(ctx context.Context, fn func(context.Context, ports.EventPublisher) error) {
	if s.events == nil {
		return
	}
	if err := fn(ctx, s.events); err != nil {
		s.log.WithError(err).Warn("failed to publish auth event")
	}
}
