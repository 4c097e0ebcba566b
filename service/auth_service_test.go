package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/adapters/store"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/adapters/tokenizer"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/ports"
)

var testAddress = common.HexToAddress("0xABC0000000000000000000000000000000000042")

type fakeWallet struct {
	mu          sync.Mutex
	chainID     *big.Int
	declined    bool
	connectErr  error
	signErr     error
	signed      []string
	signBlock   chan struct{} // if set, SignMessage waits on it
	signEntered chan struct{} // closed once SignMessage is reached
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{chainID: big.NewInt(1337)}
}

func (w *fakeWallet) Connect(ctx context.Context) (core.WalletConnection, error) {
	if w.connectErr != nil {
		return core.WalletConnection{}, w.connectErr
	}
	if w.declined {
		return core.WalletConnection{Connected: false}, nil
	}
	return core.WalletConnection{Address: testAddress, ChainID: w.chainID, Connected: true}, nil
}

func (w *fakeWallet) SignMessage(ctx context.Context, message string) (string, error) {
	if w.signEntered != nil {
		close(w.signEntered)
		w.signEntered = nil
	}
	if w.signBlock != nil {
		<-w.signBlock
	}
	if w.signErr != nil {
		return "", w.signErr
	}
	w.mu.Lock()
	w.signed = append(w.signed, message)
	w.mu.Unlock()
	return "0xsignature", nil
}

type fakeLedger struct {
	registerErr error
	loginErr    error
	infoErr     error
	info        core.UserInfo

	registered []string
	logins     int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		info: core.UserInfo{Username: "ledger-name", IsActive: true, RegistrationTime: time.Now()},
	}
}

func (l *fakeLedger) RegisterUser(ctx context.Context, username, passwordHash string) (core.TxReceipt, error) {
	if l.registerErr != nil {
		return core.TxReceipt{}, l.registerErr
	}
	l.registered = append(l.registered, username)
	return core.TxReceipt{TxHash: common.HexToHash("0x01")}, nil
}

func (l *fakeLedger) Login(ctx context.Context) (core.TxReceipt, error) {
	if l.loginErr != nil {
		return core.TxReceipt{}, l.loginErr
	}
	l.logins++
	return core.TxReceipt{TxHash: common.HexToHash("0x02")}, nil
}

func (l *fakeLedger) VerifySignature(ctx context.Context, message, signature string) (bool, error) {
	return true, nil
}

func (l *fakeLedger) GetUserInfo(ctx context.Context, address common.Address) (core.UserInfo, error) {
	if l.infoErr != nil {
		return core.UserInfo{}, l.infoErr
	}
	return l.info, nil
}

func (l *fakeLedger) IsUserRegistered(ctx context.Context, address common.Address) (bool, error) {
	return len(l.registered) > 0, nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	events  []string
	lastCtx context.Context
}

func (p *recordingPublisher) record(ctx context.Context, kind string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, kind)
	p.lastCtx = ctx
}

func (p *recordingPublisher) PublishRegistered(ctx context.Context, address, username string) error {
	p.record(ctx, "registered")
	return nil
}

func (p *recordingPublisher) PublishLogin(ctx context.Context, address, username string) error {
	p.record(ctx, "login")
	return nil
}

func (p *recordingPublisher) PublishLogout(ctx context.Context, address string) error {
	p.record(ctx, "logout")
	return nil
}

type fixture struct {
	svc     *AuthService
	wallet  *fakeWallet
	ledger  *fakeLedger
	store   *store.MemoryStore
	pub     *recordingPublisher
	factory int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		wallet: newFakeWallet(),
		ledger: newFakeLedger(),
		store:  store.NewMemoryStore(),
		pub:    &recordingPublisher{},
	}

	issuer, err := tokenizer.NewJWTIssuer([]byte("service-test-secret"))
	require.NoError(t, err)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	factory := func(ctx context.Context, chainID *big.Int) (ports.LedgerGateway, error) {
		f.factory++
		return f.ledger, nil
	}

	f.svc = NewAuthService(f.wallet, factory, issuer, f.store, f.pub, log)
	return f
}

func TestFreshSessionIsUnauthenticated(t *testing.T) {
	f := newFixture(t)

	assert.False(t, f.svc.IsAuthenticated())
	assert.Nil(t, f.svc.CurrentUser())
	assert.Equal(t, StateIdle, f.svc.State())

	_, err := f.store.Load()
	assert.ErrorIs(t, err, core.ErrNoSession)
}

func TestRegisterFallsThroughToAuthenticated(t *testing.T) {
	f := newFixture(t)

	identity, err := f.svc.Register(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, StateAuthenticated, f.svc.State())
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, testAddress, identity.Address)

	assert.Equal(t, []string{"alice"}, f.ledger.registered)
	assert.Equal(t, 1, f.ledger.logins)
	assert.True(t, f.svc.IsAuthenticated())
	assert.Equal(t, []string{"registered", "login"}, f.pub.events)
}

func TestAuthenticateSignDeclinedLeavesStoreUntouched(t *testing.T) {
	f := newFixture(t)
	f.wallet.signErr = fmt.Errorf("%w: signature request rejected", core.ErrUserDeclined)

	var last StateChange
	f.svc.Subscribe(func(c StateChange) { last = c })

	_, err := f.svc.Authenticate(context.Background(), "")
	require.ErrorIs(t, err, core.ErrUserDeclined)

	assert.Equal(t, StateFailed, f.svc.State())
	assert.Equal(t, f.wallet.signErr.Error(), last.Reason)
	assert.Equal(t, 0, f.ledger.logins)

	_, loadErr := f.store.Load()
	assert.ErrorIs(t, loadErr, core.ErrNoSession)
}

func TestAuthenticateLedgerRejectedIssuesNoCredential(t *testing.T) {
	f := newFixture(t)
	f.ledger.loginErr = fmt.Errorf("%w: user not registered", core.ErrLedgerRejected)

	_, err := f.svc.Authenticate(context.Background(), "")
	require.ErrorIs(t, err, core.ErrLedgerRejected)

	assert.Equal(t, StateFailed, f.svc.State())
	assert.False(t, f.svc.IsAuthenticated())
	assert.Nil(t, f.svc.CurrentUser())

	_, loadErr := f.store.Load()
	assert.ErrorIs(t, loadErr, core.ErrNoSession)
}

func TestConnectDeclined(t *testing.T) {
	f := newFixture(t)
	f.wallet.declined = true

	_, err := f.svc.Authenticate(context.Background(), "")
	require.ErrorIs(t, err, core.ErrUserDeclined)
	assert.Equal(t, StateFailed, f.svc.State())
}

func TestUsernamePrecedence(t *testing.T) {
	t.Run("caller value wins", func(t *testing.T) {
		f := newFixture(t)
		identity, err := f.svc.Authenticate(context.Background(), "caller-name")
		require.NoError(t, err)
		assert.Equal(t, "caller-name", identity.Username)
	})

	t.Run("ledger value fills the gap", func(t *testing.T) {
		f := newFixture(t)
		identity, err := f.svc.Authenticate(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "ledger-name", identity.Username)
	})
}

func TestSecondAttemptWhileInFlightIsRejected(t *testing.T) {
	f := newFixture(t)
	f.wallet.signBlock = make(chan struct{})
	f.wallet.signEntered = make(chan struct{})
	entered := f.wallet.signEntered

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Authenticate(context.Background(), "")
		done <- err
	}()

	<-entered
	_, err := f.svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrAuthInFlight)

	close(f.wallet.signBlock)
	require.NoError(t, <-done)
	assert.Equal(t, StateAuthenticated, f.svc.State())
}

func TestLogoutKeepsWalletConnection(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Authenticate(context.Background(), "alice")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background()))

	assert.Equal(t, StateIdle, f.svc.State())
	assert.False(t, f.svc.IsAuthenticated())
	assert.Nil(t, f.svc.CurrentUser())
	assert.True(t, f.svc.Wallet().Connected)
	assert.Contains(t, f.pub.events, "logout")
}

func TestPublishCarriesCallerContext(t *testing.T) {
	f := newFixture(t)

	type tracerKey struct{}
	ctx := context.WithValue(context.Background(), tracerKey{}, "login-flow")

	_, err := f.svc.Authenticate(ctx, "alice")
	require.NoError(t, err)

	f.pub.mu.Lock()
	got := f.pub.lastCtx
	f.pub.mu.Unlock()

	require.NotNil(t, got)
	assert.Equal(t, "login-flow", got.Value(tracerKey{}))
}

func TestDisconnectKeepsSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Authenticate(context.Background(), "alice")
	require.NoError(t, err)

	f.svc.Disconnect()

	assert.False(t, f.svc.Wallet().Connected)
	assert.True(t, f.svc.IsAuthenticated())
}

func TestRestoreSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Authenticate(context.Background(), "alice")
	require.NoError(t, err)

	// A new orchestrator over the same store picks the session back up.
	restored := newFixture(t)
	restored.store = f.store
	issuer, err := tokenizer.NewJWTIssuer([]byte("service-test-secret"))
	require.NoError(t, err)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	restored.svc = NewAuthService(restored.wallet, func(ctx context.Context, chainID *big.Int) (ports.LedgerGateway, error) {
		return restored.ledger, nil
	}, issuer, f.store, nil, log)

	identity, ok := restored.svc.RestoreSession()
	require.True(t, ok)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, testAddress, identity.Address)
	assert.Equal(t, StateAuthenticated, restored.svc.State())
}

func TestRestoreSessionDiscardsInvalidCredential(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save("not a credential"))

	identity, ok := f.svc.RestoreSession()
	assert.False(t, ok)
	assert.Nil(t, identity)

	// The bad credential was discarded, not kept around.
	_, err := f.store.Load()
	assert.ErrorIs(t, err, core.ErrNoSession)
}

func TestLedgerRebuiltWhenChainChanges(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Authenticate(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, f.factory)

	// Same chain: the handle is reused.
	_, err = f.svc.Authenticate(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, f.factory)

	// Different chain after a reconnect: fresh coordinates, no stale reuse.
	f.svc.Disconnect()
	f.wallet.chainID = big.NewInt(1)
	_, err = f.svc.Authenticate(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, f.factory)
}

func TestStateSequenceOnHappyPath(t *testing.T) {
	f := newFixture(t)

	var states []State
	f.svc.Subscribe(func(c StateChange) { states = append(states, c.State) })

	_, err := f.svc.Authenticate(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, []State{
		StateConnecting,
		StateConnected,
		StateAuthenticating,
		StateVerifying,
		StateAuthenticated,
	}, states)
}

func TestFailedStateResetsOnNextAction(t *testing.T) {
	f := newFixture(t)
	f.wallet.signErr = errors.New("boom")

	_, err := f.svc.Authenticate(context.Background(), "")
	require.Error(t, err)
	require.Equal(t, StateFailed, f.svc.State())

	f.wallet.signErr = nil
	_, err = f.svc.Authenticate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, f.svc.State())
}

func TestSignedMessageCarriesNonceTemplate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Authenticate(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, f.wallet.signed, 1)
	assert.Contains(t, f.wallet.signed[0], "Sign this message to authenticate with Blockchain Authentication: 0x")
}
