package wallet

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
)

const testPassphrase = "correct horse battery staple"

func newTestWallet(t *testing.T) *KeystoreWallet {
	t.Helper()

	dir := t.TempDir()
	ks := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
	_, err := ks.NewAccount(testPassphrase)
	require.NoError(t, err)

	// Scrypt parameters are baked into the key file at creation, so the
	// light account stays cheap to unlock here.
	return NewKeystoreWallet(dir, testPassphrase, big.NewInt(1337))
}

func TestConnectEmptyKeystore(t *testing.T) {
	w := NewKeystoreWallet(t.TempDir(), testPassphrase, big.NewInt(1337))

	_, err := w.Connect(context.Background())
	assert.ErrorIs(t, err, core.ErrGatewayUnavailable)
}

func TestConnectWrongPassphrase(t *testing.T) {
	w := newTestWallet(t)
	w.passphrase = "nope"

	conn, err := w.Connect(context.Background())
	require.NoError(t, err)
	assert.False(t, conn.Connected)
}

func TestConnectAndSign(t *testing.T) {
	w := newTestWallet(t)

	conn, err := w.Connect(context.Background())
	require.NoError(t, err)
	require.True(t, conn.Connected)
	assert.Equal(t, int64(1337), conn.ChainID.Int64())

	message := "Sign this message to authenticate with Blockchain Authentication: 0x00112233445566778899aabbccddeeff"
	sig, err := w.SignMessage(context.Background(), message)
	require.NoError(t, err)

	recovered, err := RecoverAddress(message, sig)
	require.NoError(t, err)
	assert.Equal(t, conn.Address, recovered)

	// A different message must not verify against the same signature.
	other, err := RecoverAddress(message+" ", sig)
	require.NoError(t, err)
	assert.NotEqual(t, conn.Address, other)
}

func TestConnectSelectedAccount(t *testing.T) {
	dir := t.TempDir()
	ks := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
	_, err := ks.NewAccount(testPassphrase)
	require.NoError(t, err)
	second, err := ks.NewAccount(testPassphrase)
	require.NoError(t, err)

	w := NewKeystoreWallet(dir, testPassphrase, big.NewInt(1337))
	w.UseAccount(second.Address)

	conn, err := w.Connect(context.Background())
	require.NoError(t, err)
	require.True(t, conn.Connected)
	assert.Equal(t, second.Address, conn.Address)
}

func TestConnectSelectedAccountMissing(t *testing.T) {
	w := newTestWallet(t)
	w.UseAccount(common.HexToAddress("0x00000000000000000000000000000000deadbeef"))

	_, err := w.Connect(context.Background())
	assert.ErrorIs(t, err, core.ErrGatewayUnavailable)
}

func TestSignMessageRequiresConnection(t *testing.T) {
	w := newTestWallet(t)

	_, err := w.SignMessage(context.Background(), "hello")
	assert.ErrorIs(t, err, core.ErrNotConnected)
}
