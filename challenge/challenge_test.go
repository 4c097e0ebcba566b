package challenge

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNonceLength(t *testing.T) {
	nonce, err := NewNonce()
	require.NoError(t, err)

	raw, err := hexutil.Decode(nonce)
	require.NoError(t, err)
	assert.Len(t, raw, NonceSize)
}

func TestNewNonceUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		nonce, err := NewNonce()
		require.NoError(t, err)

		_, dup := seen[nonce]
		require.False(t, dup, "duplicate nonce after %d draws: %s", i, nonce)
		seen[nonce] = struct{}{}
	}
}

func TestMessageDeterministic(t *testing.T) {
	nonce, err := NewNonce()
	require.NoError(t, err)

	assert.Equal(t, Message(nonce), Message(nonce))
}

func TestMessageInjective(t *testing.T) {
	a := Message("0x00112233445566778899aabbccddeeff")
	b := Message("0xffeeddccbbaa99887766554433221100")
	assert.NotEqual(t, a, b)
}

func TestNonceFromMessage(t *testing.T) {
	nonce, err := NewNonce()
	require.NoError(t, err)

	recovered, err := NonceFromMessage(Message(nonce))
	require.NoError(t, err)
	assert.Equal(t, nonce, recovered)
}

func TestNonceFromMessageRejectsForeignText(t *testing.T) {
	_, err := NonceFromMessage("Please sign in to some other dapp: 0x00")
	assert.ErrorIs(t, err, ErrBadMessage)
}
