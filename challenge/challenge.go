// Package challenge produces the single-use nonce and the human-readable
// signing prompt used during authentication. The prompt must be reproduced
// byte-for-byte between the signing and verification call sites.
package challenge

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrBadMessage is returned when a message does not match the template.
var ErrBadMessage = errors.New("message does not match the challenge template")

// NonceSize is the number of random bytes in a nonce.
const NonceSize = 16

const (
	messagePrefix = "Sign this message to authenticate with Blockchain Authentication: "
	template      = messagePrefix + "%s"
)

// NewNonce returns a fresh 0x-prefixed hex nonce of NonceSize random bytes.
func NewNonce() (string, error) {
	buf := make([]byte, NonceSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hexutil.Encode(buf), nil
}

// Message embeds the nonce into the fixed signing prompt. Deterministic:
// the same nonce always yields the same message.
func Message(nonce string) string {
	return fmt.Sprintf(template, nonce)
}

// NonceFromMessage recovers the nonce from a prompt produced by Message.
func NonceFromMessage(message string) (string, error) {
	if !strings.HasPrefix(message, messagePrefix) {
		return "", ErrBadMessage
	}
	return strings.TrimPrefix(message, messagePrefix), nil
}
