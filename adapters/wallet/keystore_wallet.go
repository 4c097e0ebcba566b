// Package wallet adapts a go-ethereum keystore into the WalletGateway
// port. Unlocking the keystore account stands in for the wallet approval
// prompt: a failed unlock is a declined connection, not an error.
package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/ports"
)

// KeystoreWallet implements the WalletGateway interface over an encrypted
// keystore directory.
type KeystoreWallet struct {
	ks         *keystore.KeyStore
	passphrase string
	chainID    *big.Int

	mu       sync.Mutex
	selected *common.Address
	account  accounts.Account
	unlocked bool
}

// NewKeystoreWallet opens the keystore at dir. The chain ID identifies the
// network the connection will report.
func NewKeystoreWallet(dir, passphrase string, chainID *big.Int) *KeystoreWallet {
	return &KeystoreWallet{
		ks:         keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP),
		passphrase: passphrase,
		chainID:    chainID,
	}
}

var _ ports.WalletGateway = (*KeystoreWallet)(nil)

// UseAccount selects which keystore account Connect unlocks. By default
// the first account is used.
func (w *KeystoreWallet) UseAccount(addr common.Address) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = &addr
}

// Connect unlocks the selected keystore account. A wrong passphrase
// yields a Connected=false record with no error; an empty keystore or a
// missing selected account means no wallet is available at all.
func (w *KeystoreWallet) Connect(ctx context.Context) (core.WalletConnection, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	accts := w.ks.Accounts()
	if len(accts) == 0 {
		return core.WalletConnection{}, fmt.Errorf("%w: keystore has no accounts", core.ErrGatewayUnavailable)
	}

	account := accts[0]
	if w.selected != nil {
		found := false
		for _, a := range accts {
			if a.Address == *w.selected {
				account = a
				found = true
				break
			}
		}
		if !found {
			return core.WalletConnection{}, fmt.Errorf("%w: keystore has no account %s", core.ErrGatewayUnavailable, w.selected.Hex())
		}
	}

	if err := w.ks.Unlock(account, w.passphrase); err != nil {
		return core.WalletConnection{Connected: false}, nil
	}

	w.account = account
	w.unlocked = true

	return core.WalletConnection{
		Address:   account.Address,
		ChainID:   new(big.Int).Set(w.chainID),
		Connected: true,
	}, nil
}

// SignMessage signs the EIP-191 personal-message hash of the exact message
// string and returns the 65-byte signature as 0x-prefixed hex.
func (w *KeystoreWallet) SignMessage(ctx context.Context, message string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.unlocked {
		return "", core.ErrNotConnected
	}

	sig, err := w.ks.SignHash(w.account, accounts.TextHash([]byte(message)))
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}

	// Transform V from 0/1 to 27/28 for eth_sign compatibility.
	sig[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(sig), nil
}

// Address returns the connected account address.
func (w *KeystoreWallet) Address() (common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.unlocked {
		return common.Address{}, core.ErrNotConnected
	}
	return w.account.Address, nil
}

// TransactOpts returns transaction-signing options backed by the
// connected account, for binding ledger write calls to this wallet.
func (w *KeystoreWallet) TransactOpts() (*bind.TransactOpts, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.unlocked {
		return nil, core.ErrNotConnected
	}
	opts, err := bind.NewKeyStoreTransactorWithChainID(w.ks, w.account, w.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to build transactor: %w", err)
	}
	return opts, nil
}

// RecoverAddress recovers the signer address from a personal-message
// signature produced by SignMessage.
func RecoverAddress(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes", crypto.SignatureLength)
	}

	// Undo the eth_sign V transform before recovery.
	sig = append([]byte(nil), sig...)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
