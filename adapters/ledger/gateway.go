// Package ledger adapts the on-chain AuthenticationContract into the
// LedgerGateway port. A Gateway is bound to one network's contract
// coordinates at construction; switching networks means constructing a
// new Gateway, never reusing a stale one.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/ports"
)

// DefaultWaitTimeout bounds how long a write operation waits for
// transaction inclusion.
const DefaultWaitTimeout = 2 * time.Minute

// txGasBudget is a rough per-transaction gas allowance used only for the
// pre-submission funds check.
const txGasBudget = 200_000

// weiPerEther is the decimal exponent between wei and ether.
const weiPerEther = -18

// nodeReader is the read-only node surface the gateway uses outside of
// bound contract calls: receipt polling for inclusion waits, balance and
// gas price for the funds pre-check.
type nodeReader interface {
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// Gateway is an explicit, per-network handle on the AuthenticationContract.
type Gateway struct {
	node     nodeReader
	contract *bind.BoundContract
	opts     *bind.TransactOpts
	account  common.Address
	chainID  *big.Int
	network  string
	address  common.Address

	waitTimeout time.Duration
	log         logrus.FieldLogger
}

// New resolves the contract coordinates for the network identified by
// chainID and binds them. Missing or invalid deployment records are a
// configuration fault.
func New(client *ethclient.Client, opts *bind.TransactOpts, account common.Address, chainID *big.Int, deploymentsDir string, log logrus.FieldLogger) (*Gateway, error) {
	network := NetworkName(chainID)

	deployment, err := LoadDeployment(deploymentsDir, network)
	if err != nil {
		return nil, err
	}

	parsed, err := abi.JSON(strings.NewReader(authContractABI))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid contract ABI: %v", core.ErrConfiguration, err)
	}

	contractAddr := deployment.ContractAddress()

	return &Gateway{
		node:        client,
		contract:    bind.NewBoundContract(contractAddr, parsed, client, client, client),
		opts:        opts,
		account:     account,
		chainID:     new(big.Int).Set(chainID),
		network:     network,
		address:     contractAddr,
		waitTimeout: DefaultWaitTimeout,
		log:         log.WithField("network", network),
	}, nil
}

var _ ports.LedgerGateway = (*Gateway)(nil)

// Network returns the symbolic network name the gateway is bound to.
func (g *Gateway) Network() string {
	return g.network
}

// ChainID returns the chain the gateway is bound to.
func (g *Gateway) ChainID() *big.Int {
	return new(big.Int).Set(g.chainID)
}

// SetWaitTimeout overrides the inclusion-wait deadline.
func (g *Gateway) SetWaitTimeout(d time.Duration) {
	g.waitTimeout = d
}

// RegisterUser submits a registration transaction and waits for inclusion.
func (g *Gateway) RegisterUser(ctx context.Context, username, passwordHash string) (core.TxReceipt, error) {
	if err := g.ensureFunds(ctx); err != nil {
		return core.TxReceipt{}, err
	}

	tx, err := g.transact(ctx, "registerUser", username, passwordHash)
	if err != nil {
		return core.TxReceipt{}, err
	}

	g.log.WithFields(logrus.Fields{"tx": tx.Hash().Hex(), "username": username}).Info("registration submitted")
	return g.waitMined(ctx, tx)
}

// Login submits a login-record transaction and waits for inclusion.
func (g *Gateway) Login(ctx context.Context) (core.TxReceipt, error) {
	if err := g.ensureFunds(ctx); err != nil {
		return core.TxReceipt{}, err
	}

	tx, err := g.transact(ctx, "login")
	if err != nil {
		return core.TxReceipt{}, err
	}

	g.log.WithField("tx", tx.Hash().Hex()).Info("login submitted")
	return g.waitMined(ctx, tx)
}

// VerifySignature asks the contract whether the signature over the message
// is valid. Read-only, no transaction.
func (g *Gateway) VerifySignature(ctx context.Context, message, signature string) (bool, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return false, fmt.Errorf("failed to decode signature: %w", err)
	}

	var out []interface{}
	if err := g.contract.Call(&bind.CallOpts{Context: ctx, From: g.account}, &out, "verifySignature", message, sig); err != nil {
		return false, fmt.Errorf("%w: verifySignature call failed: %v", core.ErrGatewayUnavailable, err)
	}

	if len(out) != 1 {
		return false, fmt.Errorf("unexpected verifySignature result arity %d", len(out))
	}

	valid, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected verifySignature result type %T", out[0])
	}
	return valid, nil
}

// GetUserInfo reads the registration record for an address.
func (g *Gateway) GetUserInfo(ctx context.Context, address common.Address) (core.UserInfo, error) {
	var out []interface{}
	if err := g.contract.Call(&bind.CallOpts{Context: ctx, From: g.account}, &out, "getUserInfo", address); err != nil {
		return core.UserInfo{}, fmt.Errorf("%w: getUserInfo call failed: %v", core.ErrGatewayUnavailable, err)
	}

	if len(out) != 4 {
		return core.UserInfo{}, fmt.Errorf("unexpected getUserInfo result arity %d", len(out))
	}

	info := core.UserInfo{
		Username:         out[0].(string),
		IsActive:         out[1].(bool),
		RegistrationTime: time.Unix(out[2].(*big.Int).Int64(), 0),
	}
	if last := out[3].(*big.Int); last.Sign() > 0 {
		t := time.Unix(last.Int64(), 0)
		info.LastLoginTime = &t
	}

	return info, nil
}

// IsUserRegistered checks whether an address has a registration record.
func (g *Gateway) IsUserRegistered(ctx context.Context, address common.Address) (bool, error) {
	var out []interface{}
	if err := g.contract.Call(&bind.CallOpts{Context: ctx, From: g.account}, &out, "isUserRegistered", address); err != nil {
		return false, fmt.Errorf("%w: isUserRegistered call failed: %v", core.ErrGatewayUnavailable, err)
	}

	if len(out) != 1 {
		return false, fmt.Errorf("unexpected isUserRegistered result arity %d", len(out))
	}
	return out[0].(bool), nil
}

func (g *Gateway) transact(ctx context.Context, method string, params ...interface{}) (*types.Transaction, error) {
	opts := *g.opts
	opts.Context = ctx

	tx, err := g.contract.Transact(&opts, method, params...)
	if err != nil {
		// Gas estimation surfaces contract reverts (duplicate
		// registration, unregistered login) before submission.
		return nil, fmt.Errorf("%w: %s: %v", core.ErrLedgerRejected, method, err)
	}
	return tx, nil
}

func (g *Gateway) waitMined(ctx context.Context, tx *types.Transaction) (core.TxReceipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, g.waitTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, g.node, tx)
	if err != nil {
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return core.TxReceipt{}, fmt.Errorf("%w: %s", core.ErrLedgerTimeout, tx.Hash().Hex())
		}
		return core.TxReceipt{}, fmt.Errorf("%w: waiting for %s: %v", core.ErrGatewayUnavailable, tx.Hash().Hex(), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return core.TxReceipt{}, fmt.Errorf("%w: transaction %s reverted", core.ErrLedgerRejected, tx.Hash().Hex())
	}

	g.log.WithField("tx", tx.Hash().Hex()).Debug("transaction mined")
	return core.TxReceipt{TxHash: tx.Hash()}, nil
}

// ensureFunds rejects a write early when the account cannot cover a
// transaction, with balances reported in ether.
func (g *Gateway) ensureFunds(ctx context.Context) error {
	balance, err := g.node.BalanceAt(ctx, g.account, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to read balance: %v", core.ErrGatewayUnavailable, err)
	}

	gasPrice, err := g.node.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to read gas price: %v", core.ErrGatewayUnavailable, err)
	}

	need := new(big.Int).Mul(gasPrice, big.NewInt(txGasBudget))
	if balance.Cmp(need) < 0 {
		have := decimal.NewFromBigInt(balance, weiPerEther)
		want := decimal.NewFromBigInt(need, weiPerEther)
		return fmt.Errorf("%w: insufficient funds: balance %s ETH, need about %s ETH", core.ErrLedgerRejected, have, want)
	}

	return nil
}
