package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/adapters/events"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/adapters/ledger"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/adapters/store"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/adapters/tokenizer"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/adapters/wallet"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/config"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/ports"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/service"
)

// app bundles the wired orchestrator and its collaborators.
type app struct {
	cfg    *config.Config
	svc    *service.AuthService
	issuer *tokenizer.JWTIssuer
	close  func()
}

// buildApp wires the adapters into an orchestrator from configuration.
func buildApp(ctx context.Context, log *logrus.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	issuer, err := tokenizer.NewJWTIssuer([]byte(cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.RPCURL, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}
	log.WithFields(logrus.Fields{
		"chain":   chainID.String(),
		"network": ledger.NetworkName(chainID),
	}).Info("connected to chain node")

	ksWallet := wallet.NewKeystoreWallet(cfg.KeystoreDir, cfg.KeystorePassphrase, chainID)
	if cfg.KeystoreAccount != "" {
		ksWallet.UseAccount(common.HexToAddress(cfg.KeystoreAccount))
	}

	sessions, publisher, closeExtras, err := buildStoreAndEvents(cfg, log)
	if err != nil {
		client.Close()
		return nil, err
	}

	factory := func(ctx context.Context, chainID *big.Int) (ports.LedgerGateway, error) {
		opts, err := ksWallet.TransactOpts()
		if err != nil {
			return nil, err
		}
		account, err := ksWallet.Address()
		if err != nil {
			return nil, err
		}
		gw, err := ledger.New(client, opts, account, chainID, cfg.DeploymentsDir, log)
		if err != nil {
			return nil, err
		}
		gw.SetWaitTimeout(cfg.LedgerTimeout)
		return gw, nil
	}

	svc := service.NewAuthService(ksWallet, factory, issuer, sessions, publisher, log)

	return &app{
		cfg:    cfg,
		svc:    svc,
		issuer: issuer,
		close: func() {
			closeExtras()
			client.Close()
		},
	}, nil
}

// buildStoreAndEvents picks the session backend and event publisher:
// Redis-backed when a Redis URL is configured, file-backed and eventless
// otherwise.
func buildStoreAndEvents(cfg *config.Config, log *logrus.Logger) (ports.SessionStore, ports.EventPublisher, func(), error) {
	if cfg.RedisURL == "" {
		sessions, err := store.NewFileStore(cfg.SessionDir)
		if err != nil {
			return nil, nil, nil, err
		}
		return sessions, nil, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: client},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		client.Close()
		return nil, nil, nil, fmt.Errorf("failed to create redis publisher: %w", err)
	}

	log.Info("using redis session store and event stream")

	return store.NewRedisStore(client), events.NewWatermillPublisher(publisher), func() {
		publisher.Close()
		client.Close()
	}, nil
}
