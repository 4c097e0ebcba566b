// Package config loads the process configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
)

const envPrefix = "BLOCKAUTH"

// Config holds the process configuration.
type Config struct {
	// JWTSecret signs session credentials. Required.
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// SessionDir is where the file-backed session slot lives.
	SessionDir string `envconfig:"SESSION_DIR" default:"~/.blockauth"`

	// KeystoreDir holds the encrypted wallet accounts.
	KeystoreDir string `envconfig:"KEYSTORE_DIR" default:"~/.blockauth/keystore"`

	// KeystoreAccount selects which keystore account to unlock, as a hex
	// address. Empty means the first account.
	KeystoreAccount string `envconfig:"KEYSTORE_ACCOUNT"`

	// KeystorePassphrase unlocks the keystore account on Connect.
	KeystorePassphrase string `envconfig:"KEYSTORE_PASSPHRASE"`

	// KeystorePassphraseFile, when set, supplies the passphrase from a
	// file and takes precedence over KeystorePassphrase.
	KeystorePassphraseFile string `envconfig:"KEYSTORE_PASSPHRASE_FILE"`

	// RPCURL is the JSON-RPC endpoint of the chain node.
	RPCURL string `envconfig:"RPC_URL" default:"http://localhost:8545"`

	// DeploymentsDir holds the per-network contract deployment records.
	DeploymentsDir string `envconfig:"DEPLOYMENTS_DIR" default:"deployments"`

	// RedisURL, when set, switches the session store and the event
	// publisher onto Redis.
	RedisURL string `envconfig:"REDIS_URL"`

	// ListenAddr is the HTTP facade bind address.
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":9000"`

	// LedgerTimeout bounds waiting for transaction inclusion.
	LedgerTimeout time.Duration `envconfig:"LEDGER_TIMEOUT" default:"2m"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfiguration, err)
	}

	cfg.SessionDir = expandHome(cfg.SessionDir)
	cfg.KeystoreDir = expandHome(cfg.KeystoreDir)

	if cfg.KeystoreAccount != "" && !common.IsHexAddress(cfg.KeystoreAccount) {
		return nil, fmt.Errorf("%w: invalid keystore account %q", core.ErrConfiguration, cfg.KeystoreAccount)
	}

	if cfg.KeystorePassphraseFile != "" {
		raw, err := os.ReadFile(expandHome(cfg.KeystorePassphraseFile))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read passphrase file: %v", core.ErrConfiguration, err)
		}
		cfg.KeystorePassphrase = strings.TrimSpace(string(raw))
	}

	return &cfg, nil
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}
