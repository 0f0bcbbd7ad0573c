package config

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kelseyhightower/envconfig"

	"voting-settlement/encryption"
)

var (
	ErrMissing   = errors.New("missing value")
	ErrMalformed = errors.New("malformed value")
)

// ConfigError reports a missing or malformed configuration input. It names
// the input but never carries its value.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Chain holds what is needed to sign and send transactions to the
// PrivateVoting contract. It is read from the environment on every
// settlement, so rotating PK does not need a restart.
type Chain struct {
	PrivateKey      string `envconfig:"PK" json:"pk"`
	RPCURL          string `envconfig:"RPC_URL" json:"rpc_url"`
	ContractAddress string `envconfig:"CONTRACT_ADDRESS" json:"contract_address"`
	ChainID         uint64 `envconfig:"CHAIN_ID" json:"chain_id"`
	GasLimit        uint64 `envconfig:"GAS_LIMIT" json:"gas_limit"`
}

// LoadChain reads and validates the chain credentials from the environment.
func LoadChain() (*Chain, error) {
	var cfg Chain
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{Field: "environment", Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every required input is present and well formed.
func (c *Chain) Validate() error {
	if strings.TrimSpace(c.PrivateKey) == "" {
		return &ConfigError{Field: "PK", Err: ErrMissing}
	}
	if _, err := c.Signer(); err != nil {
		return err
	}

	if strings.TrimSpace(c.RPCURL) == "" {
		return &ConfigError{Field: "RPC_URL", Err: ErrMissing}
	}

	if strings.TrimSpace(c.ContractAddress) == "" {
		return &ConfigError{Field: "CONTRACT_ADDRESS", Err: ErrMissing}
	}
	if !common.IsHexAddress(c.ContractAddress) || c.Contract() == (common.Address{}) {
		return &ConfigError{Field: "CONTRACT_ADDRESS", Err: ErrMalformed}
	}

	return nil
}

// Signer parses PK. Parse failures are reported as a ConfigError without
// the underlying decoder message, which may quote parts of the key.
func (c *Chain) Signer() (*ecdsa.PrivateKey, error) {
	key, err := encryption.ParsePrivateKey(c.PrivateKey)
	if errors.Is(err, encryption.ErrEmptyKey) {
		return nil, &ConfigError{Field: "PK", Err: ErrMissing}
	}
	if err != nil {
		return nil, &ConfigError{Field: "PK", Err: ErrMalformed}
	}
	return key, nil
}

// Contract returns the configured contract address.
func (c *Chain) Contract() common.Address {
	return common.HexToAddress(strings.TrimSpace(c.ContractAddress))
}

// SafeChain masks sensitive config values
func SafeChain(cfg Chain) *Chain {
	cfgSafe := cfg

	if len(cfgSafe.PrivateKey) > 0 {
		cfgSafe.PrivateKey = "*** Masked ***"
	}

	return &cfgSafe
}
