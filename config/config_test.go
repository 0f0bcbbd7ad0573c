package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"voting-settlement/config"
)

const (
	devKey      = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

func setChainEnv(t *testing.T, pk, url, contract string) {
	t.Setenv("PK", pk)
	t.Setenv("RPC_URL", url)
	t.Setenv("CONTRACT_ADDRESS", contract)
}

func TestLoadChain(t *testing.T) {
	setChainEnv(t, devKey, "http://127.0.0.1:8545", devContract)
	t.Setenv("CHAIN_ID", "31337")

	cfg, err := config.LoadChain()
	require.NoError(t, err)
	require.Equal(t, uint64(31337), cfg.ChainID)
	require.Equal(t, devContract, cfg.Contract().Hex())

	key, err := cfg.Signer()
	require.NoError(t, err)
	require.NotNil(t, key)
}

func TestLoadChainErrors(t *testing.T) {
	tests := []struct {
		name     string
		pk       string
		url      string
		contract string
		field    string
		err      error
	}{
		{"missing pk", "", "http://node", devContract, "PK", config.ErrMissing},
		{"malformed pk", "0xnothex", "http://node", devContract, "PK", config.ErrMalformed},
		{"missing url", devKey, "", devContract, "RPC_URL", config.ErrMissing},
		{"missing contract", devKey, "http://node", "", "CONTRACT_ADDRESS", config.ErrMissing},
		{"zero contract", devKey, "http://node", "0x0000000000000000000000000000000000000000", "CONTRACT_ADDRESS", config.ErrMalformed},
		{"bad contract", devKey, "http://node", "0x1234", "CONTRACT_ADDRESS", config.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setChainEnv(t, tt.pk, tt.url, tt.contract)

			_, err := config.LoadChain()
			require.Error(t, err)

			var cfgErr *config.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			require.Equal(t, tt.field, cfgErr.Field)
			require.ErrorIs(t, err, tt.err)
			if tt.pk != "" {
				require.NotContains(t, err.Error(), tt.pk)
			}
		})
	}
}

func TestLoadChainUnsetPK(t *testing.T) {
	setChainEnv(t, "", "http://node", devContract)
	os.Unsetenv("PK")

	_, err := config.LoadChain()
	require.ErrorIs(t, err, config.ErrMissing)
}

func TestSafeChainMasksKey(t *testing.T) {
	cfg := config.Chain{PrivateKey: devKey, RPCURL: "http://node"}
	safe := config.SafeChain(cfg)
	require.NotEqual(t, devKey, safe.PrivateKey)
	require.Equal(t, "http://node", safe.RPCURL)
	require.Equal(t, devKey, cfg.PrivateKey)
}

func TestLoadServerDefaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.LoadServer(v, "")
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:3000", cfg.ListenAddr)
	require.Equal(t, config.DefaultSettlementTimeout, cfg.SettlementTimeout)
	require.Equal(t, "memory", cfg.ReceiptStore)
}

func TestLoadServerFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voting.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen = "127.0.0.1:4000"
settlement_timeout = "30s"
receipt_store = "json"
receipt_path = "/tmp/receipts"
`), 0o600))
	t.Setenv("VOTING_LOG_LEVEL", "debug")

	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.LoadServer(v, path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:4000", cfg.ListenAddr)
	require.Equal(t, 30*time.Second, cfg.SettlementTimeout)
	require.Equal(t, "json", cfg.ReceiptStore)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadServerRejectsUnknownStore(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("receipt_store", "s3")

	_, err := config.LoadServer(v, "")
	require.ErrorIs(t, err, config.ErrMalformed)
}
