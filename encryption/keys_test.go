package encryption_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"voting-settlement/encryption"
)

// well known hardhat account #0
const (
	devKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestParsePrivateKey(t *testing.T) {
	for _, in := range []string{devKey, "0x" + devKey, "  " + devKey + "\n"} {
		key, err := encryption.ParsePrivateKey(in)
		require.NoError(t, err)
		require.Equal(t, common.HexToAddress(devAddress), encryption.Address(key))
	}
}

func TestParsePrivateKeyRejectsGarbage(t *testing.T) {
	_, err := encryption.ParsePrivateKey("")
	require.ErrorIs(t, err, encryption.ErrEmptyKey)

	_, err = encryption.ParsePrivateKey("0x")
	require.ErrorIs(t, err, encryption.ErrEmptyKey)

	_, err = encryption.ParsePrivateKey("not-a-key")
	require.Error(t, err)
	require.NotContains(t, err.Error(), "not-a-key")

	_, err = encryption.ParsePrivateKey("abcd")
	require.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	fp := encryption.Fingerprint(devKey)
	require.Len(t, fp, 8)
	require.Equal(t, fp, encryption.Fingerprint("0x"+devKey))
	require.Empty(t, encryption.Fingerprint(""))

	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	require.NotEqual(t, fp, encryption.Fingerprint(common.Bytes2Hex(crypto.FromECDSA(other))))
}
