package encryption

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

var ErrEmptyKey = errors.New("empty private key")

// ParsePrivateKey decodes a hex encoded secp256k1 private key. A leading
// "0x" and surrounding whitespace are ignored.
func ParsePrivateKey(keyStr string) (*ecdsa.PrivateKey, error) {
	keyStr = strings.TrimPrefix(strings.TrimSpace(keyStr), "0x")
	if keyStr == "" {
		return nil, ErrEmptyKey
	}

	keyBytes, err := hex.DecodeString(keyStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key hex string")
	}

	privateKey, err := crypto.ToECDSA(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return privateKey, nil
}

// Address returns the account address controlled by the key.
func Address(privateKey *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(privateKey.PublicKey)
}

// Fingerprint returns the first four bytes of the Keccak256 digest of a raw
// key string. It lets operators tell two keys apart in logs without the key
// itself ever being written out.
func Fingerprint(keyStr string) string {
	keyStr = strings.TrimPrefix(strings.TrimSpace(keyStr), "0x")
	if keyStr == "" {
		return ""
	}
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(strings.ToLower(keyStr)))
	return hex.EncodeToString(h.Sum(nil)[:4])
}
