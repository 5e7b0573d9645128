// Package wallet implements a local Ed25519 key wallet that signs entry
// function calls and submits them through the fullnode.
package wallet

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/sha3"
)

const (
	// CoinType is the SLIP-0044 coin type used in derivation paths.
	CoinType = 637

	// HardenedOffset marks a hardened derivation index.
	HardenedOffset = 0x80000000

	// privateKeyPrefix is the AIP-80 prefix some wallets export keys with.
	privateKeyPrefix = "ed25519-priv-"

	// singleKeyScheme is appended to the public key when deriving an address.
	singleKeyScheme = 0x00
)

var slip10Curve = []byte("ed25519 seed")

// NewMnemonic generates a new 12-word BIP39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// KeyFromMnemonic derives the key at m/44'/637'/{index}'/0'/0'.
func KeyFromMnemonic(mnemonic string, index uint32) (ed25519.PrivateKey, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if mnemonic == "" {
		return nil, errors.New("mnemonic required")
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid mnemonic phrase")
	}
	if index >= HardenedOffset {
		return nil, fmt.Errorf("account index out of range: %d", index)
	}

	seed := bip39.NewSeed(mnemonic, "")
	path := []uint32{
		44 + HardenedOffset,
		CoinType + HardenedOffset,
		index + HardenedOffset,
		HardenedOffset,
		HardenedOffset,
	}
	priv, err := DerivePath(seed, path)
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(priv), nil
}

// DerivePath runs SLIP-0010 Ed25519 derivation over seed and returns the
// 32-byte private key seed. Ed25519 only supports hardened indices.
func DerivePath(seed []byte, path []uint32) ([]byte, error) {
	key, chain := hmacSplit(slip10Curve, seed)
	for _, idx := range path {
		if idx < HardenedOffset {
			return nil, fmt.Errorf("non-hardened index %d", idx)
		}
		data := make([]byte, 0, 37)
		data = append(data, 0x00)
		data = append(data, key...)
		data = binary.BigEndian.AppendUint32(data, idx)
		key, chain = hmacSplit(chain, data)
	}
	return key, nil
}

func hmacSplit(key, data []byte) ([]byte, []byte) {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

// ParsePrivateKey parses a hex encoded 32-byte Ed25519 private key seed.
// The 0x and ed25519-priv- prefixes are optional.
func ParsePrivateKey(s string) (ed25519.PrivateKey, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, privateKeyPrefix)
	s = strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	if len(raw) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid private key length: %d bytes", len(raw))
	}
	return ed25519.NewKeyFromSeed(raw), nil
}

// AddressFromPublicKey returns the account address of a single-key account.
func AddressFromPublicKey(pub ed25519.PublicKey) string {
	buf := make([]byte, 0, len(pub)+1)
	buf = append(buf, pub...)
	buf = append(buf, singleKeyScheme)
	sum := sha3.Sum256(buf)
	return "0x" + hex.EncodeToString(sum[:])
}

// hexKey renders key material with a 0x prefix.
func hexKey(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
