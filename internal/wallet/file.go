package wallet

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"aptodo/internal/service"
)

// keyFile is the on-disk form of a wallet.
type keyFile struct {
	Address    string `json:"address"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// Save writes key to path with mode 0600.
func Save(path string, key ed25519.PrivateKey) error {
	pub := key.Public().(ed25519.PublicKey)
	data, err := json.MarshalIndent(keyFile{
		Address:    AddressFromPublicKey(pub),
		PublicKey:  hexKey(pub),
		PrivateKey: hexKey(key.Seed()),
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Load reads a wallet written by Save.
// Returns an error wrapping service.ErrNotFound if path does not exist.
func Load(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("wallet %w: %s", service.ErrNotFound, path)
		}
		return nil, err
	}

	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("invalid wallet file: %w", err)
	}
	key, err := ParsePrivateKey(kf.PrivateKey)
	if err != nil {
		return nil, err
	}
	if kf.Address != "" && kf.Address != AddressFromPublicKey(key.Public().(ed25519.PublicKey)) {
		return nil, errors.New("invalid wallet file: address does not match key")
	}
	return key, nil
}
