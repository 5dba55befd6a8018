package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Test-user passwords live in a 0600 JSON file, each sealed with AES-GCM under
// a random key kept next to it. Keeps passwords out of the config file; it is
// not a keychain.

const (
	vaultFile = "test-users.json"
	keySize   = 32
)

var ErrNotInVault = errors.New("credentials: not in vault")

type sealed struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

type vaultData struct {
	Users map[string]sealed `json:"users"`
}

// Vault stores test-user passwords at path; the sealing key is path + ".key".
type Vault struct {
	path string
}

func NewVault(path string) *Vault {
	return &Vault{path: path}
}

// DefaultVaultPath is <user config dir>/previewkit/test-users.json.
func DefaultVaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "previewkit", vaultFile), nil
}

func (v *Vault) keyPath() string { return v.path + ".key" }

// Store seals password under key, replacing any previous value.
func (v *Vault) Store(key, password string) error {
	if key = norm(key); key == "" {
		return fmt.Errorf("credentials: user key required")
	}
	data, err := v.load()
	if err != nil {
		return err
	}
	aead, err := v.aead(true)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}
	data.Users[key] = sealed{Nonce: nonce, Ciphertext: aead.Seal(nil, nonce, []byte(password), []byte(key))}
	return v.save(data)
}

// Fetch returns the password stored under key or ErrNotInVault.
func (v *Vault) Fetch(key string) (string, error) {
	if key = norm(key); key == "" {
		return "", fmt.Errorf("credentials: user key required")
	}
	data, err := v.load()
	if err != nil {
		return "", err
	}
	s, ok := data.Users[key]
	if !ok {
		return "", ErrNotInVault
	}
	aead, err := v.aead(false)
	if err != nil {
		return "", err
	}
	plain, err := aead.Open(nil, s.Nonce, s.Ciphertext, []byte(key))
	if err != nil {
		return "", fmt.Errorf("credentials: unseal %q: %w", key, err)
	}
	return string(plain), nil
}

func (v *Vault) Delete(key string) error {
	data, err := v.load()
	if err != nil {
		return err
	}
	delete(data.Users, norm(key))
	return v.save(data)
}

// Keys lists the stored user keys sorted.
func (v *Vault) Keys() ([]string, error) {
	data, err := v.load()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(data.Users))
	for k := range data.Users {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (v *Vault) load() (vaultData, error) {
	data := vaultData{Users: map[string]sealed{}}
	raw, err := os.ReadFile(v.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return data, err
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("credentials: read vault: %w", err)
	}
	if data.Users == nil {
		data.Users = map[string]sealed{}
	}
	return data, nil
}

func (v *Vault) save(data vaultData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return writePrivate(v.path, raw)
}

// aead loads the sealing key, generating it first when create is set.
func (v *Vault) aead(create bool) (cipher.AEAD, error) {
	key, err := os.ReadFile(v.keyPath())
	switch {
	case errors.Is(err, fs.ErrNotExist) && create:
		key = make([]byte, keySize)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, err
		}
		if err := writePrivate(v.keyPath(), key); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("credentials: vault key: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("credentials: vault key has %d bytes, want %d", len(key), keySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func writePrivate(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
