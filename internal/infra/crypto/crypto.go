// Package crypto seals stored cache entries with AES-256-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// NonceSize is the size of the AES-GCM nonce.
	NonceSize = 12
	// KeySize is the size of the AES-256 key.
	KeySize = 32

	nonceCacheFile = "nonce-cache.yaml"
)

var (
	// ErrInvalidKey is returned when the key is not 64 hex characters.
	ErrInvalidKey = errors.New("invalid encryption key: must be 32 bytes (64 hex characters)")
	// ErrDecryptionFailed is returned when the ciphertext or key is wrong.
	ErrDecryptionFailed = errors.New("decryption failed: invalid ciphertext or key")
	// ErrCiphertextTooShort is returned when the ciphertext has no room for a nonce.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// Encryptor seals and opens entry payloads. Sealing the same payload twice
// returns the same bytes so that unchanged entries keep their blob hash.
type Encryptor struct {
	gcm      cipher.AEAD
	sealed   map[string][]byte // sha256(plaintext) -> nonce + ciphertext
	cacheDir string
	mu       sync.RWMutex
}

// GenerateKey returns a fresh hex-encoded AES-256 key.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// NewEncryptor creates an encryptor for hexKey. When cacheDir is set, the
// sealed payloads are remembered across processes in cacheDir.
func NewEncryptor(hexKey, cacheDir string) (*Encryptor, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	e := &Encryptor{
		gcm:      gcm,
		sealed:   make(map[string][]byte),
		cacheDir: cacheDir,
	}
	if cacheDir != "" {
		_ = e.loadCache()
	}
	return e, nil
}

// Encrypt returns nonce + ciphertext + tag for plaintext.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	sum := sha256.Sum256(plaintext)
	key := hex.EncodeToString(sum[:])

	e.mu.RLock()
	cached, ok := e.sealed[key]
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	ciphertext := e.gcm.Seal(nonce, nonce, plaintext, nil)

	e.mu.Lock()
	e.sealed[key] = ciphertext
	e.mu.Unlock()

	if e.cacheDir != "" {
		_ = e.SaveCache()
	}
	return ciphertext, nil
}

// Decrypt opens a payload produced by Encrypt.
func (e *Encryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < NonceSize {
		return nil, ErrCiphertextTooShort
	}
	plaintext, err := e.gcm.Open(nil, ciphertext[:NonceSize], ciphertext[NonceSize:], nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func (e *Encryptor) cacheFilePath() string {
	return filepath.Join(e.cacheDir, nonceCacheFile)
}

func (e *Encryptor) loadCache() error {
	data, err := os.ReadFile(e.cacheFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var stored map[string]string
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("decode nonce cache: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for key, encoded := range stored {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			continue
		}
		e.sealed[key] = raw
	}
	return nil
}

// SaveCache writes the sealed payload cache to disk.
func (e *Encryptor) SaveCache() error {
	if err := os.MkdirAll(e.cacheDir, 0o700); err != nil {
		return err
	}

	e.mu.RLock()
	stored := make(map[string]string, len(e.sealed))
	for key, raw := range e.sealed {
		stored[key] = base64.StdEncoding.EncodeToString(raw)
	}
	e.mu.RUnlock()

	data, err := yaml.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode nonce cache: %w", err)
	}
	return os.WriteFile(e.cacheFilePath(), data, 0o600)
}

// ClearCache forgets every sealed payload, in memory and on disk.
func (e *Encryptor) ClearCache() error {
	e.mu.Lock()
	e.sealed = make(map[string][]byte)
	e.mu.Unlock()

	if e.cacheDir == "" {
		return nil
	}
	if err := os.Remove(e.cacheFilePath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
