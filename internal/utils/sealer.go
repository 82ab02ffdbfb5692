package utils

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// storeSalt domain-separates keys derived for the token store
var storeSalt = []byte("pomoyka/secure-store/v1")

// ErrSealedValueCorrupt is returned when a sealed value fails authentication
var ErrSealedValueCorrupt = errors.New("sealed value is corrupt or was sealed with another key")

// Sealer encrypts small secrets (tokens) before they touch disk
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives an XChaCha20-Poly1305 key from the passphrase with argon2id
func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("sealer passphrase is required")
	}

	key := argon2.IDKey([]byte(passphrase), storeSalt, 1, 64*1024, 4, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext bound to the given label (the store key) and
// returns base64(nonce || ciphertext)
func (s *Sealer) Seal(label, plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), []byte(label))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal; the label must match the one used when sealing
func (s *Sealer) Open(label, sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed value: %w", err)
	}

	if len(raw) < s.aead.NonceSize() {
		return "", ErrSealedValueCorrupt
	}

	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(label))
	if err != nil {
		return "", ErrSealedValueCorrupt
	}

	return string(plaintext), nil
}
