package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// GenerateSecret generates a cryptographically secure random secret
func GenerateSecret(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateJWTSecrets generates two different JWT secrets (access and refresh)
func GenerateJWTSecrets() (accessSecret, refreshSecret string, err error) {
	accessSecret, err = GenerateSecret(32) // 256-bit
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access secret: %w", err)
	}

	refreshSecret, err = GenerateSecret(32) // 256-bit
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh secret: %w", err)
	}

	return accessSecret, refreshSecret, nil
}

// GenerateLiqPayKeys generates a sandbox-style public/private key pair for the dev backend
func GenerateLiqPayKeys() (publicKey, privateKey string, err error) {
	pub, err := GenerateSecret(8)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate public key: %w", err)
	}

	raw := make([]byte, 30)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate private key: %w", err)
	}

	return "sandbox_i" + pub, "sandbox_" + base64.RawStdEncoding.EncodeToString(raw), nil
}

// GenerateStoreKey generates a passphrase for sealing the token store
func GenerateStoreKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate store key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
