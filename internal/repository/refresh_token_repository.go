package repository

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
)

// refreshToken is the stored state of an issued refresh token
type refreshToken struct {
	UserID     uuid.UUID
	DeviceType string
	ExpiresAt  time.Time
	LastUsedAt time.Time
	Revoked    bool
}

// RefreshTokenRepository tracks issued refresh tokens so rotated tokens can
// be rejected. Tokens are keyed by their SHA-256 hash.
type RefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*refreshToken
}

// NewRefreshTokenRepository creates an empty refresh token repository
func NewRefreshTokenRepository() *RefreshTokenRepository {
	return &RefreshTokenRepository{tokens: make(map[string]*refreshToken)}
}

// hashToken creates a SHA-256 hash of the token for storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Store records a newly issued refresh token
func (r *RefreshTokenRepository) Store(userID uuid.UUID, token, deviceType string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[hashToken(token)] = &refreshToken{
		UserID:     userID,
		DeviceType: deviceType,
		ExpiresAt:  expiresAt,
	}
}

// Use checks that the token is known, live and not revoked, and marks it used
func (r *RefreshTokenRepository) Use(token string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tokens[hashToken(token)]
	if !ok {
		return uuid.Nil, ErrNotFound
	}
	if stored.Revoked || time.Now().After(stored.ExpiresAt) {
		return uuid.Nil, ErrTokenRevoked
	}
	stored.LastUsedAt = time.Now()
	return stored.UserID, nil
}

// Revoke marks a token as revoked
func (r *RefreshTokenRepository) Revoke(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tokens[hashToken(token)]
	if !ok {
		return ErrNotFound
	}
	stored.Revoked = true
	return nil
}

// RevokeAllForUser revokes every token issued to the user and returns how many were live
func (r *RefreshTokenRepository) RevokeAllForUser(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	revoked := 0
	for _, stored := range r.tokens {
		if stored.UserID == userID && !stored.Revoked {
			stored.Revoked = true
			revoked++
		}
	}
	return revoked
}
