package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// RefreshTokenStore maps opaque refresh-token strings to the username that
// owns them. Tokens are single-use: Redeem removes the mapping atomically,
// so no two concurrent redemptions of the same token can both succeed.
type RefreshTokenStore interface {
	Issue(ctx context.Context, username string) (string, error)
	// Redeem returns the owning username and invalidates the token.
	// Unknown or already-consumed tokens fail with ErrInvalidRefreshToken.
	Redeem(ctx context.Context, token string) (string, error)
	// Revoke discards a token. Revoking an unknown token is a no-op.
	Revoke(ctx context.Context, token string) error
	// RevokeAll discards every live token owned by username.
	RevokeAll(ctx context.Context, username string) error
}

func newRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

type refreshEntry struct {
	username  string
	expiresAt time.Time
}

// MemoryRefreshStore is the process-local RefreshTokenStore. Expired entries
// are dropped on redemption; no background sweep is needed.
type MemoryRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]refreshEntry
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryRefreshStore(ttl time.Duration) *MemoryRefreshStore {
	return &MemoryRefreshStore{
		tokens: make(map[string]refreshEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *MemoryRefreshStore) Issue(ctx context.Context, username string) (string, error) {
	token, err := newRefreshToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.tokens[token] = refreshEntry{username: username, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return token, nil
}

func (s *MemoryRefreshStore) Redeem(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[token]
	if !ok {
		return "", ErrInvalidRefreshToken
	}
	delete(s.tokens, token)
	if s.now().After(entry.expiresAt) {
		return "", ErrInvalidRefreshToken
	}
	return entry.username, nil
}

func (s *MemoryRefreshStore) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	return nil
}

func (s *MemoryRefreshStore) RevokeAll(ctx context.Context, username string) error {
	s.mu.Lock()
	for token, entry := range s.tokens {
		if entry.username == username {
			delete(s.tokens, token)
		}
	}
	s.mu.Unlock()
	return nil
}

var _ RefreshTokenStore = (*MemoryRefreshStore)(nil)
