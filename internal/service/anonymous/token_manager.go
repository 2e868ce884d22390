package anonymous

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"localmarket/internal/kvstore"
)

const tokenKeyPrefix = "guest_token_"

type tokenMeta struct {
	GuestID   string    `json:"guestId"`
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// tokenManager keeps guest tokens in the shared key/value store so every API
// instance can resolve them. The store TTL matches the token lifetime.
type tokenManager struct {
	store kvstore.Store
	now   func() time.Time
}

func newTokenManager(store kvstore.Store) *tokenManager {
	return &tokenManager{store: store, now: time.Now}
}

func (m *tokenManager) Issue(ctx context.Context, guestID, kind string, ttl time.Duration) (string, error) {
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(tokenMeta{GuestID: guestID, Kind: kind, ExpiresAt: m.now().Add(ttl)})
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, tokenKeyPrefix+token, string(payload), ttl); err != nil {
		return "", fmt.Errorf("store guest token: %w", err)
	}
	return token, nil
}

// Validate returns ErrInvalidToken for unknown, expired or mismatched tokens
// and a wrapped store error when the lookup itself fails.
func (m *tokenManager) Validate(ctx context.Context, token, kind string) (tokenMeta, error) {
	if token == "" {
		return tokenMeta{}, ErrInvalidToken
	}
	raw, ok, err := m.store.Get(ctx, tokenKeyPrefix+token)
	if err != nil {
		return tokenMeta{}, fmt.Errorf("lookup guest token: %w", err)
	}
	if !ok {
		return tokenMeta{}, ErrInvalidToken
	}
	var meta tokenMeta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil || meta.Kind != kind {
		return tokenMeta{}, ErrInvalidToken
	}
	if m.now().After(meta.ExpiresAt) {
		_ = m.store.Remove(ctx, tokenKeyPrefix+token)
		return tokenMeta{}, ErrInvalidToken
	}
	return meta, nil
}

func (m *tokenManager) Revoke(ctx context.Context, token string) error {
	return m.store.Remove(ctx, tokenKeyPrefix+token)
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
