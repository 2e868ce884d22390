package anonymous

import (
	"context"
	"errors"
	"testing"
	"time"

	"localmarket/internal/kvstore"
)

func TestIssueAndLookup(t *testing.T) {
	ctx := context.Background()
	svc := New(kvstore.NewMemory())

	sess, err := svc.Issue(ctx)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if sess.GuestID == "" || sess.AccessToken == "" || sess.RefreshToken == "" {
		t.Fatalf("incomplete session %+v", sess)
	}
	if sess.ExpiresIn != 3*60*60 {
		t.Fatalf("unexpected expiry %d", sess.ExpiresIn)
	}

	guestID, err := svc.LookupByToken(ctx, sess.AccessToken)
	if err != nil || guestID != sess.GuestID {
		t.Fatalf("lookup: id=%q err=%v", guestID, err)
	}

	if _, err := svc.LookupByToken(ctx, sess.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token must not authenticate requests, got %v", err)
	}
	if _, err := svc.LookupByToken(ctx, "bogus"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshKeepsGuestAndRotates(t *testing.T) {
	ctx := context.Background()
	svc := New(kvstore.NewMemory())

	sess, err := svc.Issue(ctx)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	next, err := svc.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.GuestID != sess.GuestID || next.AccessToken == sess.AccessToken {
		t.Fatalf("unexpected refreshed session %+v", next)
	}
	if _, err := svc.Refresh(ctx, sess.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("old refresh token should be revoked, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	svc := New(store)
	now := time.Now()
	svc.tokens.now = func() time.Time { return now }

	sess, err := svc.Issue(ctx)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	now = now.Add(4 * time.Hour)
	if _, err := svc.LookupByToken(ctx, sess.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

type downStore struct {
	*kvstore.Memory
	down bool
}

func (s *downStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.down {
		return "", false, kvstore.ErrClosed
	}
	return s.Memory.Get(ctx, key)
}

func TestLookupStoreFailureIsNotInvalidToken(t *testing.T) {
	ctx := context.Background()
	store := &downStore{Memory: kvstore.NewMemory()}
	svc := New(store)

	sess, err := svc.Issue(ctx)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	store.down = true
	_, err = svc.LookupByToken(ctx, sess.AccessToken)
	if err == nil || errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected a store error, got %v", err)
	}
	if !errors.Is(err, kvstore.ErrClosed) {
		t.Fatalf("store error not wrapped: %v", err)
	}
	if _, err := svc.Refresh(ctx, sess.RefreshToken); errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh should surface the store error, got %v", err)
	}

	store.down = false
	if guestID, err := svc.LookupByToken(ctx, sess.AccessToken); err != nil || guestID != sess.GuestID {
		t.Fatalf("lookup after recovery: id=%q err=%v", guestID, err)
	}
}
