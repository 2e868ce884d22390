package customer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"localmarket/internal/domain"
	tokenrepo "localmarket/internal/repository/token"
)

// memoryRepo is a lightweight in-memory customer repository for tests.
type memoryRepo struct {
	byEmail map[string]domain.Customer
}

type memoryTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]tokenrepo.Token
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: make(map[string]domain.Customer)}
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[string]tokenrepo.Token)}
}

func (r *memoryTokenRepo) Create(_ context.Context, token tokenrepo.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tokens[token.Token]; exists {
		return domain.ErrAlreadyExists
	}
	r.tokens[token.Token] = token
	return nil
}

func (r *memoryTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := t
	return &clone, nil
}

func (r *memoryTokenRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *memoryTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, t := range r.tokens {
		if !t.ExpiresAt.After(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	if _, exists := r.byEmail[c.Email]; exists {
		return nil, domain.ErrAlreadyExists
	}
	clone := c
	if clone.ID == "" {
		clone.ID = "cust-" + c.Email
	}
	r.byEmail[clone.Email] = clone
	return &clone, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	if c, ok := r.byEmail[email]; ok {
		clone := c
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	for _, c := range r.byEmail {
		if c.ID == id {
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func TestSignupAndLogin_SucceedsWithTrimmedPassword(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo())
	ctx := context.Background()

	customer, err := svc.Signup(ctx, SignupInput{
		Email:    " User@Example.com ",
		Password: " Abcdefg1 ",
		FullName: " Test User ",
	})
	if err != nil {
		t.Fatalf("signup returned error: %v", err)
	}
	if customer.Email != "user@example.com" || customer.FullName != "Test User" {
		t.Fatalf("unexpected customer %+v", customer)
	}
	if customer.PasswordHash == "Abcdefg1" {
		t.Fatalf("password stored in clear text")
	}

	_, tokens, err := svc.Login(ctx, "user@example.com", "Abcdefg1")
	if err != nil {
		t.Fatalf("login failed with trimmed password: %v", err)
	}
	if tokens.Access == "" || tokens.Refresh == "" || tokens.ExpiresIn != 48*3600 {
		t.Fatalf("unexpected tokens %+v", tokens)
	}

	me, err := svc.LookupByToken(ctx, tokens.Access)
	if err != nil || me.ID != customer.ID {
		t.Fatalf("lookup: %+v err=%v", me, err)
	}
	if _, err := svc.LookupByToken(ctx, tokens.Refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token must not authenticate, got %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo())
	cases := []SignupInput{
		{Email: "", Password: "Abcdefg1"},
		{Email: "not-an-email", Password: "Abcdefg1"},
		{Email: "a@example.com", Password: "short"},
		{Email: "a@example.com", Password: "Abcdefg1", FullName: strings.Repeat("x", 121)},
	}
	for _, in := range cases {
		if _, err := svc.Signup(context.Background(), in); !errors.Is(err, ErrInvalidSignup) {
			t.Fatalf("expected ErrInvalidSignup for %+v, got %v", in, err)
		}
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo())
	in := SignupInput{Email: "dup@example.com", Password: "Abcdefg1"}
	if _, err := svc.Signup(context.Background(), in); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Signup(context.Background(), in); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestValidatePassword_FailsOnWeakValues(t *testing.T) {
	cases := []struct {
		name string
		pass string
	}{
		{"too short", "Abc1"},
		{"no upper", "abcdefg1"},
		{"no lower", "ABCDEFG1"},
		{"no digit", "Abcdefgh"},
	}
	for _, tc := range cases {
		if err := validatePassword(tc.pass, 8); err == nil {
			t.Fatalf("expected error for case %s", tc.name)
		}
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "user@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, _, err := svc.Login(ctx, "user@example.com", "wrongpass"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "missing@example.com", "Abcdefg1"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for missing user, got %v", err)
	}
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	tokens := newMemoryTokenRepo()
	svc := New(newMemoryRepo(), tokens)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "user@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	_, first, err := svc.Login(ctx, "user@example.com", "Abcdefg1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, second, err := svc.Refresh(ctx, first.Refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.Access == first.Access {
		t.Fatalf("expected a new access token")
	}
	if _, _, err := svc.Refresh(ctx, first.Refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("old refresh token should be revoked, got %v", err)
	}

	svc.Logout(ctx, second.Access)
	if _, err := svc.LookupByToken(ctx, second.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected logged out token rejected, got %v", err)
	}
}

func TestExpiredAccessTokenIsDeleted(t *testing.T) {
	tokens := newMemoryTokenRepo()
	svc := New(newMemoryRepo(), tokens)
	now := time.Now()
	svc.tokens.now = func() time.Time { return now }
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "user@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	_, issued, err := svc.Login(ctx, "user@example.com", "Abcdefg1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	now = now.Add(49 * time.Hour)
	if _, err := svc.LookupByToken(ctx, issued.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
	if _, err := tokens.Get(ctx, issued.Access); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expired token should be deleted")
	}
}
