package anonymous

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"localmarket/internal/kvstore"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// Session is a freshly issued guest identity.
type Session struct {
	GuestID      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

type Service struct {
	tokens     *tokenManager
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(store kvstore.Store) *Service {
	return &Service{
		tokens:     newTokenManager(store),
		accessTTL:  3 * time.Hour,
		refreshTTL: 30 * 24 * time.Hour,
	}
}

// Issue starts a new guest session with its own cart partition.
func (s *Service) Issue(ctx context.Context) (Session, error) {
	return s.issueFor(ctx, uuid.NewString())
}

// Refresh exchanges a refresh token for a new access token for the same guest.
// The refresh token is rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	meta, err := s.tokens.Validate(ctx, refreshToken, kindRefresh)
	if err != nil {
		return Session{}, err
	}
	_ = s.tokens.Revoke(ctx, refreshToken)
	return s.issueFor(ctx, meta.GuestID)
}

// LookupByToken returns the guest id bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (string, error) {
	meta, err := s.tokens.Validate(ctx, token, kindAccess)
	if err != nil {
		return "", err
	}
	return meta.GuestID, nil
}

func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func (s *Service) issueFor(ctx context.Context, guestID string) (Session, error) {
	access, err := s.tokens.Issue(ctx, guestID, kindAccess, s.accessTTL)
	if err != nil {
		return Session{}, err
	}
	refresh, err := s.tokens.Issue(ctx, guestID, kindRefresh, s.refreshTTL)
	if err != nil {
		return Session{}, err
	}
	return Session{
		GuestID:      guestID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.AccessTTLSeconds(),
	}, nil
}
