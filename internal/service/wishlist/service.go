package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"localmarket/internal/domain"
	"localmarket/internal/keylock"
	"localmarket/internal/metrics"
	wishrepo "localmarket/internal/repository/wishlist"
)

type productLookup interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

// Service manages the signed-in customer's wishlist. Guests cannot write to it.
type Service struct {
	repo     wishrepo.Repository
	products productLookup
	log      zerolog.Logger
	metrics  *metrics.Metrics
	locks    *keylock.Map
}

func New(repo wishrepo.Repository, products productLookup, log zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:     repo,
		products: products,
		log:      log.With().Str("component", "wishlist").Logger(),
		metrics:  m,
		locks:    keylock.New(),
	}
}

func (s *Service) Add(ctx context.Context, id domain.Identity, productID string) error {
	if !id.Authenticated() {
		return domain.ErrRequiresAuth
	}
	unlock := s.locks.Lock(id.UserID)
	defer unlock()
	return s.add(ctx, id.UserID, productID)
}

// Remove is idempotent.
func (s *Service) Remove(ctx context.Context, id domain.Identity, productID string) error {
	if !id.Authenticated() {
		return domain.ErrRequiresAuth
	}
	unlock := s.locks.Lock(id.UserID)
	defer unlock()
	return s.repo.Remove(ctx, id.UserID, strings.TrimSpace(productID))
}

// Contains is always false for guests.
func (s *Service) Contains(ctx context.Context, id domain.Identity, productID string) (bool, error) {
	if !id.Authenticated() {
		return false, nil
	}
	return s.repo.Exists(ctx, id.UserID, strings.TrimSpace(productID))
}

// Toggle flips membership and returns the new state. Toggles for one user are
// serialized so two quick taps always end up added then removed.
func (s *Service) Toggle(ctx context.Context, id domain.Identity, productID string) (bool, error) {
	if !id.Authenticated() {
		return false, domain.ErrRequiresAuth
	}
	productID = strings.TrimSpace(productID)
	unlock := s.locks.Lock(id.UserID)
	defer unlock()

	in, err := s.repo.Exists(ctx, id.UserID, productID)
	if err != nil {
		return false, err
	}
	if in {
		if err := s.repo.Remove(ctx, id.UserID, productID); err != nil {
			return true, err
		}
		s.metrics.WishlistToggled(false)
		return false, nil
	}
	if err := s.add(ctx, id.UserID, productID); err != nil {
		return false, err
	}
	s.metrics.WishlistToggled(true)
	return true, nil
}

func (s *Service) List(ctx context.Context, id domain.Identity) ([]domain.WishlistItem, error) {
	if !id.Authenticated() {
		return nil, domain.ErrRequiresAuth
	}
	return s.repo.ListByUser(ctx, id.UserID)
}

func (s *Service) add(ctx context.Context, userID, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.ErrProductNotFound
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("lookup product %s: %w", productID, err)
	}
	created, err := s.repo.Add(ctx, userID, productID)
	if err != nil {
		return err
	}
	if created {
		s.log.Debug().Str("user_id", userID).Str("product_id", productID).Msg("wishlist add")
	}
	return nil
}
