package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"localmarket/internal/domain"
	"localmarket/internal/keylock"
	"localmarket/internal/metrics"
	cartrepo "localmarket/internal/repository/cart"
)

// MergeStrategy decides how guest lines fold into a customer cart on sign-in.
type MergeStrategy string

const (
	// MergeSum adds guest quantities onto existing lines for the same product.
	MergeSum MergeStrategy = "sum"
	// MergeAppend appends guest lines unchanged, allowing duplicate products.
	MergeAppend MergeStrategy = "append"
)

// ParseMergeStrategy maps a config value to a strategy, defaulting to MergeSum.
func ParseMergeStrategy(v string) MergeStrategy {
	if strings.EqualFold(strings.TrimSpace(v), string(MergeAppend)) {
		return MergeAppend
	}
	return MergeSum
}

type productLookup interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type Options struct {
	Strategy MergeStrategy
	// GuestTTL expires guest carts; user carts never expire.
	GuestTTL time.Duration
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
}

// Service owns the identity-scoped cart. Mutations for one identity run one
// at a time; reads go straight to the store.
type Service struct {
	repo     cartrepo.Repository
	products productLookup
	log      zerolog.Logger
	metrics  *metrics.Metrics
	strategy MergeStrategy
	guestTTL time.Duration
	locks    *keylock.Map

	now   func() time.Time
	newID func() string
}

func New(repo cartrepo.Repository, products productLookup, opts Options) *Service {
	strategy := opts.Strategy
	if strategy != MergeAppend {
		strategy = MergeSum
	}
	return &Service{
		repo:     repo,
		products: products,
		log:      opts.Logger.With().Str("component", "cart").Logger(),
		metrics:  opts.Metrics,
		strategy: strategy,
		guestTTL: opts.GuestTTL,
		locks:    keylock.New(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Load returns the identity's cart. Missing, unreadable or malformed data all
// yield an empty cart.
func (s *Service) Load(ctx context.Context, id domain.Identity) *domain.Cart {
	cart := s.load(ctx, id)
	s.metrics.CartOp("load", nil)
	return cart
}

// AddItem adds quantity units of productID. Zero means one. A product already
// in the cart has its quantity increased; otherwise a new line is created from
// a fresh product snapshot. A line never exceeds domain.MaxLineQuantity.
func (s *Service) AddItem(ctx context.Context, id domain.Identity, productID string, quantity int) (*domain.Cart, error) {
	cart, err := s.addItem(ctx, id, productID, quantity)
	s.metrics.CartOp("add_item", err)
	return cart, err
}

func (s *Service) addItem(ctx context.Context, id domain.Identity, productID string, quantity int) (*domain.Cart, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 || quantity > domain.MaxLineQuantity {
		return nil, domain.ErrInvalidQuantity
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.ErrProductNotFound
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("lookup product %s: %w", productID, err)
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	cart, err := s.mutate(ctx, id, func(c *domain.Cart) (bool, error) {
		if i := c.ProductIndex(product.ID); i >= 0 {
			if c.Lines[i].Quantity > domain.MaxLineQuantity-quantity {
				return false, domain.ErrInvalidQuantity
			}
			c.Lines[i].Quantity += quantity
			return true, nil
		}
		c.Lines = append(c.Lines, s.lineFromProduct(*product, quantity))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateQuantity sets a line's quantity. Anything below one removes the line,
// values above domain.MaxLineQuantity are capped and an unknown line id leaves
// the cart untouched.
func (s *Service) UpdateQuantity(ctx context.Context, id domain.Identity, lineID string, quantity int) *domain.Cart {
	if quantity < 1 {
		cart, err := s.removeItem(ctx, id, lineID)
		s.metrics.CartOp("update_quantity", err)
		return cart
	}
	if quantity > domain.MaxLineQuantity {
		quantity = domain.MaxLineQuantity
	}
	cart, err := s.mutate(ctx, id, func(c *domain.Cart) (bool, error) {
		i := c.LineIndex(lineID)
		if i < 0 || c.Lines[i].Quantity == quantity {
			return false, nil
		}
		c.Lines[i].Quantity = quantity
		return true, nil
	})
	s.metrics.CartOp("update_quantity", err)
	return cart
}

// RemoveItem deletes the line if present.
func (s *Service) RemoveItem(ctx context.Context, id domain.Identity, lineID string) *domain.Cart {
	cart, err := s.removeItem(ctx, id, lineID)
	s.metrics.CartOp("remove_item", err)
	return cart
}

func (s *Service) removeItem(ctx context.Context, id domain.Identity, lineID string) (*domain.Cart, error) {
	return s.mutate(ctx, id, func(c *domain.Cart) (bool, error) {
		i := c.LineIndex(lineID)
		if i < 0 {
			return false, nil
		}
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return true, nil
	})
}

// Clear empties the cart and persists the empty collection.
func (s *Service) Clear(ctx context.Context, id domain.Identity) *domain.Cart {
	cart, err := s.mutate(ctx, id, func(c *domain.Cart) (bool, error) {
		c.Lines = []domain.CartLine{}
		return true, nil
	})
	s.metrics.CartOp("clear", err)
	return cart
}

// MergeGuestCart folds the guest's stored cart into the user's cart and then
// deletes the guest copy. It does nothing unless user is signed in and a
// guest cart exists, so repeated calls are harmless. When either cart cannot
// be read nothing is written and the guest copy is kept.
func (s *Service) MergeGuestCart(ctx context.Context, guest, user domain.Identity) *domain.Cart {
	if !user.Authenticated() || guest.Authenticated() {
		return s.load(ctx, user)
	}
	guestKey, userKey := guest.CartKey(), user.CartKey()
	unlock := s.locks.LockAll(guestKey, userKey)
	defer unlock()

	guestLines, found, err := s.repo.Load(ctx, guestKey)
	switch {
	case errors.Is(err, cartrepo.ErrMalformed):
		s.log.Warn().Err(err).Str("cart_key", guestKey).Msg("discarding malformed guest cart")
		if err := s.repo.Delete(ctx, guestKey); err != nil {
			s.log.Error().Err(err).Str("cart_key", guestKey).Msg("delete malformed guest cart")
		}
		return s.load(ctx, user)
	case err != nil:
		s.log.Warn().Err(err).Str("cart_key", guestKey).Msg("guest cart unreadable, skipping merge")
		return s.load(ctx, user)
	case !found:
		return s.load(ctx, user)
	}

	cart, err := s.read(ctx, user)
	if err != nil {
		s.skipWrite(user, err)
		s.metrics.CartOp("merge", err)
		return cart
	}
	if len(guestLines) > 0 {
		s.fold(cart, guestLines)
		if err := s.repo.Save(ctx, userKey, cart.Lines, 0); err != nil {
			// The guest copy is kept so the merge can be retried.
			s.metrics.CartOp("merge", err)
			return s.heal(ctx, user, err)
		}
	}
	if err := s.repo.Delete(ctx, guestKey); err != nil {
		s.log.Error().Err(err).Str("cart_key", guestKey).Msg("delete merged guest cart")
	}
	s.metrics.CartMerged(string(s.strategy))
	s.metrics.CartOp("merge", nil)
	s.log.Info().
		Str("user_cart", userKey).
		Str("guest_cart", guestKey).
		Int("guest_lines", len(guestLines)).
		Str("strategy", string(s.strategy)).
		Msg("merged guest cart")
	return cart
}

func (s *Service) fold(cart *domain.Cart, guestLines []domain.CartLine) {
	for _, gl := range guestLines {
		if gl.Quantity < 1 || gl.ProductID == "" {
			continue
		}
		if s.strategy == MergeSum {
			if i := cart.ProductIndex(gl.ProductID); i >= 0 {
				cart.Lines[i].Quantity = domain.CapQuantity(cart.Lines[i].Quantity, gl.Quantity)
				continue
			}
		}
		if gl.ID == "" || cart.LineIndex(gl.ID) >= 0 {
			gl.ID = s.newID()
		}
		gl.Quantity = domain.CapQuantity(0, gl.Quantity)
		cart.Lines = append(cart.Lines, gl)
	}
}

// mutate runs fn on the stored cart under the identity's lock and persists
// the result when fn reports a change. A failed read never reaches fn: the
// stored copy stays as it is and the read error is returned with an empty cart.
func (s *Service) mutate(ctx context.Context, id domain.Identity, fn func(c *domain.Cart) (bool, error)) (*domain.Cart, error) {
	unlock := s.locks.Lock(id.CartKey())
	defer unlock()

	cart, err := s.read(ctx, id)
	if err != nil {
		s.skipWrite(id, err)
		return cart, err
	}
	changed, err := fn(cart)
	if err != nil {
		return nil, err
	}
	if !changed {
		return cart, nil
	}
	if err := s.repo.Save(ctx, id.CartKey(), cart.Lines, s.ttlFor(id)); err != nil {
		return s.heal(ctx, id, err), nil
	}
	return cart, nil
}

// heal logs a failed write and returns whatever the store still holds.
func (s *Service) heal(ctx context.Context, id domain.Identity, cause error) *domain.Cart {
	s.log.Error().Err(cause).Str("cart_key", id.CartKey()).Msg("persist cart failed, reloading")
	s.metrics.CartSelfHealed()
	return s.load(ctx, id)
}

func (s *Service) skipWrite(id domain.Identity, cause error) {
	s.log.Error().Err(cause).Str("cart_key", id.CartKey()).Msg("cart unreadable, change not applied")
	s.metrics.CartSelfHealed()
}

// load is the reader's view: any failure yields an empty cart.
func (s *Service) load(ctx context.Context, id domain.Identity) *domain.Cart {
	cart, err := s.read(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("cart_key", id.CartKey()).Msg("load cart")
	}
	return cart
}

// read returns the stored cart. A malformed payload counts as empty; any other
// store failure is returned alongside an empty cart.
func (s *Service) read(ctx context.Context, id domain.Identity) (*domain.Cart, error) {
	cart := &domain.Cart{Key: id.Key(), Lines: []domain.CartLine{}}
	lines, found, err := s.repo.Load(ctx, id.CartKey())
	switch {
	case errors.Is(err, cartrepo.ErrMalformed):
		s.log.Warn().Err(err).Str("cart_key", id.CartKey()).Msg("discarding malformed cart")
	case err != nil:
		return cart, fmt.Errorf("load cart %s: %w", id.CartKey(), err)
	case found:
		for _, l := range lines {
			if l.Quantity < 1 {
				continue
			}
			l.Quantity = domain.CapQuantity(0, l.Quantity)
			cart.Lines = append(cart.Lines, l)
		}
	}
	return cart, nil
}

func (s *Service) ttlFor(id domain.Identity) time.Duration {
	if id.Authenticated() {
		return 0
	}
	return s.guestTTL
}

func (s *Service) lineFromProduct(p domain.Product, quantity int) domain.CartLine {
	return domain.CartLine{
		ID:         s.newID(),
		ProductID:  p.ID,
		Quantity:   quantity,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		ImageURL:   p.ImageURL,
		ShopID:     p.ShopID,
		ShopName:   p.ShopName,
		AddedAt:    s.now().UTC(),
	}
}
