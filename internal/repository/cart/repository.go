package cart

import (
	"context"
	"errors"
	"time"

	"localmarket/internal/domain"
)

// ErrMalformed is returned when a stored cart cannot be decoded.
var ErrMalformed = errors.New("malformed cart payload")

// Repository stores cart lines under the identity's cart key.
type Repository interface {
	// Load reports found=false when nothing is stored under key.
	Load(ctx context.Context, key string) (lines []domain.CartLine, found bool, err error)
	Save(ctx context.Context, key string, lines []domain.CartLine, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
