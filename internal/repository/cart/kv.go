package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"localmarket/internal/domain"
	"localmarket/internal/kvstore"
)

type kvRepo struct {
	store kvstore.Store
}

// NewKV returns a Repository that keeps each cart as a JSON array of lines.
func NewKV(store kvstore.Store) Repository {
	return &kvRepo{store: store}
}

func (r *kvRepo) Load(ctx context.Context, key string) ([]domain.CartLine, bool, error) {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return lines, true, nil
}

func (r *kvRepo) Save(ctx context.Context, key string, lines []domain.CartLine, ttl time.Duration) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", key, err)
	}
	return r.store.Set(ctx, key, string(payload), ttl)
}

func (r *kvRepo) Delete(ctx context.Context, key string) error {
	return r.store.Remove(ctx, key)
}
