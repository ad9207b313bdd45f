package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sokofresh/soko-api/internal/redisx"
)

// ErrCorrupt marks a persisted cart that no longer decodes. Callers decide
// whether to surface it or start the shopper over with an empty cart.
var ErrCorrupt = errors.New("cart: corrupt persisted state")

// Store persists one cart per customer under a fixed Redis namespace.
// Writes replace the whole cart, so concurrent writers are last-write-wins.
type Store struct {
	Redis *redis.Client
}

// Load rehydrates the customer's cart. A missing key is an empty cart, not
// an error; an undecodable payload is reported explicitly.
func (s *Store) Load(ctx context.Context, customerID string) (Cart, error) {
	var c Cart
	key := fmt.Sprintf(redisx.KeyCart, customerID)
	err := redisx.GetJSON(ctx, s.Redis, key, &c)
	if errors.Is(err, redisx.ErrNotFound) {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return c, nil
}

// Save writes the full line list for the customer.
func (s *Store) Save(ctx context.Context, customerID string, c Cart) error {
	key := fmt.Sprintf(redisx.KeyCart, customerID)
	return redisx.SetJSON(ctx, s.Redis, key, c, redisx.TTLCart)
}

// Mutate loads, applies fn and persists the result in one call, so every
// handler mutation ends with a write of the full cart.
func (s *Store) Mutate(ctx context.Context, customerID string, fn func(*Cart) error) (Cart, error) {
	c, err := s.Load(ctx, customerID)
	if err != nil {
		return Cart{}, err
	}
	if err := fn(&c); err != nil {
		return c, err
	}
	if err := s.Save(ctx, customerID, c); err != nil {
		return c, err
	}
	return c, nil
}
