package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sokofresh/soko-api/internal/redisx"
)

// SessionStore persists wizard sessions between requests.
type SessionStore struct {
	Redis *redis.Client
}

// Load returns the customer's session, starting a fresh one at the products
// step when none exists.
func (s *SessionStore) Load(ctx context.Context, customerID string) (Session, error) {
	var sess Session
	key := fmt.Sprintf(redisx.KeyCheckout, customerID)
	err := redisx.GetJSON(ctx, s.Redis, key, &sess)
	if errors.Is(err, redisx.ErrNotFound) {
		return NewSession(customerID), nil
	}
	if err != nil {
		return Session{}, err
	}
	if sess.Completed == nil {
		sess.Completed = map[Step]bool{}
	}
	return sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess Session) error {
	key := fmt.Sprintf(redisx.KeyCheckout, sess.CustomerID)
	return redisx.SetJSON(ctx, s.Redis, key, sess, redisx.TTLCheckout)
}

// Reset drops the session, e.g. after successful submission.
func (s *SessionStore) Reset(ctx context.Context, customerID string) error {
	key := fmt.Sprintf(redisx.KeyCheckout, customerID)
	return s.Redis.Del(ctx, key).Err()
}
