package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sokofresh/soko-api/internal/redisx"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleVendor, RoleDriver, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is the persisted login state consulted by route guards.
type Session struct {
	Tokens     Tokens      `json:"tokens"`
	User       SessionUser `json:"user"`
	IsVerified bool        `json:"is_verified"`
}

var ErrNoSession = errors.New("auth: no session")

// SessionStore keeps one session per user in Redis, written on every change.
type SessionStore struct {
	Redis *redis.Client
}

func (s *SessionStore) Load(ctx context.Context, userID string) (Session, error) {
	var sess Session
	key := fmt.Sprintf(redisx.KeySession, userID)
	err := redisx.GetJSON(ctx, s.Redis, key, &sess)
	if errors.Is(err, redisx.ErrNotFound) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess Session) error {
	key := fmt.Sprintf(redisx.KeySession, sess.User.ID)
	return redisx.SetJSON(ctx, s.Redis, key, sess, redisx.TTLSession)
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	key := fmt.Sprintf(redisx.KeySession, userID)
	return s.Redis.Del(ctx, key).Err()
}
