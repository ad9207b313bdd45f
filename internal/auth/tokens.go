package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("auth: invalid token")

// TokenIssuer signs and parses the access/refresh token pair.
type TokenIssuer struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (t *TokenIssuer) Issue(user SessionUser) (Tokens, error) {
	access, err := t.sign(user, "access", t.AccessTTL)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := t.sign(user, "refresh", t.RefreshTTL)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{Access: access, Refresh: refresh}, nil
}

func (t *TokenIssuer) sign(user SessionUser, use string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"use":   use,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString(t.Secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", use, err)
	}
	return s, nil
}

// Parse validates tokenString and returns the embedded user. use selects
// which half of the pair is acceptable ("access" or "refresh").
func (t *TokenIssuer) Parse(tokenString, use string) (SessionUser, error) {
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tk.Header["alg"])
		}
		return t.Secret, nil
	})
	if err != nil || !tok.Valid {
		return SessionUser{}, ErrInvalidToken
	}

	if u, _ := claims["use"].(string); u != use {
		return SessionUser{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return SessionUser{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	roleStr, _ := claims["role"].(string)
	role, ok := ParseRole(roleStr)
	if !ok {
		return SessionUser{}, ErrInvalidToken
	}

	return SessionUser{ID: sub, Email: email, Role: role}, nil
}

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
