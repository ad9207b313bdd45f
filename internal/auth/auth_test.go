package auth

import (
	"testing"
	"time"
)

func TestAllowed(t *testing.T) {
	t.Run("empty requirement admits any role", func(t *testing.T) {
		if !Allowed(RoleCustomer, nil) {
			t.Fatal("customer should pass an unrestricted guard")
		}
	})

	t.Run("role in set", func(t *testing.T) {
		req := Requirement{RoleAdmin, RoleVendor}
		if !Allowed(RoleVendor, req) {
			t.Fatal("vendor should be allowed")
		}
	})

	t.Run("role not in set", func(t *testing.T) {
		req := Requirement{RoleAdmin}
		if Allowed(RoleCustomer, req) {
			t.Fatal("customer must not pass an admin guard")
		}
	})
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := &TokenIssuer{
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
	user := SessionUser{ID: "u-1", Email: "a@b.ke", Role: RoleVendor}

	tokens, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := issuer.Parse(tokens.Access, "access")
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if got != user {
		t.Fatalf("parsed user = %+v, want %+v", got, user)
	}

	t.Run("refresh token rejected as access", func(t *testing.T) {
		if _, err := issuer.Parse(tokens.Refresh, "access"); err != ErrInvalidToken {
			t.Fatalf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := &TokenIssuer{Secret: []byte("other"), AccessTTL: time.Minute, RefreshTTL: time.Hour}
		if _, err := other.Parse(tokens.Access, "access"); err != ErrInvalidToken {
			t.Fatalf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := issuer.Parse("not-a-jwt", "access"); err != ErrInvalidToken {
			t.Fatalf("err = %v, want ErrInvalidToken", err)
		}
	})
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(h, "hunter2") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(h, "hunter3") {
		t.Fatal("wrong password accepted")
	}
}
