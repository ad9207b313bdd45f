package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInitialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Errorf("auth header = %q", got)
		}
		w.Write([]byte(`{"status":true,"data":{"authorization_url":"https://pay.example/abc","access_code":"abc","reference":"ref-1"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test")
	res, err := c.Initialize(context.Background(), "a@b.ke", 115000)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if res.Reference != "ref-1" || res.AuthorizationURL == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestInitializeGatewayRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad")
	_, err := c.Initialize(context.Background(), "a@b.ke", 100)
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("err = %v, want ErrGateway", err)
	}
}

func TestVerify(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/transaction/verify/ref-1" {
				t.Errorf("path = %s", r.URL.Path)
			}
			w.Write([]byte(`{"status":true,"data":{"status":"success","amount":115000}}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "sk_test")
		res, err := c.Verify(context.Background(), "ref-1")
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !res.Success || res.Amount != 115000 {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("failed charge is not an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":true,"data":{"status":"failed","amount":0}}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "sk_test")
		res, err := c.Verify(context.Background(), "ref-2")
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if res.Success {
			t.Fatal("failed charge reported as success")
		}
	})

	t.Run("http error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "sk_test")
		if _, err := c.Verify(context.Background(), "ref-3"); !errors.Is(err, ErrGateway) {
			t.Fatalf("err = %v, want ErrGateway", err)
		}
	})
}
