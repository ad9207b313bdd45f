package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReplyPassesHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req providerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.Messages) != 3 {
			t.Errorf("messages = %d, want 3", len(req.Messages))
		}
		if last := req.Messages[len(req.Messages)-1]; last.Role != "user" || last.Content != "any sukuma wiki?" {
			t.Errorf("last message = %+v", last)
		}
		json.NewEncoder(w).Encode(providerResponse{Reply: "Yes, in stock."})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	history := []Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}
	got := c.Reply(context.Background(), "any sukuma wiki?", history)
	if got != "Yes, in stock." {
		t.Fatalf("reply = %q", got)
	}
}

func TestReplyFallsBack(t *testing.T) {
	t.Run("provider down", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "key")
		if got := c.Reply(context.Background(), "hi", nil); got != Fallback() {
			t.Fatalf("reply = %q, want fallback", got)
		}
	})

	t.Run("unconfigured", func(t *testing.T) {
		c := NewClient("", "")
		if got := c.Reply(context.Background(), "hi", nil); got != Fallback() {
			t.Fatalf("reply = %q, want fallback", got)
		}
	})
}
