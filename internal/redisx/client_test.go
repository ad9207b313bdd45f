package redisx

import (
	"testing"
	"time"
)

func TestNewAppliesTimeouts(t *testing.T) {
	c := New("localhost:6379")
	defer c.Close()

	opts := c.Options()
	if opts.DialTimeout != 2*time.Second {
		t.Fatalf("dial timeout = %s, want 2s", opts.DialTimeout)
	}
	if opts.ReadTimeout != 2*time.Second || opts.WriteTimeout != 2*time.Second {
		t.Fatalf("read/write timeout = %s/%s, want 2s", opts.ReadTimeout, opts.WriteTimeout)
	}
}
