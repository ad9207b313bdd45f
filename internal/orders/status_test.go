package orders

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusCreated, StatusStockReserved, true},
		{StatusCreated, StatusFailed, true},
		{StatusCreated, StatusCompleted, false},
		{StatusStockReserved, StatusDispatched, true},
		{StatusDispatched, StatusCompleted, true},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusCreated, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
