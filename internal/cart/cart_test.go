package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

func line(id string, price string, stock int) Line {
	return Line{
		ProductID: id,
		Name:      "item-" + id,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		StoreID:   "store-1",
	}
}

func TestAddCapsAtStock(t *testing.T) {
	var c Cart
	p := line("p1", "100", 5)

	for i := 0; i < 6; i++ {
		if err := c.Add(p); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	if got := c.Lines[0].Quantity; got != 5 {
		t.Fatalf("quantity = %d, want 5", got)
	}
}

func TestAddRejectsOverDistinctLimit(t *testing.T) {
	var c Cart
	for i := 0; i < MaxDistinctLines; i++ {
		if err := c.Add(line(string(rune('a'+i)), "10", 3)); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	err := c.Add(line("overflow", "10", 3))
	if err != ErrLimitExceeded {
		t.Fatalf("err = %v, want ErrLimitExceeded", err)
	}
	if len(c.Lines) != MaxDistinctLines {
		t.Fatalf("lines = %d, want %d", len(c.Lines), MaxDistinctLines)
	}
}

func TestAddRejectsOverTotalUnits(t *testing.T) {
	var c Cart
	// two lines with huge stock, pushed to the aggregate cap
	if err := c.Add(line("a", "1", 1000)); err != nil {
		t.Fatal(err)
	}
	c.SetQuantity("a", MaxTotalUnits)

	if err := c.Add(line("b", "1", 1000)); err != ErrLimitExceeded {
		t.Fatalf("new line err = %v, want ErrLimitExceeded", err)
	}
	if err := c.Add(line("a", "1", 1000)); err != ErrLimitExceeded {
		t.Fatalf("increment err = %v, want ErrLimitExceeded", err)
	}
	if got := c.TotalUnits(); got != MaxTotalUnits {
		t.Fatalf("total units = %d, want %d", got, MaxTotalUnits)
	}
}

func TestSetQuantityClamps(t *testing.T) {
	var c Cart
	if err := c.Add(line("p1", "50", 4)); err != nil {
		t.Fatal(err)
	}

	t.Run("above stock", func(t *testing.T) {
		c.SetQuantity("p1", 10)
		if got := c.Lines[0].Quantity; got != 4 {
			t.Fatalf("quantity = %d, want 4", got)
		}
	})

	t.Run("below one", func(t *testing.T) {
		c.SetQuantity("p1", 0)
		if got := c.Lines[0].Quantity; got != 1 {
			t.Fatalf("quantity = %d, want 1", got)
		}
	})

	t.Run("absent product no-op", func(t *testing.T) {
		c.SetQuantity("nope", 3)
		if len(c.Lines) != 1 {
			t.Fatalf("lines = %d, want 1", len(c.Lines))
		}
	})
}

func TestRemoveAndClear(t *testing.T) {
	var c Cart
	_ = c.Add(line("a", "10", 5))
	_ = c.Add(line("b", "20", 5))

	c.Remove("a")
	if len(c.Lines) != 1 || c.Lines[0].ProductID != "b" {
		t.Fatalf("unexpected lines after remove: %+v", c.Lines)
	}

	c.Remove("missing") // no-op
	if len(c.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(c.Lines))
	}

	c.Clear()
	if len(c.Lines) != 0 || c.TotalUnits() != 0 {
		t.Fatalf("cart not empty after clear: %+v", c.Lines)
	}
}

func TestSubtotal(t *testing.T) {
	var c Cart
	_ = c.Add(line("a", "19.99", 5))
	_ = c.Add(line("b", "5.50", 5))
	c.SetQuantity("a", 3)
	c.SetQuantity("b", 2)

	want := decimal.RequireFromString("70.97") // 3*19.99 + 2*5.50
	if got := c.Subtotal(); !got.Equal(want) {
		t.Fatalf("subtotal = %s, want %s", got, want)
	}

	// repeated calls with no mutation in between are stable
	if got := c.Subtotal(); !got.Equal(want) {
		t.Fatalf("subtotal changed on re-read: %s", got)
	}
}
