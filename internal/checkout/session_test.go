package checkout

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sokofresh/soko-api/internal/orders"
)

func TestLocationGating(t *testing.T) {
	t.Run("pickup blocks without station", func(t *testing.T) {
		s := NewSession("c1")
		if err := s.Next(); err != nil { // products -> location
			t.Fatal(err)
		}
		s.Mode = orders.ModePickup
		if s.CanProceed() {
			t.Fatal("pickup must not proceed without a station")
		}
		if err := s.Next(); err != ErrIncompleteStep {
			t.Fatalf("err = %v, want ErrIncompleteStep", err)
		}

		s.SetPickup("county-1", "station-1", "const-1")
		if !s.CanProceed() {
			t.Fatal("pickup with station should proceed")
		}
	})

	t.Run("delivery blocks without county and constituency", func(t *testing.T) {
		s := NewSession("c1")
		_ = s.Next()
		s.Mode = orders.ModeDelivery
		s.CountyID = "county-1"
		if s.CanProceed() {
			t.Fatal("delivery must not proceed without constituency")
		}

		s.SetDelivery("county-1", "const-2")
		if !s.CanProceed() {
			t.Fatal("delivery with county+constituency should proceed")
		}
	})

	t.Run("no mode selected blocks", func(t *testing.T) {
		s := NewSession("c1")
		_ = s.Next()
		if s.CanProceed() {
			t.Fatal("location without a mode should block")
		}
	})
}

func TestStepNavigation(t *testing.T) {
	s := NewSession("c1")
	_ = s.Next() // -> location
	s.SetDelivery("county-1", "const-1")
	if err := s.Next(); err != nil { // -> delivery
		t.Fatal(err)
	}
	if err := s.Next(); err != nil { // -> payment
		t.Fatal(err)
	}
	if s.Step != StepPayment {
		t.Fatalf("step = %s, want payment", s.Step)
	}

	t.Run("payment never advances via Next", func(t *testing.T) {
		if err := s.Next(); err != ErrIncompleteStep {
			t.Fatalf("err = %v, want ErrIncompleteStep", err)
		}
	})

	t.Run("back walks one step", func(t *testing.T) {
		s.Back()
		if s.Step != StepDelivery {
			t.Fatalf("step = %s, want delivery", s.Step)
		}
	})

	t.Run("jump only onto completed steps", func(t *testing.T) {
		if err := s.JumpTo(StepProducts); err != nil {
			t.Fatalf("jump to completed step: %v", err)
		}
		if err := s.JumpTo(StepPayment); err != ErrStepNotReached {
			t.Fatalf("err = %v, want ErrStepNotReached", err)
		}
	})

	t.Run("back at first step is a no-op", func(t *testing.T) {
		fresh := NewSession("c2")
		fresh.Back()
		if fresh.Step != StepProducts {
			t.Fatalf("step = %s, want products", fresh.Step)
		}
	})
}

func TestSwitchingModeClearsOtherFields(t *testing.T) {
	s := NewSession("c1")
	s.SetPickup("county-1", "station-1", "const-1")
	s.SetDelivery("county-2", "const-9")
	if s.StationID != "" {
		t.Fatalf("station survived mode switch: %q", s.StationID)
	}
	if s.LocationID() != "const-9" {
		t.Fatalf("location = %q, want const-9", s.LocationID())
	}

	s.Instructions = "leave at the gate"
	s.SetPickup("county-1", "station-2", "const-3")
	if s.Instructions != "" {
		t.Fatal("instructions survived switch to pickup")
	}
	if s.LocationID() != "station-2" {
		t.Fatalf("location = %q, want station-2", s.LocationID())
	}
}

func TestFees(t *testing.T) {
	sub := decimal.RequireFromString("1000")

	t.Run("delivery 15 percent", func(t *testing.T) {
		fee := FeeFor(orders.ModeDelivery, sub)
		if fee.StringFixed(2) != "150.00" {
			t.Fatalf("fee = %s, want 150.00", fee.StringFixed(2))
		}
		if total := TotalWithFee(orders.ModeDelivery, sub); total.StringFixed(2) != "1150.00" {
			t.Fatalf("total = %s, want 1150.00", total.StringFixed(2))
		}
	})

	t.Run("pickup 10 percent", func(t *testing.T) {
		fee := FeeFor(orders.ModePickup, sub)
		if fee.StringFixed(2) != "100.00" {
			t.Fatalf("fee = %s, want 100.00", fee.StringFixed(2))
		}
	})

	t.Run("rounds to two places", func(t *testing.T) {
		fee := FeeFor(orders.ModeDelivery, decimal.RequireFromString("33.33"))
		if fee.StringFixed(2) != "5.00" { // 4.9995 rounds up
			t.Fatalf("fee = %s, want 5.00", fee.StringFixed(2))
		}
	})

	t.Run("minor units", func(t *testing.T) {
		if got := MinorUnits(decimal.RequireFromString("1150.00")); got != 115000 {
			t.Fatalf("minor units = %d, want 115000", got)
		}
	})
}
