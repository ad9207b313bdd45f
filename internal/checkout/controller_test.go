package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sokofresh/soko-api/internal/cart"
	"github.com/sokofresh/soko-api/internal/catalog"
	"github.com/sokofresh/soko-api/internal/orders"
	"github.com/sokofresh/soko-api/internal/payment"
)

type memCarts struct{ m map[string]cart.Cart }

func (s *memCarts) Load(_ context.Context, id string) (cart.Cart, error) { return s.m[id], nil }
func (s *memCarts) Save(_ context.Context, id string, c cart.Cart) error {
	s.m[id] = c
	return nil
}

type memSessions struct{ m map[string]Session }

func (s *memSessions) Load(_ context.Context, id string) (Session, error) {
	if sess, ok := s.m[id]; ok {
		return sess, nil
	}
	return NewSession(id), nil
}
func (s *memSessions) Save(_ context.Context, sess Session) error {
	s.m[sess.CustomerID] = sess
	return nil
}
func (s *memSessions) Reset(_ context.Context, id string) error {
	delete(s.m, id)
	return nil
}

type fakeCatalog struct{ products map[string]catalog.Product }

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

type fakeGateway struct {
	verifyStatus string
	initErr      error
	charged      int64 // amount from the last Initialize, echoed by Verify
}

func (f *fakeGateway) Initialize(_ context.Context, email string, amountMinor int64) (payment.InitResult, error) {
	if f.initErr != nil {
		return payment.InitResult{}, f.initErr
	}
	f.charged = amountMinor
	return payment.InitResult{AuthorizationURL: "https://pay.example/x", Reference: "ref-1"}, nil
}
func (f *fakeGateway) Verify(_ context.Context, reference string) (payment.VerifyResult, error) {
	return payment.VerifyResult{Success: f.verifyStatus == "success", Status: f.verifyStatus, Amount: f.charged}, nil
}

type fakeOrders struct{ created []orders.Draft }

func (f *fakeOrders) Create(_ context.Context, d orders.Draft) (string, bool, error) {
	f.created = append(f.created, d)
	return "order-1", false, nil
}

func testController(verifyStatus string) (*Controller, *memCarts, *memSessions, *fakeOrders) {
	carts := &memCarts{m: map[string]cart.Cart{}}
	sessions := &memSessions{m: map[string]Session{}}
	ord := &fakeOrders{}
	cat := &fakeCatalog{products: map[string]catalog.Product{
		"p1": {ID: "p1", StoreID: "store-1", Name: "Sukuma Wiki", Price: decimal.RequireFromString("500"), Stock: 10},
		"p2": {ID: "p2", StoreID: "store-2", Name: "Maize Flour", Price: decimal.RequireFromString("250"), Stock: 10},
	}}
	ctl := &Controller{
		Carts:       carts,
		Sessions:    sessions,
		Catalog:     cat,
		Gateway:     &fakeGateway{verifyStatus: verifyStatus},
		Orders:      ord,
		ServiceName: "test",
	}
	return ctl, carts, sessions, ord
}

func seedCart(carts *memCarts, customerID string) {
	var c cart.Cart
	_ = c.Add(cart.Line{ProductID: "p1", Name: "Sukuma Wiki", Price: decimal.RequireFromString("500"), Stock: 10, StoreID: "store-1"})
	_ = c.Add(cart.Line{ProductID: "p2", Name: "Maize Flour", Price: decimal.RequireFromString("250"), Stock: 10, StoreID: "store-2"})
	c.SetQuantity("p2", 2)
	carts.m[customerID] = c // subtotal 1000
}

func walkToPayment(t *testing.T, ctl *Controller, customerID string) {
	t.Helper()
	ctx := context.Background()
	if _, err := ctl.Advance(ctx, customerID); err != nil { // -> location
		t.Fatal(err)
	}
	if _, err := ctl.ChooseDelivery(ctx, customerID, "county-1", "const-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := ctl.Advance(ctx, customerID); err != nil { // -> delivery
		t.Fatal(err)
	}
	if _, err := ctl.Advance(ctx, customerID); err != nil { // -> payment
		t.Fatal(err)
	}
}

func TestQuoteRequiresNonEmptyCart(t *testing.T) {
	ctl, _, _, _ := testController("success")
	if _, err := ctl.BuildQuote(context.Background(), "c1"); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestQuoteDeliveryFees(t *testing.T) {
	ctl, carts, _, _ := testController("success")
	seedCart(carts, "c1")
	walkToPayment(t, ctl, "c1")

	q, err := ctl.BuildQuote(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if q.Subtotal.StringFixed(2) != "1000.00" {
		t.Fatalf("subtotal = %s", q.Subtotal.StringFixed(2))
	}
	if q.Fee.StringFixed(2) != "150.00" {
		t.Fatalf("fee = %s, want 150.00", q.Fee.StringFixed(2))
	}
	if q.Total.StringFixed(2) != "1150.00" {
		t.Fatalf("total = %s, want 1150.00", q.Total.StringFixed(2))
	}
}

func TestQuoteBeforeModeSelection(t *testing.T) {
	ctl, carts, _, _ := testController("success")
	seedCart(carts, "c1")

	q, err := ctl.BuildQuote(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if !q.Fee.IsZero() {
		t.Fatalf("fee = %s, want zero before a fulfilment mode is picked", q.Fee.StringFixed(2))
	}
	if q.Total.StringFixed(2) != "1000.00" {
		t.Fatalf("total = %s, want the bare subtotal", q.Total.StringFixed(2))
	}
}

func TestConfirmSuccessSubmitsAndClears(t *testing.T) {
	ctl, carts, sessions, ord := testController("success")
	seedCart(carts, "c1")
	walkToPayment(t, ctl, "c1")
	ctx := context.Background()

	if _, err := ctl.StartPayment(ctx, "c1", "a@b.ke", "card", ""); err != nil {
		t.Fatal(err)
	}

	orderID, err := ctl.Confirm(ctx, "c1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if orderID != "order-1" {
		t.Fatalf("orderID = %s", orderID)
	}

	if len(ord.created) != 1 {
		t.Fatalf("orders created = %d, want 1", len(ord.created))
	}
	d := ord.created[0]
	if d.LocationID != "const-1" {
		t.Fatalf("location = %s, want constituency for delivery", d.LocationID)
	}
	if len(d.Items) != 2 || d.Items[0].StoreID == "" {
		t.Fatalf("unexpected items: %+v", d.Items)
	}
	if d.Total.StringFixed(2) != "1150.00" {
		t.Fatalf("total = %s", d.Total.StringFixed(2))
	}

	if got := carts.m["c1"]; len(got.Lines) != 0 {
		t.Fatalf("cart not cleared: %+v", got.Lines)
	}
	if sess := sessions.m["c1"]; sess.Step != StepSuccess {
		t.Fatalf("step = %s, want success", sess.Step)
	}
}

func TestConfirmFailureKeepsStepAndCart(t *testing.T) {
	ctl, carts, sessions, ord := testController("failed")
	seedCart(carts, "c1")
	walkToPayment(t, ctl, "c1")
	ctx := context.Background()

	if _, err := ctl.StartPayment(ctx, "c1", "a@b.ke", "card", ""); err != nil {
		t.Fatal(err)
	}

	_, err := ctl.Confirm(ctx, "c1")
	if !errors.Is(err, ErrPaymentFailed) {
		t.Fatalf("err = %v, want ErrPaymentFailed", err)
	}

	if len(ord.created) != 0 {
		t.Fatal("order submitted despite failed verification")
	}
	if got := carts.m["c1"]; len(got.Lines) == 0 {
		t.Fatal("cart cleared despite failed verification")
	}
	if sess := sessions.m["c1"]; sess.Step != StepPayment {
		t.Fatalf("step = %s, want payment", sess.Step)
	}
}

func TestConfirmRecordsLiveStockQuantities(t *testing.T) {
	ctl, carts, _, ord := testController("success")
	seedCart(carts, "c1")

	c := carts.m["c1"]
	c.SetQuantity("p1", 5)
	carts.m["c1"] = c

	walkToPayment(t, ctl, "c1")
	ctx := context.Background()

	// stock of p1 falls to 2 before the shopper pays
	cat := ctl.Catalog.(*fakeCatalog)
	p := cat.products["p1"]
	p.Stock = 2
	cat.products["p1"] = p

	if _, err := ctl.StartPayment(ctx, "c1", "a@b.ke", "card", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := ctl.Confirm(ctx, "c1"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if len(ord.created) != 1 {
		t.Fatalf("orders created = %d, want 1", len(ord.created))
	}
	d := ord.created[0]
	for _, it := range d.Items {
		if it.ProductID == "p1" && it.Qty != 2 {
			t.Fatalf("p1 qty = %d, want the in-stock 2", it.Qty)
		}
	}
	// 2x500 + 2x250 = 1500 subtotal, 15% delivery fee
	if d.Total.StringFixed(2) != "1725.00" {
		t.Fatalf("total = %s, want 1725.00", d.Total.StringFixed(2))
	}
}

func TestConfirmRejectsChargedAmountMismatch(t *testing.T) {
	ctl, carts, sessions, ord := testController("success")
	seedCart(carts, "c1")
	walkToPayment(t, ctl, "c1")
	ctx := context.Background()

	if _, err := ctl.StartPayment(ctx, "c1", "a@b.ke", "card", ""); err != nil {
		t.Fatal(err)
	}

	// price of p1 rises after the shopper paid
	cat := ctl.Catalog.(*fakeCatalog)
	p := cat.products["p1"]
	p.Price = decimal.RequireFromString("600")
	cat.products["p1"] = p

	_, err := ctl.Confirm(ctx, "c1")
	if !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("err = %v, want ErrAmountMismatch", err)
	}

	if len(ord.created) != 0 {
		t.Fatal("order submitted despite amount mismatch")
	}
	if got := carts.m["c1"]; len(got.Lines) == 0 {
		t.Fatal("cart cleared despite amount mismatch")
	}
	if sess := sessions.m["c1"]; sess.Step != StepPayment {
		t.Fatalf("step = %s, want payment", sess.Step)
	}
}

func TestConfirmWithoutReference(t *testing.T) {
	ctl, carts, _, _ := testController("success")
	seedCart(carts, "c1")
	walkToPayment(t, ctl, "c1")

	if _, err := ctl.Confirm(context.Background(), "c1"); !errors.Is(err, ErrNoReference) {
		t.Fatalf("err = %v, want ErrNoReference", err)
	}
}

func TestRestartDiscardsSessionKeepsCart(t *testing.T) {
	ctl, carts, sessions, _ := testController("success")
	seedCart(carts, "c1")
	walkToPayment(t, ctl, "c1")
	ctx := context.Background()

	if err := ctl.Restart(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	sess, err := ctl.State(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Step != StepProducts || sess.Mode != "" {
		t.Fatalf("session not reset: %+v", sess)
	}
	if _, ok := sessions.m["c1"]; ok {
		t.Fatal("stored session not removed")
	}
	if got := carts.m["c1"]; len(got.Lines) == 0 {
		t.Fatal("restart must not touch the cart")
	}
}

func TestInstructionsDeliveryOnly(t *testing.T) {
	ctl, carts, _, _ := testController("success")
	seedCart(carts, "c1")
	ctx := context.Background()
	if _, err := ctl.Advance(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	if _, err := ctl.ChoosePickup(ctx, "c1", "county-1", "station-1", "const-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := ctl.SetInstructions(ctx, "c1", "call me"); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("err = %v, want ErrWrongStep for pickup mode", err)
	}
}
