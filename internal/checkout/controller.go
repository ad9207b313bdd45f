package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sokofresh/soko-api/internal/cart"
	"github.com/sokofresh/soko-api/internal/catalog"
	kafkax "github.com/sokofresh/soko-api/internal/kafka"
	"github.com/sokofresh/soko-api/internal/orders"
	"github.com/sokofresh/soko-api/internal/payment"
)

var (
	ErrEmptyCart      = errors.New("checkout: cart is empty")
	ErrWrongStep      = errors.New("checkout: operation not valid on current step")
	ErrNoReference    = errors.New("checkout: no pending payment reference")
	ErrPaymentFailed  = errors.New("checkout: payment not verified")
	ErrAmountMismatch = errors.New("checkout: verified charge does not match the current total")
)

type CartStore interface {
	Load(ctx context.Context, customerID string) (cart.Cart, error)
	Save(ctx context.Context, customerID string, c cart.Cart) error
}

type Sessions interface {
	Load(ctx context.Context, customerID string) (Session, error)
	Save(ctx context.Context, sess Session) error
	Reset(ctx context.Context, customerID string) error
}

type CatalogReader interface {
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
}

type Gateway interface {
	Initialize(ctx context.Context, email string, amountMinor int64) (payment.InitResult, error)
	Verify(ctx context.Context, reference string) (payment.VerifyResult, error)
}

type OrderCreator interface {
	Create(ctx context.Context, d orders.Draft) (orderID string, existed bool, err error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Controller drives one shopper through the wizard. All state lives in the
// session and cart stores; the controller itself is stateless.
type Controller struct {
	Carts       CartStore
	Sessions    Sessions
	Catalog     CatalogReader
	Gateway     Gateway
	Orders      OrderCreator
	Producer    Publisher
	ServiceName string

	// bound on concurrent catalog lookups per quote
	MaxConcurrent int
}

type QuoteLine struct {
	ProductID string          `json:"product_id"`
	StoreID   string          `json:"store_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Quote struct {
	Lines    []QuoteLine     `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Fee      decimal.Decimal `json:"fee"`
	Total    decimal.Decimal `json:"total"`
}

func (ctl *Controller) State(ctx context.Context, customerID string) (Session, error) {
	return ctl.Sessions.Load(ctx, customerID)
}

// Restart discards the wizard state so the shopper can begin a new checkout.
// The cart is left alone.
func (ctl *Controller) Restart(ctx context.Context, customerID string) error {
	return ctl.Sessions.Reset(ctx, customerID)
}

// Advance moves the wizard forward one step.
func (ctl *Controller) Advance(ctx context.Context, customerID string) (Session, error) {
	sess, err := ctl.Sessions.Load(ctx, customerID)
	if err != nil {
		return Session{}, err
	}
	if err := sess.Next(); err != nil {
		return sess, err
	}
	return sess, ctl.Sessions.Save(ctx, sess)
}

func (ctl *Controller) Rewind(ctx context.Context, customerID string) (Session, error) {
	sess, err := ctl.Sessions.Load(ctx, customerID)
	if err != nil {
		return Session{}, err
	}
	sess.Back()
	return sess, ctl.Sessions.Save(ctx, sess)
}

func (ctl *Controller) Jump(ctx context.Context, customerID string, target Step) (Session, error) {
	sess, err := ctl.Sessions.Load(ctx, customerID)
	if err != nil {
		return Session{}, err
	}
	if err := sess.JumpTo(target); err != nil {
		return sess, err
	}
	return sess, ctl.Sessions.Save(ctx, sess)
}

func (ctl *Controller) ChoosePickup(ctx context.Context, customerID, countyID, stationID, constituencyID string) (Session, error) {
	sess, err := ctl.Sessions.Load(ctx, customerID)
	if err != nil {
		return Session{}, err
	}
	sess.SetPickup(countyID, stationID, constituencyID)
	return sess, ctl.Sessions.Save(ctx, sess)
}

func (ctl *Controller) ChooseDelivery(ctx context.Context, customerID, countyID, constituencyID string) (Session, error) {
	sess, err := ctl.Sessions.Load(ctx, customerID)
	if err != nil {
		return Session{}, err
	}
	sess.SetDelivery(countyID, constituencyID)
	return sess, ctl.Sessions.Save(ctx, sess)
}

// SetInstructions stores free-text delivery notes; pickup mode has none.
func (ctl *Controller) SetInstructions(ctx context.Context, customerID, text string) (Session, error) {
	sess, err := ctl.Sessions.Load(ctx, customerID)
	if err != nil {
		return Session{}, err
	}
	if sess.Mode != orders.ModeDelivery {
		return sess, ErrWrongStep
	}
	sess.Instructions = text
	return sess, ctl.Sessions.Save(ctx, sess)
}

// BuildQuote refreshes each line against the catalog concurrently and prices
// the cart with the active fee tier.
func (ctl *Controller) BuildQuote(ctx context.Context, customerID string) (Quote, error) {
	sess, err := ctl.Sessions.Load(ctx, customerID)
	if err != nil {
		return Quote{}, err
	}
	c, err := ctl.Carts.Load(ctx, customerID)
	if err != nil {
		return Quote{}, err
	}
	if len(c.Lines) == 0 {
		return Quote{}, ErrEmptyCart
	}

	limit := ctl.MaxConcurrent
	if limit <= 0 {
		limit = 10
	}

	lines := make([]QuoteLine, len(c.Lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for idx := range c.Lines {
		idx := idx
		g.Go(func() error {
			l := c.Lines[idx]
			p, err := ctl.Catalog.GetProduct(gctx, l.ProductID)
			if err != nil {
				return fmt.Errorf("refresh product %s: %w", l.ProductID, err)
			}
			qty := l.Quantity
			if qty > p.Stock {
				qty = p.Stock
			}
			lines[idx] = QuoteLine{
				ProductID: p.ID,
				StoreID:   p.StoreID,
				Name:      p.Name,
				Quantity:  qty,
				UnitPrice: p.Price,
				LineTotal: p.Price.Mul(decimal.NewFromInt(int64(qty))),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Quote{}, err
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal)
	}

	// no fee tier until the shopper picks a fulfilment mode
	fee := decimal.Zero
	total := subtotal.Round(2)
	if sess.Mode != "" {
		fee = FeeFor(sess.Mode, subtotal)
		total = TotalWithFee(sess.Mode, subtotal)
	}
	return Quote{
		Lines:    lines,
		Subtotal: subtotal.Round(2),
		Fee:      fee,
		Total:    total,
	}, nil
}

// StartPayment opens a gateway session for the wizard total and remembers
// the reference for Confirm.
func (ctl *Controller) StartPayment(ctx context.Context, customerID, email, method, phone string) (payment.InitResult, error) {
	sess, err := ctl.Sessions.Load(ctx, customerID)
	if err != nil {
		return payment.InitResult{}, err
	}
	if sess.Step != StepPayment {
		return payment.InitResult{}, ErrWrongStep
	}

	q, err := ctl.BuildQuote(ctx, customerID)
	if err != nil {
		return payment.InitResult{}, err
	}

	res, err := ctl.Gateway.Initialize(ctx, email, MinorUnits(q.Total))
	if err != nil {
		return payment.InitResult{}, err
	}

	sess.Reference = res.Reference
	sess.PaymentMethod = method
	sess.PaymentPhone = phone
	if err := ctl.Sessions.Save(ctx, sess); err != nil {
		return payment.InitResult{}, err
	}
	return res, nil
}

// Confirm verifies the pending reference and, only on a successful charge,
// submits the order, clears the cart and finishes the wizard. Any failure
// leaves the session on the payment step, untouched.
func (ctl *Controller) Confirm(ctx context.Context, customerID string) (orderID string, err error) {
	sess, err := ctl.Sessions.Load(ctx, customerID)
	if err != nil {
		return "", err
	}
	if sess.Step != StepPayment {
		return "", ErrWrongStep
	}
	if sess.Reference == "" {
		return "", ErrNoReference
	}

	res, err := ctl.Gateway.Verify(ctx, sess.Reference)
	if err != nil {
		return "", err
	}
	if !res.Success {
		return "", fmt.Errorf("%w: gateway status %q", ErrPaymentFailed, res.Status)
	}

	q, err := ctl.BuildQuote(ctx, customerID)
	if err != nil {
		return "", err
	}
	// the order must record exactly what the shopper was charged for
	if res.Amount != MinorUnits(q.Total) {
		return "", fmt.Errorf("%w: charged %d, current total %d",
			ErrAmountMismatch, res.Amount, MinorUnits(q.Total))
	}

	draft := orders.Draft{
		Reference:     sess.Reference,
		CustomerID:    customerID,
		Mode:          sess.Mode,
		LocationID:    sess.LocationID(),
		Instructions:  sess.Instructions,
		Fee:           q.Fee,
		Total:         q.Total,
		PaymentMethod: sess.PaymentMethod,
		PaymentPhone:  sess.PaymentPhone,
	}
	// quote quantities are capped at live stock, so the priced units and the
	// recorded units cannot drift apart
	for _, l := range q.Lines {
		if l.Quantity <= 0 {
			continue
		}
		draft.Items = append(draft.Items, orders.DraftItem{
			ProductID: l.ProductID,
			StoreID:   l.StoreID,
			Qty:       l.Quantity,
		})
	}
	if len(draft.Items) == 0 {
		return "", ErrEmptyCart
	}

	orderID, _, err = ctl.Orders.Create(ctx, draft)
	if err != nil {
		return "", err
	}

	ctl.publishCreated(orderID, draft)

	// submission succeeded: empty the cart and finish
	c, err := ctl.Carts.Load(ctx, customerID)
	if err != nil {
		return orderID, err
	}
	c.Clear()
	if err := ctl.Carts.Save(ctx, customerID, c); err != nil {
		return orderID, err
	}
	sess.Completed[StepPayment] = true
	sess.Step = StepSuccess
	return orderID, ctl.Sessions.Save(ctx, sess)
}

func (ctl *Controller) publishCreated(orderID string, d orders.Draft) {
	if ctl.Producer == nil {
		return
	}
	items := make([]orders.ItemQty, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, orders.ItemQty{ProductID: it.ProductID, Qty: it.Qty})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      ctl.ServiceName,
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID:    orderID,
			Reference:  d.Reference,
			CustomerID: d.CustomerID,
			Mode:       string(d.Mode),
			LocationID: d.LocationID,
			Items:      items,
			Total:      d.Total.String(),
		}),
	}
	ctl.Producer.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
