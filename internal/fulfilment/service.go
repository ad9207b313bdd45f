// Package fulfilment reserves marketplace stock when an order lands, so a
// pickup station or driver only ever handles orders the shelves can cover.
package fulfilment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/sokofresh/soko-api/internal/kafka"
	"github.com/sokofresh/soko-api/internal/orders"
	"github.com/sokofresh/soko-api/internal/redisx"
)

type Service struct {
	Repo           *orders.ReservationRepo
	Redis          *redis.Client
	ProducerOK     *kafkax.Producer // publishes order.stock.reserved
	ProducerReject *kafkax.Producer // publishes order.stock.rejected
	ServiceName    string
}

// HandleOrderCreated is the consumer handler for order.created.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderCreated {
		return nil // ignore
	}

	// dedup via Redis on event_id
	dkey := fmt.Sprintf(redisx.KeyDedup, "fulfilment", env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		return err
	}

	// idempotent short-circuit: already reserved on a previous delivery
	if ok, _ := s.Repo.AllReserved(ctx, p.OrderID, len(p.Items)); ok {
		return s.publishReserved(ctx, p.OrderID, p.Items, env.TraceID)
	}

	ok, details, err := s.Repo.ReserveAll(ctx, p.OrderID, p.Items)
	if err != nil {
		return err
	}

	if ok {
		return s.publishReserved(ctx, p.OrderID, p.Items, env.TraceID)
	}
	return s.publishRejected(ctx, p.OrderID, details, env.TraceID)
}

func (s *Service) publishReserved(ctx context.Context, orderID string, items []orders.ItemQty, trace string) error {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventStockReserved,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(orders.StockReservedPayload{OrderID: orderID, Items: items}),
	}
	b := kafkax.MustMarshal(ev)
	s.ProducerOK.Publish(orders.PartitionKey(orderID), b,
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventStockReserved)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}

func (s *Service) publishRejected(ctx context.Context, orderID string, details []orders.StockRejectedDetail, trace string) error {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventStockRejected,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(orders.StockRejectedPayload{
			OrderID: orderID, Reason: "OUT_OF_STOCK", Details: details,
		}),
	}
	b := kafkax.MustMarshal(ev)
	s.ProducerReject.Publish(orders.PartitionKey(orderID), b,
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventStockRejected)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}
