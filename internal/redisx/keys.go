package redisx

import "time"

const (
	// Cart contents per customer: cart:{customer_id} -> JSON line list
	KeyCart = "cart:%s"

	// Checkout wizard state per customer: checkout:{customer_id} -> JSON session
	KeyCheckout = "checkout:%s"

	// Auth session per user: session:{user_id} -> JSON tokens+user+verified
	KeySession = "session:%s"

	// Cache status order: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	// Cart and checkout are durable shopper state, no expiry while active.
	TTLCart     = 30 * 24 * time.Hour
	TTLCheckout = 24 * time.Hour

	TTLSession = 7 * 24 * time.Hour

	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
