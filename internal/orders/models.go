package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type FulfilmentMode string

const (
	ModePickup   FulfilmentMode = "pickup"
	ModeDelivery FulfilmentMode = "delivery"
)

type Order struct {
	ID            string          `json:"id"`
	Reference     string          `json:"reference"` // payment gateway reference, idempotency key
	CustomerID    string          `json:"customer_id"`
	Status        Status          `json:"status"`
	Mode          FulfilmentMode  `json:"mode"`
	LocationID    string          `json:"location_id"` // station id (pickup) or constituency id (delivery)
	Instructions  string          `json:"instructions,omitempty"`
	Fee           decimal.Decimal `json:"fee"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	PaymentPhone  string          `json:"payment_phone,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	StoreID   string          `json:"store_id"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

// Draft is the payload assembled by checkout at the moment of submission.
// It is immutable once handed to the repo.
type Draft struct {
	Reference     string
	CustomerID    string
	Items         []DraftItem
	Mode          FulfilmentMode
	LocationID    string
	Instructions  string
	Fee           decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	PaymentPhone  string
}

type DraftItem struct {
	ProductID string `json:"product_id"`
	StoreID   string `json:"store_id"`
	Qty       int    `json:"qty"`
}

type Reservation struct {
	ID        string
	OrderID   string
	ProductID string
	Qty       int
	Status    string // RESERVED | RELEASED
	CreatedAt time.Time
}
