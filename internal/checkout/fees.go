package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/sokofresh/soko-api/internal/orders"
)

// Fee tiers as a fraction of the cart subtotal.
var (
	pickupRate   = decimal.RequireFromString("0.10")
	deliveryRate = decimal.RequireFromString("0.15")
)

// FeeFor computes the fulfilment surcharge for the chosen mode, rounded to
// two decimal places.
func FeeFor(mode orders.FulfilmentMode, subtotal decimal.Decimal) decimal.Decimal {
	switch mode {
	case orders.ModeDelivery:
		return subtotal.Mul(deliveryRate).Round(2)
	default:
		return subtotal.Mul(pickupRate).Round(2)
	}
}

// TotalWithFee is the amount the shopper pays: subtotal + fee, 2 dp.
func TotalWithFee(mode orders.FulfilmentMode, subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(FeeFor(mode, subtotal)).Round(2)
}

// MinorUnits converts an amount to the gateway's minimal currency unit.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
