package domain

import (
	"math"
	"time"
)

type CartItem struct {
	ItemID    string  `json:"_id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

func (i CartItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// CartView is the remote cart resource as last reported by the gateway.
// TotalAmount is nil when the server did not supply an authoritative total.
type CartView struct {
	Items       []CartItem
	TotalAmount *float64
}

// CartSnapshot is an immutable copy of cart contents captured at
// order-creation time. Later cart mutations never touch it.
type CartSnapshot struct {
	Items       []CartItem
	TotalAmount float64
	CapturedAt  time.Time
}

// SameAmount compares two monetary amounts at cent precision, the same way
// the gateway settles totals.
func SameAmount(a, b float64) bool {
	return int64(math.Round(a*100)) == int64(math.Round(b*100))
}
