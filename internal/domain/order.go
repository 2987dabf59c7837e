package domain

import (
	"fmt"
	"time"
)

type OrderType string

const (
	OrderTypeFood     OrderType = "food"
	OrderTypeGrocery  OrderType = "grocery"
	OrderTypeMedicine OrderType = "medicine"
	OrderTypeParcel   OrderType = "parcel"
)

var orderTypes = map[OrderType]bool{
	OrderTypeFood:     true,
	OrderTypeGrocery:  true,
	OrderTypeMedicine: true,
	OrderTypeParcel:   true,
}

// ParseOrderType maps a raw category string onto the closed order-type enum.
func ParseOrderType(s string) (OrderType, error) {
	t := OrderType(s)
	if !orderTypes[t] {
		return "", fmt.Errorf("%w: %q", ErrUnknownOrderType, s)
	}
	return t, nil
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusApproved  OrderStatus = "approved"
	StatusCompleted OrderStatus = "completed"
	StatusRejected  OrderStatus = "rejected"
	StatusCancelled OrderStatus = "cancelled"
)

var validStatuses = map[OrderStatus]bool{
	StatusPending:   true,
	StatusApproved:  true,
	StatusCompleted: true,
	StatusRejected:  true,
	StatusCancelled: true,
}

// transitions is the full edge set of the order status machine. Terminal
// statuses have no outgoing edges.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusCompleted},
}

func (s OrderStatus) Valid() bool {
	return validStatuses[s]
}

func (s OrderStatus) IsTerminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransition reports whether from -> to is an edge of the status machine.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Location struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Address   string `json:"address,omitempty"`
}

type Payment struct {
	Method         string `json:"method"`
	Status         string `json:"status"`
	GatewayOrderID string `json:"razorpayOrderId,omitempty"`
}

type Order struct {
	ID          string      `json:"_id"`
	OrderType   OrderType   `json:"orderType"`
	Status      OrderStatus `json:"status"`
	Description string      `json:"description,omitempty"`
	Location    Location    `json:"location"`
	TotalAmount float64     `json:"totalAmount"`
	Items       []CartItem  `json:"items"`
	Payment     *Payment    `json:"payment,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}
