package domain

import "errors"

var (
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrInvalidTransition = errors.New("illegal order status transition")
	ErrUnknownOrderType  = errors.New("unknown order type")
	ErrUnknownStatus     = errors.New("unknown order status")
)
