package domain

// PaymentIntent is a server-issued, single-use handle authorizing one
// external payment attempt for one order amount.
type PaymentIntent struct {
	GatewayOrderID string  `json:"id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	ClientKey      string  `json:"key"`
}

// PaymentConfirmation is the signed payload produced by the external payment
// step, submitted for server-side verification keyed by the backend order id.
type PaymentConfirmation struct {
	GatewayOrderID string `json:"razorpay_order_id"`
	PaymentID      string `json:"razorpay_payment_id"`
	Signature      string `json:"razorpay_signature"`
	OrderID        string `json:"orderId"`
}
