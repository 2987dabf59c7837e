package api

import (
	"context"
	"net/http"

	"github.com/maniraj26/VayuMitra.sky/internal/domain"
)

type createIntentRequest struct {
	Amount  float64 `json:"amount"`
	OrderID string  `json:"orderId"`
}

type intentEnvelope struct {
	Success bool                  `json:"success"`
	Order   *domain.PaymentIntent `json:"order"`
}

type verifyEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type paymentStatusEnvelope struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// CreatePaymentIntent asks the gateway for a single-use payment handle scoped
// to the given backend order.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount float64, orderID string) (*domain.PaymentIntent, error) {
	var env intentEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/payments/create-order", createIntentRequest{Amount: amount, OrderID: orderID}, &env); err != nil {
		return nil, err
	}
	if env.Order == nil {
		return nil, &Error{Status: http.StatusBadGateway, Message: "payment intent missing from response"}
	}
	return env.Order, nil
}

// VerifyPayment submits the signed confirmation payload for server-side
// verification. The boolean is the server's verdict; err covers transport and
// gateway failures only.
func (c *Client) VerifyPayment(ctx context.Context, conf domain.PaymentConfirmation) (bool, error) {
	var env verifyEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/payments/verify-payment", conf, &env); err != nil {
		return false, err
	}
	return env.Success, nil
}

func (c *Client) PaymentStatus(ctx context.Context, orderID string) (string, error) {
	var env paymentStatusEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/payments/status/"+orderID, nil, &env); err != nil {
		return "", err
	}
	return env.Status, nil
}
