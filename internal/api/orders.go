package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/maniraj26/VayuMitra.sky/internal/domain"
)

// CreateOrderRequest is the payload for POST /orders. OrderType is validated
// against the closed enum before anything goes on the wire.
type CreateOrderRequest struct {
	OrderType   string          `json:"orderType" validate:"required,oneof=food grocery medicine parcel"`
	Description string          `json:"description"`
	Location    domain.Location `json:"location"`
	TotalAmount float64         `json:"totalAmount" validate:"gte=0"`
}

type orderEnvelope struct {
	Success bool          `json:"success"`
	Order   *domain.Order `json:"order"`
}

type ordersEnvelope struct {
	Success bool           `json:"success"`
	Orders  []domain.Order `json:"orders"`
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid order request: %w", err)
	}
	var env orderEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/orders", req, &env); err != nil {
		return nil, err
	}
	if env.Order == nil {
		return nil, &Error{Status: http.StatusBadGateway, Message: "order missing from response"}
	}
	return env.Order, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]domain.Order, error) {
	var env ordersEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/orders/my-orders", nil, &env); err != nil {
		return nil, err
	}
	return env.Orders, nil
}

func (c *Client) OrderByID(ctx context.Context, id string) (*domain.Order, error) {
	var env orderEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/orders/"+id, nil, &env); err != nil {
		return nil, err
	}
	if env.Order == nil {
		return nil, &Error{Status: http.StatusNotFound, Message: "order not found"}
	}
	return env.Order, nil
}

// ListOrders is the admin-side listing, optionally filtered by status. An
// empty result is a valid outcome.
func (c *Client) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	path := "/orders"
	if status != "" {
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}
	var env ordersEnvelope
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	var env orderEnvelope
	if err := c.doJSON(ctx, http.MethodPut, "/orders/"+id+"/status", updateStatusRequest{Status: status}, &env); err != nil {
		return nil, err
	}
	if env.Order == nil {
		return nil, &Error{Status: http.StatusBadGateway, Message: "order missing from response"}
	}
	return env.Order, nil
}

func (c *Client) CancelOrder(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPut, "/orders/"+id+"/cancel", nil, nil)
}
