// Package admin implements order moderation: filtered listings and status
// transition commands gated behind interactive confirmation.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/maniraj26/VayuMitra.sky/internal/domain"
)

var ErrDeclined = errors.New("moderation action declined")

// OrdersAPI is the admin slice of the gateway client.
type OrdersAPI interface {
	ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	OrderByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

// ConfirmFunc is the human-in-the-loop gate. Transitions are irreversible
// once the remote side accepts them, so every one is confirmed first.
type ConfirmFunc func(prompt string) bool

type Moderator struct {
	api     OrdersAPI
	confirm ConfirmFunc
}

func NewModerator(api OrdersAPI, confirm ConfirmFunc) *Moderator {
	return &Moderator{api: api, confirm: confirm}
}

// ListOrders returns orders matching the filter. An empty result is a valid,
// non-error outcome.
func (m *Moderator) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStatus, status)
	}
	return m.api.ListOrders(ctx, status)
}

// Transition moves an order to target after validating the edge locally and
// getting operator confirmation. A remote rejection leaves local state
// untouched and comes back as an error value.
func (m *Moderator) Transition(ctx context.Context, orderID string, target domain.OrderStatus) (*domain.Order, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStatus, target)
	}

	order, err := m.api.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, target)
	}

	prompt := fmt.Sprintf("Mark order %s as %s? This cannot be undone.", orderID, target)
	if !m.confirm(prompt) {
		return nil, ErrDeclined
	}

	updated, err := m.api.UpdateOrderStatus(ctx, orderID, target)
	if err != nil {
		return nil, err
	}
	return updated, nil
}
