// Package checkout drives an order from cart snapshot through payment
// initiation, external confirmation and server-side verification.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/maniraj26/VayuMitra.sky/internal/api"
	"github.com/maniraj26/VayuMitra.sky/internal/domain"
)

var (
	ErrCheckoutInFlight   = errors.New("a checkout is already in progress")
	ErrAmountMismatch     = errors.New("payment intent amount does not match cart total")
	ErrVerificationFailed = errors.New("payment verification failed")
)

// OrdersAPI is the order call family consumed from the gateway client.
type OrdersAPI interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*domain.Order, error)
	OrderByID(ctx context.Context, id string) (*domain.Order, error)
	MyOrders(ctx context.Context) ([]domain.Order, error)
	CancelOrder(ctx context.Context, id string) error
}

type PaymentsAPI interface {
	CreatePaymentIntent(ctx context.Context, amount float64, orderID string) (*domain.PaymentIntent, error)
	VerifyPayment(ctx context.Context, conf domain.PaymentConfirmation) (bool, error)
	PaymentStatus(ctx context.Context, orderID string) (string, error)
}

// Cart is the aggregate surface the controller needs.
type Cart interface {
	Snapshot() domain.CartSnapshot
	Clear(ctx context.Context) error
}

// Confirmer is the external payment boundary. It either returns the signed
// confirmation payload, or (nil, nil) when the user abandoned the payment.
type Confirmer interface {
	Confirm(ctx context.Context, intent domain.PaymentIntent) (*domain.PaymentConfirmation, error)
}

type ConfirmerFunc func(ctx context.Context, intent domain.PaymentIntent) (*domain.PaymentConfirmation, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, intent domain.PaymentIntent) (*domain.PaymentConfirmation, error) {
	return f(ctx, intent)
}

type Outcome string

const (
	// OutcomeCompleted means payment was verified and the cart cleared.
	OutcomeCompleted Outcome = "completed"
	// OutcomeAbandoned means the user walked away from the payment step.
	// The order stays pending with no payment attached; the caller may
	// re-enter the flow.
	OutcomeAbandoned Outcome = "abandoned"
)

type Result struct {
	Outcome   Outcome
	OrderID   string
	AttemptID string
	Total     float64
}

type Controller struct {
	orders    OrdersAPI
	payments  PaymentsAPI
	cart      Cart
	confirmer Confirmer

	inFlight atomic.Bool
}

func NewController(orders OrdersAPI, payments PaymentsAPI, cart Cart, confirmer Confirmer) *Controller {
	return &Controller{
		orders:    orders,
		payments:  payments,
		cart:      cart,
		confirmer: confirmer,
	}
}

// Checkout runs the full flow: snapshot, create a pending order, request a
// payment intent, hand it to the external confirmation step, verify, clear
// the cart. Any failure after order creation leaves the order pending; there
// is no automatic retry.
func (c *Controller) Checkout(ctx context.Context, orderType domain.OrderType, description string, loc domain.Location) (*Result, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInFlight
	}
	defer c.inFlight.Store(false)

	snapshot := c.cart.Snapshot()
	if len(snapshot.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	attemptID := uuid.NewString()

	order, err := c.orders.CreateOrder(ctx, api.CreateOrderRequest{
		OrderType:   string(orderType),
		Description: description,
		Location:    loc,
		TotalAmount: snapshot.TotalAmount,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	log.Printf("checkout %s: created order %s for %.2f", attemptID, order.ID, snapshot.TotalAmount)

	intent, err := c.payments.CreatePaymentIntent(ctx, snapshot.TotalAmount, order.ID)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	if !domain.SameAmount(intent.Amount, snapshot.TotalAmount) {
		return nil, fmt.Errorf("%w: intent %.2f, cart %.2f", ErrAmountMismatch, intent.Amount, snapshot.TotalAmount)
	}

	confirmation, err := c.confirmer.Confirm(ctx, *intent)
	if err != nil {
		return nil, fmt.Errorf("payment confirmation: %w", err)
	}
	if confirmation == nil {
		log.Printf("checkout %s: payment abandoned, order %s stays pending", attemptID, order.ID)
		return &Result{Outcome: OutcomeAbandoned, OrderID: order.ID, AttemptID: attemptID, Total: snapshot.TotalAmount}, nil
	}

	// steps 2-5 reference one order id end to end; never trust the
	// external boundary to echo it back
	confirmation.OrderID = order.ID

	verified, err := c.payments.VerifyPayment(ctx, *confirmation)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if !verified {
		return nil, ErrVerificationFailed
	}

	if err := c.cart.Clear(ctx); err != nil {
		// payment is verified, checkout is complete regardless
		log.Printf("checkout %s: cart clear after verified payment failed: %v", attemptID, err)
	}

	return &Result{Outcome: OutcomeCompleted, OrderID: order.ID, AttemptID: attemptID, Total: snapshot.TotalAmount}, nil
}

// Cancel cancels an own order. Only pending orders may be cancelled.
func (c *Controller) Cancel(ctx context.Context, orderID string) error {
	order, err := c.orders.OrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !domain.CanTransition(order.Status, domain.StatusCancelled) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, domain.StatusCancelled)
	}
	return c.orders.CancelOrder(ctx, orderID)
}

// History lists the current user's orders, newest first as served.
func (c *Controller) History(ctx context.Context) ([]domain.Order, error) {
	return c.orders.MyOrders(ctx)
}

// PaymentStatus probes the payment state of an order, used to re-inspect an
// abandoned checkout before re-entering the flow.
func (c *Controller) PaymentStatus(ctx context.Context, orderID string) (string, error) {
	return c.payments.PaymentStatus(ctx, orderID)
}
