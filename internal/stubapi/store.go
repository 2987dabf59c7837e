package stubapi

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maniraj26/VayuMitra.sky/internal/domain"
)

// Product is a catalog entry served by the stub gateway.
type Product struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	SubCategory string  `json:"subCategory,omitempty"`
	Stock       int     `json:"stock"`
	IsAvailable bool    `json:"isAvailable"`
}

type paymentIntent struct {
	GatewayOrderID string
	OrderID        string
	Amount         float64
}

// store is the in-memory state behind the stub gateway: one cart per token,
// a shared order book and the issued payment intents.
type store struct {
	mu       sync.Mutex
	products map[string]Product
	carts    map[string][]domain.CartItem // keyed by auth token
	orders   map[string]*domain.Order
	owners   map[string]string        // order id -> auth token
	intents  map[string]paymentIntent // keyed by gateway order id
	now      func() time.Time
}

func newStore() *store {
	s := &store{
		products: make(map[string]Product),
		carts:    make(map[string][]domain.CartItem),
		orders:   make(map[string]*domain.Order),
		owners:   make(map[string]string),
		intents:  make(map[string]paymentIntent),
		now:      time.Now,
	}
	s.seed()
	return s
}

func (s *store) seed() {
	seedProducts := []Product{
		{Name: "Margherita Pizza", Price: 249, Category: "food", SubCategory: "pizza", Stock: 40, IsAvailable: true},
		{Name: "Veg Biryani", Price: 179, Category: "food", SubCategory: "rice", Stock: 25, IsAvailable: true},
		{Name: "Basmati Rice 5kg", Price: 520, Category: "grocery", SubCategory: "staples", Stock: 60, IsAvailable: true},
		{Name: "Sunflower Oil 1L", Price: 145, Category: "grocery", SubCategory: "staples", Stock: 80, IsAvailable: true},
		{Name: "Paracetamol 500mg", Price: 30, Category: "medicine", SubCategory: "otc", Stock: 200, IsAvailable: true},
		{Name: "Cough Syrup 100ml", Price: 95, Category: "medicine", SubCategory: "otc", Stock: 50, IsAvailable: true},
		{Name: "Document Envelope", Price: 60, Category: "parcel", Stock: 500, IsAvailable: true},
	}
	for _, p := range seedProducts {
		p.ID = uuid.NewString()
		s.products[p.ID] = p
	}
}

func (s *store) listProducts(category, search string) []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && p.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *store) product(id string) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *store) cart(token string) []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.CartItem, len(s.carts[token]))
	copy(items, s.carts[token])
	return items
}

func cartTotal(items []domain.CartItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Subtotal()
	}
	return sum
}

// addToCart upserts by product id, matching the real gateway.
func (s *store) addToCart(token string, p Product, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[token]
	for i := range items {
		if items[i].ProductID == p.ID {
			items[i].Quantity += quantity
			s.carts[token] = items
			return
		}
	}
	s.carts[token] = append(items, domain.CartItem{
		ItemID:    uuid.NewString(),
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
	})
}

func (s *store) updateCartItem(token, itemID string, quantity int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[token]
	for i := range items {
		if items[i].ItemID == itemID {
			if quantity <= 0 {
				s.carts[token] = append(items[:i], items[i+1:]...)
			} else {
				items[i].Quantity = quantity
			}
			return true
		}
	}
	return false
}

func (s *store) removeCartItem(token, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[token]
	for i := range items {
		if items[i].ItemID == itemID {
			s.carts[token] = append(items[:i], items[i+1:]...)
			return
		}
	}
}

func (s *store) clearCart(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, token)
}

func (s *store) createOrder(token string, orderType domain.OrderType, description string, loc domain.Location, total float64) *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.CartItem, len(s.carts[token]))
	copy(items, s.carts[token])
	o := &domain.Order{
		ID:          uuid.NewString(),
		OrderType:   orderType,
		Status:      domain.StatusPending,
		Description: description,
		Location:    loc,
		TotalAmount: total,
		Items:       items,
		CreatedAt:   s.now(),
	}
	s.orders[o.ID] = o
	s.owners[o.ID] = token
	return o
}

func (s *store) ordersOf(token string) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Order, 0)
	for id, o := range s.orders {
		if s.owners[id] == token {
			out = append(out, *o)
		}
	}
	return out
}

func (s *store) order(id string) (*domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	cp := *o
	return &cp, true
}

func (s *store) listOrders(status domain.OrderStatus) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, *o)
	}
	return out
}

// transition applies a status change, enforcing the same edge set the client
// validates against. Terminal statuses never change.
func (s *store) transition(id string, target domain.OrderStatus) (*domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || !domain.CanTransition(o.Status, target) {
		return nil, false
	}
	o.Status = target
	if target == domain.StatusCompleted {
		t := s.now()
		o.CompletedAt = &t
	}
	cp := *o
	return &cp, true
}

func (s *store) createIntent(orderID string, amount float64) paymentIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	intent := paymentIntent{
		GatewayOrderID: "order_" + uuid.NewString(),
		OrderID:        orderID,
		Amount:         amount,
	}
	s.intents[intent.GatewayOrderID] = intent
	return intent
}

// settlePayment validates the confirmation against the issued intent and
// attaches the payment record to the order. The intent is single-use.
func (s *store) settlePayment(conf domain.PaymentConfirmation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	intent, ok := s.intents[conf.GatewayOrderID]
	if !ok || intent.OrderID != conf.OrderID || conf.Signature == "" {
		return false
	}
	o, ok := s.orders[conf.OrderID]
	if !ok {
		return false
	}
	delete(s.intents, conf.GatewayOrderID)
	o.Payment = &domain.Payment{
		Method:         "razorpay",
		Status:         "paid",
		GatewayOrderID: conf.GatewayOrderID,
	}
	return true
}

func (s *store) paymentStatus(orderID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return "", false
	}
	if o.Payment == nil {
		return "none", true
	}
	return o.Payment.Status, true
}
