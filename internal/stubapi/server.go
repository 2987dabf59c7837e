// Package stubapi is an in-memory stand-in for the remote VayuMitra gateway,
// used by integration tests and local development. It mirrors the real wire
// contract: a success envelope on 2xx, {message} on failure.
package stubapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/maniraj26/VayuMitra.sky/internal/domain"
)

type Server struct {
	store *store
}

func NewServer() *Server {
	return &Server{store: newStore()}
}

// Router returns the gateway routes rooted at /.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.listProducts)
		r.Get("/{id}", s.getProduct)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.getCart)
		r.Post("/add", s.addCartItem)
		r.Put("/update/{itemId}", s.updateCartItem)
		r.Delete("/remove/{itemId}", s.removeCartItem)
		r.Delete("/clear", s.clearCart)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/", s.createOrder)
		r.Get("/", s.listOrders)
		r.Get("/my-orders", s.myOrders)
		r.Get("/{id}", s.getOrder)
		r.Put("/{id}/status", s.updateOrderStatus)
		r.Put("/{id}/cancel", s.cancelOrder)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/create-order", s.createPaymentIntent)
		r.Post("/verify-payment", s.verifyPayment)
		r.Get("/status/{orderId}", s.paymentStatus)
	})

	return r
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bearerToken(r) == "" {
			respondMessage(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"success": false, "message": message})
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" {
		if _, err := domain.ParseOrderType(category); err != nil {
			respondMessage(w, http.StatusBadRequest, "Unknown category")
			return
		}
	}
	products := s.store.listProducts(category, r.URL.Query().Get("search"))
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "products": products})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := s.store.product(chi.URLParam(r, "id"))
	if !ok {
		respondMessage(w, http.StatusNotFound, "Product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "product": p})
}

type wireCartResponse struct {
	Items       []domain.CartItem `json:"items"`
	TotalAmount float64           `json:"totalAmount"`
}

func (s *Server) respondCart(w http.ResponseWriter, status int, token string) {
	items := s.store.cart(token)
	respondJSON(w, status, map[string]interface{}{
		"success": true,
		"cart":    wireCartResponse{Items: items, TotalAmount: cartTotal(items)},
	})
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	s.respondCart(w, http.StatusOK, bearerToken(r))
}

func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Quantity < 1 {
		respondMessage(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}
	p, ok := s.store.product(req.ProductID)
	if !ok {
		respondMessage(w, http.StatusNotFound, "Product not found")
		return
	}
	if !p.IsAvailable {
		respondMessage(w, http.StatusBadRequest, "Product is unavailable")
		return
	}
	s.store.addToCart(bearerToken(r), p, req.Quantity)
	s.respondCart(w, http.StatusCreated, bearerToken(r))
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !s.store.updateCartItem(bearerToken(r), chi.URLParam(r, "itemId"), req.Quantity) {
		respondMessage(w, http.StatusNotFound, "Cart item not found")
		return
	}
	s.respondCart(w, http.StatusOK, bearerToken(r))
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	// removal is idempotent, an unknown item id is fine
	s.store.removeCartItem(bearerToken(r), chi.URLParam(r, "itemId"))
	s.respondCart(w, http.StatusOK, bearerToken(r))
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.store.clearCart(bearerToken(r))
	s.respondCart(w, http.StatusOK, bearerToken(r))
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderType   string          `json:"orderType"`
		Description string          `json:"description"`
		Location    domain.Location `json:"location"`
		TotalAmount float64         `json:"totalAmount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	orderType, err := domain.ParseOrderType(req.OrderType)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Unknown order type")
		return
	}
	if req.TotalAmount < 0 {
		respondMessage(w, http.StatusBadRequest, "Total amount must not be negative")
		return
	}
	order := s.store.createOrder(bearerToken(r), orderType, req.Description, req.Location, req.TotalAmount)
	respondJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "order": order})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respondMessage(w, http.StatusBadRequest, "Unknown order status")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "orders": s.store.listOrders(status)})
}

func (s *Server) myOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "orders": s.store.ordersOf(bearerToken(r))})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := s.store.order(chi.URLParam(r, "id"))
	if !ok {
		respondMessage(w, http.StatusNotFound, "Order not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "order": order})
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !req.Status.Valid() {
		respondMessage(w, http.StatusBadRequest, "Unknown order status")
		return
	}
	order, ok := s.store.transition(chi.URLParam(r, "id"), req.Status)
	if !ok {
		respondMessage(w, http.StatusBadRequest, "Illegal order status transition")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "order": order})
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := s.store.transition(chi.URLParam(r, "id"), domain.StatusCancelled)
	if !ok {
		respondMessage(w, http.StatusBadRequest, "Only pending orders can be cancelled")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "order": order})
}

func (s *Server) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount  float64 `json:"amount"`
		OrderID string  `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	order, ok := s.store.order(req.OrderID)
	if !ok {
		respondMessage(w, http.StatusNotFound, "Order not found")
		return
	}
	if !domain.SameAmount(order.TotalAmount, req.Amount) {
		respondMessage(w, http.StatusBadRequest, "Amount does not match order total")
		return
	}
	intent := s.store.createIntent(req.OrderID, req.Amount)
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"order": map[string]interface{}{
			"id":       intent.GatewayOrderID,
			"key":      "rzp_test_stub",
			"amount":   intent.Amount,
			"currency": "INR",
		},
	})
}

func (s *Server) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var conf domain.PaymentConfirmation
	if err := json.NewDecoder(r.Body).Decode(&conf); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !s.store.settlePayment(conf) {
		respondMessage(w, http.StatusBadRequest, "Payment verification failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) paymentStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := s.store.paymentStatus(chi.URLParam(r, "orderId"))
	if !ok {
		respondMessage(w, http.StatusNotFound, "Order not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": status})
}
