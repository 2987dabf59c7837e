// delivery-cli is the terminal view layer over the VayuMitra client: it
// renders component state and relays user intent, and is the only place
// errors become user-facing notifications.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maniraj26/VayuMitra.sky/internal/admin"
	"github.com/maniraj26/VayuMitra.sky/internal/api"
	"github.com/maniraj26/VayuMitra.sky/internal/cart"
	"github.com/maniraj26/VayuMitra.sky/internal/checkout"
	"github.com/maniraj26/VayuMitra.sky/internal/domain"
	"github.com/maniraj26/VayuMitra.sky/internal/session"
)

type Config struct {
	BaseURL     string
	SessionFile string
	Timeout     time.Duration
}

func loadConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		BaseURL:     getEnv("VAYUMITRA_API_URL", "http://localhost:5000/api"),
		SessionFile: getEnv("VAYUMITRA_SESSION_FILE", filepath.Join(home, ".vayumitra", "session.json")),
		Timeout:     30 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type app struct {
	session  *session.Store
	client   *api.Client
	cart     *cart.Aggregate
	checkout *checkout.Controller
	admin    *admin.Moderator
	stdin    *bufio.Reader
}

func main() {
	log.SetFlags(0)

	cfg := loadConfig()
	store, err := session.NewFileStore(cfg.SessionFile)
	if err != nil {
		log.Fatalf("load session: %v", err)
	}

	client := api.NewClient(api.Config{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout, Session: store})
	aggregate := cart.NewAggregate(client)

	a := &app{
		session: store,
		client:  client,
		cart:    aggregate,
		stdin:   bufio.NewReader(os.Stdin),
	}
	a.checkout = checkout.NewController(client, client, aggregate, checkout.ConfirmerFunc(a.confirmPayment))
	a.admin = admin.NewModerator(client, a.confirmAction)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, notification(err))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: delivery-cli <command> [flags]

commands:
  login -token T          store an auth token (obtained out of band)
  logout                  drop the stored session
  products                browse the catalog (-category, -search)
  cart                    show the cart
  cart-add -product P     add a product (-qty, default 1)
  cart-update -item I     change quantity (-qty; 0 removes)
  cart-remove -item I     remove a line item
  cart-clear              empty the cart
  checkout -type T        place an order and pay (-desc, -lat, -lng, -addr)
  orders                  list own orders
  cancel -id O            cancel a pending order
  payment-status -id O    payment state of an order
  admin-orders            list orders (-status, default pending)
  moderate -id O -to S    approve/reject/complete an order`)
}

// notification maps an error onto the text a user sees: the server message
// when the gateway supplied one, a generic fallback when it did not, and the
// error text itself for local failures.
func notification(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return api.UserMessage(err)
	}
	return err.Error()
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(args)
	case "logout":
		return a.session.Clear()
	case "products":
		return a.products(ctx, args)
	case "cart":
		return a.showCart(ctx)
	case "cart-add":
		return a.cartAdd(ctx, args)
	case "cart-update":
		return a.cartUpdate(ctx, args)
	case "cart-remove":
		return a.cartRemove(ctx, args)
	case "cart-clear":
		return a.cartClear(ctx)
	case "checkout":
		return a.doCheckout(ctx, args)
	case "orders":
		return a.orders(ctx)
	case "cancel":
		return a.cancel(ctx, args)
	case "payment-status":
		return a.paymentStatus(ctx, args)
	case "admin-orders":
		return a.adminOrders(ctx, args)
	case "moderate":
		return a.moderate(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) login(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	token := fs.String("token", "", "auth token")
	name := fs.String("name", "", "display name")
	fs.Parse(args)
	if *token == "" {
		return fmt.Errorf("login requires -token")
	}
	if err := a.session.SetToken(*token); err != nil {
		return err
	}
	if *name != "" {
		return a.session.SetUser(session.User{Name: *name})
	}
	return nil
}

func (a *app) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	category := fs.String("category", "", "food|grocery|medicine|parcel")
	search := fs.String("search", "", "name filter")
	fs.Parse(args)

	products, err := a.client.Products(ctx, *category, *search)
	if err != nil {
		return listFailure("products", err)
	}
	if len(products) == 0 {
		fmt.Println("No products found.")
		return nil
	}
	for _, p := range products {
		fmt.Printf("%s  %-24s ₹%-8.2f %s\n", p.ID, p.Name, p.Price, p.Category)
	}
	return nil
}

func (a *app) showCart(ctx context.Context) error {
	if err := a.cart.Refresh(ctx); err != nil {
		return listFailure("cart", err)
	}
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Println("Your cart is empty.")
		return nil
	}
	for _, it := range items {
		fmt.Printf("%s  %-24s ₹%.2f × %d = ₹%.2f\n", it.ItemID, it.Name, it.UnitPrice, it.Quantity, it.Subtotal())
	}
	fmt.Printf("Cart (%d)  Total: ₹%.2f\n", a.cart.ItemCount(), a.cart.DisplayTotal())
	return nil
}

func (a *app) cartAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cart-add", flag.ExitOnError)
	product := fs.String("product", "", "product id")
	qty := fs.Int("qty", 1, "quantity")
	fs.Parse(args)
	if err := a.cart.AddItem(ctx, *product, *qty); err != nil {
		return err
	}
	fmt.Printf("Item added! Cart (%d)\n", a.cart.ItemCount())
	return nil
}

func (a *app) cartUpdate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cart-update", flag.ExitOnError)
	item := fs.String("item", "", "cart item id")
	qty := fs.Int("qty", 1, "quantity, 0 removes")
	fs.Parse(args)
	if err := a.cart.UpdateItem(ctx, *item, *qty); err != nil {
		return err
	}
	return a.showCart(ctx)
}

func (a *app) cartRemove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cart-remove", flag.ExitOnError)
	item := fs.String("item", "", "cart item id")
	fs.Parse(args)
	if err := a.cart.RemoveItem(ctx, *item); err != nil {
		return err
	}
	return a.showCart(ctx)
}

func (a *app) cartClear(ctx context.Context) error {
	if err := a.cart.Refresh(ctx); err != nil {
		return listFailure("cart", err)
	}
	if err := a.cart.Clear(ctx); err != nil {
		return err
	}
	fmt.Println("Cart cleared.")
	return nil
}

func (a *app) doCheckout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	orderType := fs.String("type", "food", "food|grocery|medicine|parcel")
	desc := fs.String("desc", "Order from cart", "order description")
	lat := fs.String("lat", "0", "latitude")
	lng := fs.String("lng", "0", "longitude")
	addr := fs.String("addr", "", "delivery address")
	fs.Parse(args)

	t, err := domain.ParseOrderType(*orderType)
	if err != nil {
		return err
	}
	if err := a.cart.Refresh(ctx); err != nil {
		return listFailure("cart", err)
	}

	result, err := a.checkout.Checkout(ctx, t, *desc, domain.Location{Latitude: *lat, Longitude: *lng, Address: *addr})
	if err != nil {
		return err
	}
	switch result.Outcome {
	case checkout.OutcomeCompleted:
		fmt.Printf("Payment successful! Order %s placed for ₹%.2f.\n", result.OrderID, result.Total)
	case checkout.OutcomeAbandoned:
		fmt.Printf("Payment not completed. Order %s is still pending; run checkout again or cancel it.\n", result.OrderID)
	}
	return nil
}

func (a *app) orders(ctx context.Context) error {
	orders, err := a.checkout.History(ctx)
	if err != nil {
		return listFailure("orders", err)
	}
	printOrders(orders)
	return nil
}

func (a *app) cancel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	id := fs.String("id", "", "order id")
	fs.Parse(args)
	if err := a.checkout.Cancel(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("Order %s cancelled.\n", *id)
	return nil
}

func (a *app) paymentStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("payment-status", flag.ExitOnError)
	id := fs.String("id", "", "order id")
	fs.Parse(args)
	status, err := a.checkout.PaymentStatus(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("Payment status for %s: %s\n", *id, status)
	return nil
}

func (a *app) adminOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("admin-orders", flag.ExitOnError)
	status := fs.String("status", "pending", "status filter, empty for all")
	fs.Parse(args)

	orders, err := a.admin.ListOrders(ctx, domain.OrderStatus(*status))
	if err != nil {
		return listFailure("orders", err)
	}
	if len(orders) == 0 {
		fmt.Printf("No %s orders found.\n", *status)
		return nil
	}
	printOrders(orders)
	return nil
}

func (a *app) moderate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("moderate", flag.ExitOnError)
	id := fs.String("id", "", "order id")
	to := fs.String("to", "", "target status: approved|rejected|completed")
	fs.Parse(args)

	order, err := a.admin.Transition(ctx, *id, domain.OrderStatus(*to))
	if err != nil {
		return err
	}
	fmt.Printf("Order %s %s successfully!\n", order.ID, order.Status)
	return nil
}

// confirmPayment is the external payment boundary for the terminal: it shows
// the intent and either produces a confirmation payload or reports that the
// user walked away.
func (a *app) confirmPayment(ctx context.Context, intent domain.PaymentIntent) (*domain.PaymentConfirmation, error) {
	fmt.Printf("Pay ₹%.2f %s via gateway order %s? [y/N] ", intent.Amount, intent.Currency, intent.GatewayOrderID)
	if !a.readYes() {
		return nil, nil
	}
	return &domain.PaymentConfirmation{
		GatewayOrderID: intent.GatewayOrderID,
		PaymentID:      "pay_" + uuid.NewString(),
		Signature:      "sig_" + uuid.NewString(),
	}, nil
}

func (a *app) confirmAction(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	return a.readYes()
}

func (a *app) readYes() bool {
	line, err := a.stdin.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printOrders(orders []domain.Order) {
	if len(orders) == 0 {
		fmt.Println("No orders found.")
		return
	}
	for _, o := range orders {
		fmt.Printf("%s  %-8s %-9s ₹%-8.2f %s\n",
			o.ID, strings.ToUpper(string(o.OrderType)), o.Status, o.TotalAmount, o.CreatedAt.Format(time.RFC3339))
	}
}

// listFailure wraps a list-loading error with the inline retry affordance.
func listFailure(what string, err error) error {
	return fmt.Errorf("failed to load %s: %s, please try again", what, notification(err))
}
