package api

import (
	"context"
	"net/http"

	"github.com/maniraj26/VayuMitra.sky/internal/domain"
)

type wireProduct struct {
	ID    string  `json:"_id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

// wireCartItem carries either a populated product sub-document or inline
// name/price fields, depending on how the gateway serialized the item.
type wireCartItem struct {
	ID        string       `json:"_id"`
	ProductID string       `json:"productId,omitempty"`
	Product   *wireProduct `json:"product,omitempty"`
	Name      string       `json:"name,omitempty"`
	Price     float64      `json:"price,omitempty"`
	Quantity  int          `json:"quantity"`
}

type wireCart struct {
	Items       []wireCartItem `json:"items"`
	TotalAmount *float64       `json:"totalAmount,omitempty"`
}

type cartEnvelope struct {
	Success bool      `json:"success"`
	Cart    *wireCart `json:"cart"`
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart fetches the current remote cart. A missing cart comes back as an
// empty view, not an error.
func (c *Client) GetCart(ctx context.Context) (*domain.CartView, error) {
	var env cartEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/cart", nil, &env); err != nil {
		return nil, err
	}
	if env.Cart == nil {
		return &domain.CartView{}, nil
	}

	view := &domain.CartView{
		Items:       make([]domain.CartItem, 0, len(env.Cart.Items)),
		TotalAmount: env.Cart.TotalAmount,
	}
	for _, it := range env.Cart.Items {
		item := domain.CartItem{
			ItemID:    it.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
		}
		if it.Product != nil {
			item.Name = it.Product.Name
			item.UnitPrice = it.Product.Price
			if item.ProductID == "" {
				item.ProductID = it.Product.ID
			}
		}
		view.Items = append(view.Items, item)
	}
	return view, nil
}

func (c *Client) AddItem(ctx context.Context, productID string, quantity int) error {
	return c.doJSON(ctx, http.MethodPost, "/cart/add", addItemRequest{ProductID: productID, Quantity: quantity}, nil)
}

func (c *Client) UpdateItem(ctx context.Context, itemID string, quantity int) error {
	return c.doJSON(ctx, http.MethodPut, "/cart/update/"+itemID, updateItemRequest{Quantity: quantity}, nil)
}

func (c *Client) RemoveItem(ctx context.Context, itemID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/cart/remove/"+itemID, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/cart/clear", nil, nil)
}
