package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/maniraj26/VayuMitra.sky/internal/domain"
)

type Product struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	SubCategory string  `json:"subCategory,omitempty"`
	Stock       int     `json:"stock"`
	IsAvailable bool    `json:"isAvailable"`
	Image       string  `json:"image,omitempty"`
}

type productEnvelope struct {
	Success bool     `json:"success"`
	Product *Product `json:"product"`
}

type productsEnvelope struct {
	Success  bool      `json:"success"`
	Products []Product `json:"products"`
}

// Products lists the catalog, optionally filtered by category and a search
// term. Category must be one of the closed order-type enum when set.
func (c *Client) Products(ctx context.Context, category, search string) ([]Product, error) {
	q := url.Values{}
	if category != "" {
		if _, err := domain.ParseOrderType(category); err != nil {
			return nil, err
		}
		q.Set("category", category)
	}
	if search != "" {
		q.Set("search", search)
	}
	path := "/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var env productsEnvelope
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Products, nil
}

func (c *Client) ProductByID(ctx context.Context, id string) (*Product, error) {
	var env productEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/products/"+id, nil, &env); err != nil {
		return nil, err
	}
	if env.Product == nil {
		return nil, &Error{Status: http.StatusNotFound, Message: "product not found"}
	}
	return env.Product, nil
}
